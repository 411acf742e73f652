package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/medifleet/dispatch/core/notify"
)

// MockNotifier records notifications for tests.
type MockNotifier struct {
	mu         sync.Mutex
	Emergency  []notify.EmergencyNotice
	Breaches   []notify.SLABreach
	FailTopics map[string]bool
}

// NewMockNotifier creates a new MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{FailTopics: make(map[string]bool)}
}

func (m *MockNotifier) NotifyEmergencyAssignment(_ context.Context, n notify.EmergencyNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTopics[TopicEmergencyAssigned] {
		return fmt.Errorf("publish failed")
	}
	m.Emergency = append(m.Emergency, n)
	return nil
}

func (m *MockNotifier) NotifySLABreach(_ context.Context, b notify.SLABreach) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTopics[TopicSLABreach] {
		return fmt.Errorf("publish failed")
	}
	m.Breaches = append(m.Breaches, b)
	return nil
}

// EmergencyCount returns how many emergency notices were recorded.
func (m *MockNotifier) EmergencyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Emergency)
}

// BreachCount returns how many SLA breaches were recorded.
func (m *MockNotifier) BreachCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Breaches)
}
