package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medifleet/dispatch/core/notify"
	"github.com/medifleet/dispatch/infra/logger"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                       { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool   { return true }
func (t *fakeToken) Done() <-chan struct{}            { ch := make(chan struct{}); close(ch); return ch }
func (t *fakeToken) Error() error                     { return t.err }

type fakeClient struct {
	mu         sync.Mutex
	published  map[string][][]byte
	failFirst  int
	connectErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{published: make(map[string][][]byte)}
}

func (c *fakeClient) IsConnected() bool { return true }

func (c *fakeClient) Connect() paho.Token { return &fakeToken{err: c.connectErr} }

func (c *fakeClient) Disconnect(uint) {}

func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failFirst > 0 {
		c.failFirst--
		return &fakeToken{err: errors.New("broker unavailable")}
	}
	c.published[topic] = append(c.published[topic], payload.([]byte))
	return &fakeToken{}
}

func newTestNotifier(cli pahoClient) *Notifier {
	return &Notifier{
		cli:        cli,
		qos:        1,
		maxRetries: 3,
		backoff:    time.Millisecond,
		logger:     logger.NopLogger{},
	}
}

func TestNotifier_EmergencyAssignment(t *testing.T) {
	cli := newFakeClient()
	n := newTestNotifier(cli)

	err := n.NotifyEmergencyAssignment(context.Background(), notify.EmergencyNotice{
		DeliveryID: "d1",
		DroneID:    "drone-7",
		HubID:      "hub-2",
		Hospital:   "Central Hospital",
		Score:      230,
	})
	require.NoError(t, err)

	msgs := cli.published[TopicEmergencyAssigned]
	require.Len(t, msgs, 1)

	var decoded struct {
		MessageID  string `json:"message_id"`
		DeliveryID string `json:"delivery_id"`
		DroneID    string `json:"drone_id"`
		Hospital   string `json:"hospital"`
	}
	require.NoError(t, json.Unmarshal(msgs[0], &decoded))
	assert.NotEmpty(t, decoded.MessageID)
	assert.Equal(t, "d1", decoded.DeliveryID)
	assert.Equal(t, "drone-7", decoded.DroneID)
	assert.Equal(t, "Central Hospital", decoded.Hospital)
}

func TestNotifier_SLABreach(t *testing.T) {
	cli := newFakeClient()
	n := newTestNotifier(cli)

	err := n.NotifySLABreach(context.Background(), notify.SLABreach{
		AlertID:     "a1",
		DeliveryID:  "d1",
		WaitMinutes: 22,
		Message:     "emergency delivery d1 unassigned for 22 minutes",
	})
	require.NoError(t, err)
	require.Len(t, cli.published[TopicSLABreach], 1)
}

func TestNotifier_RetriesOnPublishError(t *testing.T) {
	cli := newFakeClient()
	cli.failFirst = 2
	n := newTestNotifier(cli)

	err := n.NotifyEmergencyAssignment(context.Background(), notify.EmergencyNotice{DeliveryID: "d1"})
	require.NoError(t, err)
	assert.Len(t, cli.published[TopicEmergencyAssigned], 1)
}

func TestNotifier_GivesUpAfterMaxRetries(t *testing.T) {
	cli := newFakeClient()
	cli.failFirst = 100
	n := newTestNotifier(cli)

	err := n.NotifyEmergencyAssignment(context.Background(), notify.EmergencyNotice{DeliveryID: "d1"})
	assert.Error(t, err)
}

func TestNotifier_CanceledContext(t *testing.T) {
	cli := newFakeClient()
	n := newTestNotifier(cli)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := n.NotifySLABreach(ctx, notify.SLABreach{DeliveryID: "d1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientOptions_TLSRequiresPaths(t *testing.T) {
	_, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "test", UseTLS: true})
	assert.Error(t, err)
}

func TestMockNotifier(t *testing.T) {
	m := NewMockNotifier()
	require.NoError(t, m.NotifyEmergencyAssignment(context.Background(), notify.EmergencyNotice{DeliveryID: "d1"}))
	require.NoError(t, m.NotifySLABreach(context.Background(), notify.SLABreach{DeliveryID: "d1"}))
	assert.Equal(t, 1, m.EmergencyCount())
	assert.Equal(t, 1, m.BreachCount())

	m.FailTopics[TopicSLABreach] = true
	assert.Error(t, m.NotifySLABreach(context.Background(), notify.SLABreach{DeliveryID: "d2"}))
}
