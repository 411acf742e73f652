package storage

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("storage: record not found")
	// ErrDeliveryNotPending is returned by Assign when the delivery already
	// moved past the pending state.
	ErrDeliveryNotPending = errors.New("storage: delivery is not pending")
	// ErrDroneUnavailable is returned by Assign when the drone was claimed
	// by a concurrent transaction or is otherwise not available.
	ErrDroneUnavailable = errors.New("storage: drone is not available")
)
