package collection

import "time"

// Operation names reported to an Observer.
const (
	OpFindAll   = "find_all"
	OpFindOne   = "find_one"
	OpInsertOne = "insert_one"
	OpUpdateOne = "update_one"
	OpDeleteOne = "delete_one"
	OpReset     = "reset"
)

// Observer receives a callback after every store operation.
// Implementations must be safe for concurrent use.
type Observer interface {
	Observe(collection, operation string, duration time.Duration, err error)
}

// NoopObserver discards all observations.
type NoopObserver struct{}

// Observe implements Observer.
func (NoopObserver) Observe(string, string, time.Duration, error) {}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(collection, operation string, duration time.Duration, err error)

// Observe implements Observer.
func (f ObserverFunc) Observe(collection, operation string, duration time.Duration, err error) {
	f(collection, operation, duration, err)
}
