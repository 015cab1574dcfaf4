package collection

import "context"

// Predicate selects records.
type Predicate[T any] func(T) bool

// KeyFunc extracts the key of a record.
type KeyFunc[K comparable, T any] func(T) K

// Store is the contract of a mock collection.
type Store[K comparable, T any] interface {
	// Name returns the collection name, e.g. "books".
	Name() string

	// FindAll returns every record in insertion order.
	FindAll(ctx context.Context) ([]T, error)

	// FindOne returns the first record matching match, or a *NotFoundError.
	FindOne(ctx context.Context, match Predicate[T]) (T, error)

	// InsertOne appends record and returns its key. Duplicate keys are not rejected.
	InsertOne(ctx context.Context, record T) (K, error)

	// UpdateOne replaces the first record matching match with apply(record).
	// Returns a *NotFoundError when nothing matches.
	UpdateOne(ctx context.Context, match Predicate[T], apply func(T) T) error

	// DeleteOne removes the first record matching match.
	// Returns a *NotFoundError when nothing matches.
	DeleteOne(ctx context.Context, match Predicate[T]) error
}

// ByKey returns a predicate matching records whose key equals k.
func ByKey[K comparable, T any](key KeyFunc[K, T], k K) Predicate[T] {
	return func(record T) bool {
		return key(record) == k
	}
}

// All matches every record.
func All[T any]() Predicate[T] {
	return func(T) bool { return true }
}
