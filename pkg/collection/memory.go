package collection

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Memory is the in-memory Store implementation: an ordered slice scanned linearly.
type Memory[K comparable, T any] struct {
	mu       sync.RWMutex
	name     string
	key      KeyFunc[K, T]
	records  []T
	seed     []T
	observer Observer
}

// MemoryOption configures a Memory store.
type MemoryOption[K comparable, T any] func(*Memory[K, T])

// WithObserver sets the observer notified after every operation.
func WithObserver[K comparable, T any](o Observer) MemoryOption[K, T] {
	return func(m *Memory[K, T]) {
		if o != nil {
			m.observer = o
		}
	}
}

// NewMemory creates a collection holding a copy of seed.
func NewMemory[K comparable, T any](name string, key KeyFunc[K, T], seed []T, opts ...MemoryOption[K, T]) *Memory[K, T] {
	m := &Memory[K, T]{
		name:     name,
		key:      key,
		seed:     slices.Clone(seed),
		records:  slices.Clone(seed),
		observer: NoopObserver{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the collection name.
func (m *Memory[K, T]) Name() string {
	return m.name
}

// Key returns the key of record.
func (m *Memory[K, T]) Key(record T) K {
	return m.key(record)
}

// FindAll returns a copy of every record in insertion order.
func (m *Memory[K, T]) FindAll(ctx context.Context) ([]T, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		m.observe(OpFindAll, start, err)
		return nil, err
	}

	m.mu.RLock()
	out := slices.Clone(m.records)
	m.mu.RUnlock()

	if out == nil {
		out = []T{}
	}
	m.observe(OpFindAll, start, nil)
	return out, nil
}

// FindOne returns the first record matching match.
func (m *Memory[K, T]) FindOne(ctx context.Context, match Predicate[T]) (T, error) {
	start := time.Now()
	var zero T
	if err := ctx.Err(); err != nil {
		m.observe(OpFindOne, start, err)
		return zero, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, record := range m.records {
		if match(record) {
			m.observe(OpFindOne, start, nil)
			return record, nil
		}
	}

	err := &NotFoundError{Collection: m.name}
	m.observe(OpFindOne, start, err)
	return zero, err
}

// InsertOne appends record and returns its key.
func (m *Memory[K, T]) InsertOne(ctx context.Context, record T) (K, error) {
	start := time.Now()
	var zero K
	if err := ctx.Err(); err != nil {
		m.observe(OpInsertOne, start, err)
		return zero, err
	}

	m.mu.Lock()
	m.records = append(m.records, record)
	m.mu.Unlock()

	m.observe(OpInsertOne, start, nil)
	return m.key(record), nil
}

// UpdateOne replaces the first matching record with apply(record), keeping its position.
func (m *Memory[K, T]) UpdateOne(ctx context.Context, match Predicate[T], apply func(T) T) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		m.observe(OpUpdateOne, start, err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, record := range m.records {
		if match(record) {
			m.records[i] = apply(record)
			m.observe(OpUpdateOne, start, nil)
			return nil
		}
	}

	err := &NotFoundError{Collection: m.name}
	m.observe(OpUpdateOne, start, err)
	return err
}

// DeleteOne removes the first matching record.
func (m *Memory[K, T]) DeleteOne(ctx context.Context, match Predicate[T]) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		m.observe(OpDeleteOne, start, err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, record := range m.records {
		if match(record) {
			m.records = slices.Delete(m.records, i, i+1)
			m.observe(OpDeleteOne, start, nil)
			return nil
		}
	}

	err := &NotFoundError{Collection: m.name}
	m.observe(OpDeleteOne, start, err)
	return err
}

// Count returns the number of records.
func (m *Memory[K, T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Reset restores the collection to its seed records.
func (m *Memory[K, T]) Reset() {
	start := time.Now()
	m.mu.Lock()
	m.records = slices.Clone(m.seed)
	m.mu.Unlock()
	m.observe(OpReset, start, nil)
}

// Replace swaps every record for records. Used when loading a snapshot.
func (m *Memory[K, T]) Replace(records []T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = slices.Clone(records)
}

func (m *Memory[K, T]) observe(op string, start time.Time, err error) {
	m.observer.Observe(m.name, op, time.Since(start), err)
}
