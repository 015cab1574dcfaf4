package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getmockd/shelfd/pkg/collection"
)

// Codec converts a collection to and from its stored payload.
type Codec[T any] struct {
	Encode func([]T) ([]byte, error)
	Decode func([]byte) ([]T, error)
}

// JSON is the default codec: the records' own JSON encoding.
func JSON[T any]() Codec[T] {
	return Codec[T]{
		Encode: func(records []T) ([]byte, error) { return json.Marshal(records) },
		Decode: func(data []byte) ([]T, error) {
			var records []T
			err := json.Unmarshal(data, &records)
			return records, err
		},
	}
}

// Store is a collection.Store that snapshots after every successful mutation.
type Store[K comparable, T any] struct {
	*collection.Memory[K, T]
	snap   *Snapshotter
	bucket string
	codec  Codec[T]
	mu     sync.Mutex
}

var _ collection.Store[int, struct{ ID int }] = (*Store[int, struct{ ID int }])(nil)

// Wrap hydrates mem from bucket using the JSON codec. See WrapCodec.
func Wrap[K comparable, T any](ctx context.Context, snap *Snapshotter, bucket string, mem *collection.Memory[K, T]) (*Store[K, T], error) {
	return WrapCodec(ctx, snap, bucket, mem, JSON[T]())
}

// WrapCodec hydrates mem from bucket and returns a store that saves mem back
// to bucket after each insert, update or delete. When the bucket is empty mem
// keeps its seed records.
func WrapCodec[K comparable, T any](ctx context.Context, snap *Snapshotter, bucket string, mem *collection.Memory[K, T], codec Codec[T]) (*Store[K, T], error) {
	payload, err := snap.Load(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		records, err := codec.Decode(payload)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", bucket, err)
		}
		mem.Replace(records)
	}
	return &Store[K, T]{Memory: mem, snap: snap, bucket: bucket, codec: codec}, nil
}

// InsertOne appends record and saves a snapshot.
func (s *Store[K, T]) InsertOne(ctx context.Context, record T) (K, error) {
	key, err := s.Memory.InsertOne(ctx, record)
	if err != nil {
		return key, err
	}
	return key, s.persist(ctx)
}

// UpdateOne updates the first match and saves a snapshot.
func (s *Store[K, T]) UpdateOne(ctx context.Context, match collection.Predicate[T], apply func(T) T) error {
	if err := s.Memory.UpdateOne(ctx, match, apply); err != nil {
		return err
	}
	return s.persist(ctx)
}

// DeleteOne removes the first match and saves a snapshot.
func (s *Store[K, T]) DeleteOne(ctx context.Context, match collection.Predicate[T]) error {
	if err := s.Memory.DeleteOne(ctx, match); err != nil {
		return err
	}
	return s.persist(ctx)
}

func (s *Store[K, T]) persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.Memory.FindAll(ctx)
	if err != nil {
		return err
	}
	data, err := s.codec.Encode(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.bucket, err)
	}
	if err := s.snap.Save(ctx, s.bucket, data); err != nil {
		return fmt.Errorf("snapshot %s: %w", s.bucket, err)
	}
	return nil
}
