package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/getmockd/shelfd/pkg/auth"
	"github.com/getmockd/shelfd/pkg/collection"
	"github.com/getmockd/shelfd/pkg/config"
	"github.com/getmockd/shelfd/pkg/metrics"
	"github.com/getmockd/shelfd/pkg/mockdb"
	"github.com/getmockd/shelfd/pkg/model"
	"github.com/getmockd/shelfd/pkg/persist"
)

// Stores holds the collections served by shelfd.
type Stores struct {
	Books   collection.Store[int, model.Book]
	Recipes collection.Store[int, model.Recipe]
	Users   collection.Store[string, model.User]

	snap *persist.Snapshotter
}

// Close releases the snapshot database, if any.
func (s *Stores) Close() error {
	if s.snap == nil {
		return nil
	}
	err := s.snap.Close()
	s.snap = nil
	return err
}

type counter interface{ Count() int }

// openStores seeds the collections and, for the sqlite and postgres drivers,
// hydrates them from their snapshots.
func openStores(ctx context.Context, cfg *config.Config, hasher auth.Hasher, m *metrics.Metrics) (*Stores, error) {
	books, err := mockdb.Books()
	if err != nil {
		return nil, err
	}
	recipes, err := mockdb.Recipes()
	if err != nil {
		return nil, err
	}
	users, err := mockdb.Users(hasher.Hash)
	if err != nil {
		return nil, err
	}

	bookMem := collection.NewMemory("books", model.BookKey, books, collection.WithObserver[int, model.Book](m))
	recipeMem := collection.NewMemory("recipes", model.RecipeKey, recipes, collection.WithObserver[int, model.Recipe](m))
	userMem := collection.NewMemory("users", model.UserKey, users, collection.WithObserver[string, model.User](m))

	s := &Stores{Books: bookMem, Recipes: recipeMem, Users: userMem}

	if cfg.Storage.Driver != persist.DriverMemory {
		if err := s.persist(ctx, cfg, bookMem, recipeMem, userMem); err != nil {
			return nil, err
		}
	}

	for name, c := range map[string]counter{"books": bookMem, "recipes": recipeMem, "users": userMem} {
		if err := m.TrackCollection(name, c.Count); err != nil {
			return nil, errors.Join(fmt.Errorf("track %s: %w", name, err), s.Close())
		}
	}
	return s, nil
}

func (s *Stores) persist(ctx context.Context, cfg *config.Config,
	books *collection.Memory[int, model.Book],
	recipes *collection.Memory[int, model.Recipe],
	users *collection.Memory[string, model.User],
) error {
	snap, err := persist.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return err
	}
	s.snap = snap

	if s.Books, err = persist.Wrap(ctx, snap, "books", books); err != nil {
		return errors.Join(err, s.Close())
	}
	if s.Recipes, err = persist.Wrap(ctx, snap, "recipes", recipes); err != nil {
		return errors.Join(err, s.Close())
	}
	userCodec := persist.Codec[model.User]{Encode: model.EncodeUsers, Decode: model.DecodeUsers}
	if s.Users, err = persist.WrapCodec(ctx, snap, "users", users, userCodec); err != nil {
		return errors.Join(err, s.Close())
	}
	return nil
}
