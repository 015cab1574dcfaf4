// Package collection provides the in-memory mock collections that back the
// book, recipe and user APIs.
//
// A collection is an ordered sequence of records addressed by a key (an
// integer id for books and recipes, an email for users). Lookups are linear
// scans driven by a predicate, so callers can match on any field:
//
//	books := collection.NewMemory("books", model.Book.Key, seed)
//	book, err := books.FindOne(ctx, collection.ByKey(model.Book.Key, 3))
//	if collection.IsNotFound(err) {
//	    // no book 3
//	}
//
// Store is the interface handlers depend on, so tests can hand each case an
// isolated collection and persistence layers (see pkg/persist) can wrap the
// in-memory implementation.
//
// Thread Safety:
//
// Memory guards its records with a sync.RWMutex. Reads return copies of the
// slice, so callers never observe a write in progress.
package collection
