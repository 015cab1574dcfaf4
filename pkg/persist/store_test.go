package persist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/shelfd/pkg/collection"
)

type note struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

func noteKey(n note) int { return n.ID }

func openSQLite(t *testing.T, path string) *Snapshotter {
	t.Helper()
	snap, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = snap.Close() })
	return snap
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x")
	require.ErrorIs(t, err, ErrUnsupportedDriver)

	_, err = Open(context.Background(), DriverSQLite, "")
	require.Error(t, err)
}

func TestSnapshotter_LoadSave(t *testing.T) {
	snap := openSQLite(t, filepath.Join(t.TempDir(), "state.db"))
	ctx := context.Background()

	got, err := snap.Load(ctx, "notes")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, snap.Save(ctx, "notes", []byte(`[1]`)))
	require.NoError(t, snap.Save(ctx, "notes", []byte(`[1,2]`)))

	got, err = snap.Load(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))
	assert.Equal(t, DriverSQLite, snap.Driver())
}

func TestWrap_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	ctx := context.Background()
	seed := []note{{ID: 1, Text: "seed"}}

	first, err := Open(ctx, DriverSQLite, path)
	require.NoError(t, err)

	store, err := Wrap(ctx, first, "notes", collection.NewMemory("notes", noteKey, seed))
	require.NoError(t, err)

	_, err = store.InsertOne(ctx, note{ID: 2, Text: "added"})
	require.NoError(t, err)
	require.NoError(t, store.UpdateOne(ctx, collection.ByKey(noteKey, 1), func(n note) note {
		n.Text = "edited"
		return n
	}))
	require.NoError(t, first.Close())

	second := openSQLite(t, path)
	reopened, err := Wrap(ctx, second, "notes", collection.NewMemory("notes", noteKey, seed))
	require.NoError(t, err)

	all, err := reopened.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []note{{ID: 1, Text: "edited"}, {ID: 2, Text: "added"}}, all)
}

func TestWrap_EmptyBucketKeepsSeed(t *testing.T) {
	snap := openSQLite(t, filepath.Join(t.TempDir(), "state.db"))
	ctx := context.Background()

	store, err := Wrap(ctx, snap, "notes", collection.NewMemory("notes", noteKey, []note{{ID: 7}}))
	require.NoError(t, err)
	assert.Equal(t, 1, store.Count())
}

func TestStore_DeleteMissingDoesNotSave(t *testing.T) {
	snap := openSQLite(t, filepath.Join(t.TempDir(), "state.db"))
	ctx := context.Background()

	store, err := Wrap(ctx, snap, "notes", collection.NewMemory[int, note]("notes", noteKey, nil))
	require.NoError(t, err)

	err = store.DeleteOne(ctx, collection.ByKey(noteKey, 9))
	assert.True(t, collection.IsNotFound(err))

	payload, err := snap.Load(ctx, "notes")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestWrapCodec_DecodeError(t *testing.T) {
	snap := openSQLite(t, filepath.Join(t.TempDir(), "state.db"))
	ctx := context.Background()
	require.NoError(t, snap.Save(ctx, "notes", []byte(`not json`)))

	_, err := Wrap(ctx, snap, "notes", collection.NewMemory[int, note]("notes", noteKey, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode notes")
}
