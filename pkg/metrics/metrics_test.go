package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByPattern(t *testing.T) {
	m := New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := m.Middleware(mux)

	for _, path := range []string{"/api/books/1", "/api/books/2", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "GET /api/books/{id}", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", RouteUnmatched, "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))
}

func TestObserve(t *testing.T) {
	m := New()

	m.Observe("books", "find_one", 0, nil)
	m.Observe("books", "find_one", 0, errors.New("not found"))
	m.Observe("recipes", "insert_one", 0, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeOps.WithLabelValues("books", "find_one")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues("books", "find_one")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.storeErrors.WithLabelValues("recipes", "insert_one")))
}

func TestTrackCollection(t *testing.T) {
	m := New()
	n := 5
	require.NoError(t, m.TrackCollection("books", func() int { return n }))
	require.NoError(t, m.TrackCollection("recipes", func() int { return 3 }))
	assert.Error(t, m.TrackCollection("books", func() int { return 0 }), "duplicate collection")

	n = 6
	expected := `
# HELP shelfd_collection_records Number of records in each collection.
# TYPE shelfd_collection_records gauge
shelfd_collection_records{collection="books"} 6
shelfd_collection_records{collection="recipes"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "shelfd_collection_records"))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Observe("books", "find_all", 0, nil)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `shelfd_store_operations_total{collection="books",operation="find_all"} 1`), text)
	assert.Contains(t, text, "go_goroutines")
}
