package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/shelfd/pkg/config"
	"github.com/getmockd/shelfd/pkg/httputil"
	"github.com/getmockd/shelfd/pkg/logging"
	"github.com/getmockd/shelfd/pkg/model"
)

func testConfig(app string) *config.Config {
	cfg := config.Default()
	cfg.App = app
	cfg.Env = config.EnvTest
	cfg.Server.Port = 0
	cfg.Auth.BcryptCost = 4
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r response) json(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

func (r response) message(t *testing.T) string {
	t.Helper()
	var env httputil.ErrorEnvelope
	require.NoError(t, json.Unmarshal(r.body, &env), string(r.body))
	assert.Equal(t, "error", env.Type)
	assert.Equal(t, r.status, env.Status)
	return env.Message
}

func call(t *testing.T, ts *httptest.Server, method, path, body string) response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, header: resp.Header, body: data}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig("library")
	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app")
}

func TestBooksApp(t *testing.T) {
	ts := newTestServer(t, testConfig(config.AppBooks))

	r := call(t, ts, http.MethodGet, "/api/books/3", "")
	require.Equal(t, http.StatusOK, r.status)
	body := r.json(t)
	assert.Equal(t, "The Two Towers", body["title"])
	assert.Equal(t, "J.R.R. Tolkien", body["author"])

	r = call(t, ts, http.MethodGet, "/api/recipes/1", "")
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Equal(t, "Not Found", r.message(t))

	r = call(t, ts, http.MethodPost, "/api/login", `{"email":"ron@hogwarts.edu","password":"weasley"}`)
	assert.Equal(t, http.StatusOK, r.status)

	r = call(t, ts, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusNotFound, r.status)
}

func TestCookbookApp(t *testing.T) {
	ts := newTestServer(t, testConfig(config.AppCookbook))

	r := call(t, ts, http.MethodGet, "/api/recipes/1", "")
	require.Equal(t, http.StatusOK, r.status)
	var recipe model.Recipe
	require.NoError(t, json.Unmarshal(r.body, &recipe))
	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, []string{"flour", "milk", "eggs"}, recipe.Ingredients)

	r = call(t, ts, http.MethodGet, "/api/recipes/abc", "")
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "Input must be a number", r.message(t))

	r = call(t, ts, http.MethodGet, "/api/recipes/42", "")
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Equal(t, "Recipe not found", r.message(t))

	r = call(t, ts, http.MethodPost, "/api/recipes", `{"id":4,"name":"Toast","ingredients":["bread"]}`)
	assert.Equal(t, http.StatusCreated, r.status)
	assert.JSONEq(t, `{"id":4}`, string(r.body))

	r = call(t, ts, http.MethodPut, "/api/recipes/4", `{"name":"Buttered Toast","ingredients":["bread","butter"]}`)
	assert.Equal(t, http.StatusNoContent, r.status)

	r = call(t, ts, http.MethodGet, "/api/books", "")
	assert.Equal(t, http.StatusNotFound, r.status)
}

func TestHelloApp(t *testing.T) {
	ts := newTestServer(t, testConfig(config.AppHello))

	r := call(t, ts, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "Hello World!", string(r.body))

	r = call(t, ts, http.MethodGet, "/api/books", "")
	assert.Equal(t, http.StatusNotFound, r.status)

	r = call(t, ts, http.MethodPost, "/api/login", `{"email":"a","password":"b"}`)
	assert.Equal(t, http.StatusNotFound, r.status)
}

func TestAllApp_Scenarios(t *testing.T) {
	ts := newTestServer(t, testConfig(config.AppAll))

	t.Run("create delete get", func(t *testing.T) {
		r := call(t, ts, http.MethodPost, "/api/books", `{"id":100,"title":"T","author":"A"}`)
		require.Equal(t, http.StatusCreated, r.status)
		assert.JSONEq(t, `{"id":100}`, string(r.body))

		r = call(t, ts, http.MethodDelete, "/api/books/100", "")
		require.Equal(t, http.StatusNoContent, r.status)

		r = call(t, ts, http.MethodGet, "/api/books/100", "")
		assert.Equal(t, http.StatusNotFound, r.status)
		assert.Equal(t, "Book not found", r.message(t))
	})

	t.Run("login", func(t *testing.T) {
		r := call(t, ts, http.MethodPost, "/api/login", `{"email":"ron@hogwarts.edu","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, r.status)
		assert.Equal(t, "Unauthorized", r.message(t))

		r = call(t, ts, http.MethodPost, "/api/login", `{"email":"ron@hogwarts.edu","password":"weasley"}`)
		require.Equal(t, http.StatusOK, r.status)
		assert.Equal(t, "Authentication successful", r.json(t)["message"])
	})

	t.Run("security questions", func(t *testing.T) {
		path := "/api/users/ron@hogwarts.edu/verify-security-questions"

		r := call(t, ts, http.MethodPost, path, `{"securityQuestions":[{"answer":"Scabbers"},{"answer":"Quidditch Through the Ages"},{"answer":"Prewett"}]}`)
		assert.Equal(t, http.StatusOK, r.status)

		r = call(t, ts, http.MethodPost, path, `{"securityQuestions":[{"answer":"Scabbers"},{"answer":"Quidditch Through the Ages"},{"answer":"Weasley"}]}`)
		assert.Equal(t, http.StatusUnauthorized, r.status)

		r = call(t, ts, http.MethodPost, path, `{"securityQuestions":[{"answer":"Scabbers","question":"pet"},{"answer":"Quidditch Through the Ages"},{"answer":"Prewett"}]}`)
		assert.Equal(t, http.StatusBadRequest, r.status)
	})

	t.Run("put id checked before body", func(t *testing.T) {
		r := call(t, ts, http.MethodPut, "/api/books/x", `{}`)
		assert.Equal(t, http.StatusBadRequest, r.status)
		assert.Equal(t, "Input must be a number", r.message(t))
	})

	t.Run("unsupported method is not found", func(t *testing.T) {
		r := call(t, ts, http.MethodPatch, "/api/books/1", `{}`)
		assert.Equal(t, http.StatusNotFound, r.status)
	})

	t.Run("hello", func(t *testing.T) {
		r := call(t, ts, http.MethodGet, "/", "")
		assert.Equal(t, "Hello World!", string(r.body))
	})
}

func TestSeededListings_Golden(t *testing.T) {
	ts := newTestServer(t, testConfig(config.AppAll))
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden.json"),
	)

	for _, name := range []string{"books", "recipes"} {
		r := call(t, ts, http.MethodGet, "/api/"+name, "")
		require.Equal(t, http.StatusOK, r.status)

		var records []any
		require.NoError(t, json.Unmarshal(r.body, &records))
		pretty, err := json.MarshalIndent(records, "", "  ")
		require.NoError(t, err)
		g.Assert(t, name, append(pretty, '\n'))
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, testConfig(config.AppAll))

	r := call(t, ts, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, r.status)
	assert.JSONEq(t, `{"status":"ok"}`, string(r.body))

	call(t, ts, http.MethodGet, "/api/books/1", "")

	r = call(t, ts, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, r.status)
	text := string(r.body)
	assert.Contains(t, text, `shelfd_http_requests_total{method="GET",route="GET /api/books/{id}",status="200"} 1`)
	assert.Contains(t, text, `shelfd_store_operations_total{collection="books",operation="find_one"} 1`)
	assert.Contains(t, text, `shelfd_collection_records{collection="books"} 5`)
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, testConfig(config.AppAll))

	r := call(t, ts, http.MethodGet, "/health", "")
	assert.Len(t, r.header.Get(httputil.RequestIDHeader), 36)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(httputil.RequestIDHeader, "trace-abc.123")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "trace-abc.123", resp.Header.Get(httputil.RequestIDHeader))

	req.Header.Set(httputil.RequestIDHeader, "bad id with spaces")
	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, "bad id with spaces", resp.Header.Get(httputil.RequestIDHeader))
}

func TestRecoverer(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("shelf collapsed")
	})

	for _, dev := range []bool{false, true} {
		var logs bytes.Buffer
		log := slog.New(slog.NewJSONHandler(&logs, nil))
		h := chain(panicky, recoverer(log, httputil.NewErrors(log, dev)), requestID)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var env httputil.ErrorEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.Equal(t, "Internal Server Error", env.Message)
		if dev {
			assert.Contains(t, env.Stack, "shelf collapsed")
		} else {
			assert.Empty(t, env.Stack)
		}
		assert.Contains(t, logs.String(), "panic recovered")
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(config.AppAll)
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Rate = 1
	cfg.RateLimit.Burst = 1
	ts := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/health", "").status)

	r := call(t, ts, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, r.status)
	assert.Equal(t, "Too Many Requests", r.message(t))
}

func TestSQLitePersistence(t *testing.T) {
	cfg := testConfig(config.AppAll)
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "shelfd.db")
	ctx := context.Background()

	first, err := New(ctx, cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(first.Handler())

	require.Equal(t, http.StatusCreated, call(t, ts, http.MethodPost, "/api/books", `{"id":100,"title":"T","author":"A"}`).status)
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/api/register", `{"email":"luna@hogwarts.edu","password":"nargles"}`).status)
	ts.Close()
	require.NoError(t, first.Close())

	ts = newTestServer(t, cfg)
	r := call(t, ts, http.MethodGet, "/api/books/100", "")
	require.Equal(t, http.StatusOK, r.status)
	assert.JSONEq(t, `{"id":100,"title":"T","author":"A"}`, string(r.body))

	r = call(t, ts, http.MethodPost, "/api/login", `{"email":"luna@hogwarts.edu","password":"nargles"}`)
	assert.Equal(t, http.StatusOK, r.status)

	r = call(t, ts, http.MethodPost, "/api/users/ron@hogwarts.edu/verify-security-questions",
		`{"securityQuestions":[{"answer":"Scabbers"},{"answer":"Quidditch Through the Ages"},{"answer":"Prewett"}]}`)
	assert.Equal(t, http.StatusOK, r.status, "security answers survive the snapshot")
}

func TestStartStop(t *testing.T) {
	cfg := testConfig(config.AppHello)
	cfg.Server.Host = "127.0.0.1"
	s, err := New(context.Background(), cfg, WithLogger(logging.Nop()))
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.Error(t, s.Start())

	resp, err := http.Get("http://" + s.Addr() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "Hello World!", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestRun(t *testing.T) {
	cfg := testConfig(config.AppHello)
	cfg.Server.Host = "127.0.0.1"
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + s.Addr() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
