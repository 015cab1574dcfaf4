// Package resource serves CRUD routes for an integer-keyed mock collection.
//
// A Resource mounts five routes under /api/{name}:
//
//	GET    /api/{name}        list (optionally ?filter=<expr>)
//	GET    /api/{name}/{id}   fetch one
//	POST   /api/{name}        create, body must match the create key set
//	PUT    /api/{name}/{id}   replace fields, body must match the update key set
//	DELETE /api/{name}/{id}   remove
//
// Handlers hold no per-request state; every outcome is either written
// directly or returned as an error for the central error writer.
package resource

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/getmockd/shelfd/pkg/apierror"
	"github.com/getmockd/shelfd/pkg/collection"
	"github.com/getmockd/shelfd/pkg/httputil"
	"github.com/getmockd/shelfd/pkg/logging"
	"github.com/getmockd/shelfd/pkg/validation"
)

// Config describes a resource.
type Config[T any] struct {
	// Name is the collection name and URL segment, e.g. "books".
	Name string
	// Display is used in not-found messages. Derived from Name when empty.
	Display string

	Store collection.Store[int, T]
	Key   collection.KeyFunc[int, T]
	// WithID returns record with its id set. Used by update, whose body has no id.
	WithID func(record T, id int) T

	// Create validates POST bodies; it must include the id field.
	Create *validation.Validator
	// Update validates PUT bodies; it must exclude the id field.
	Update *validation.Validator

	Logger *slog.Logger
}

// Resource is the HTTP surface of one collection.
type Resource[T any] struct {
	cfg  Config[T]
	errs *httputil.Errors
	log  *slog.Logger
}

// New validates cfg and creates a Resource.
func New[T any](cfg Config[T], errs *httputil.Errors) (*Resource[T], error) {
	if cfg.Name == "" {
		return nil, errors.New("resource name cannot be empty")
	}
	if cfg.Store == nil || cfg.Key == nil || cfg.WithID == nil {
		return nil, fmt.Errorf("resource %q: store, key and id setter are required", cfg.Name)
	}
	if cfg.Create == nil || cfg.Update == nil {
		return nil, fmt.Errorf("resource %q: create and update validators are required", cfg.Name)
	}
	if cfg.Display == "" {
		cfg.Display = DisplayName(cfg.Name)
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}
	if errs == nil {
		errs = httputil.NewErrors(log, false)
	}
	return &Resource[T]{cfg: cfg, errs: errs, log: log.With("resource", cfg.Name)}, nil
}

// DisplayName turns a collection name into a singular title, "recipes" into "Recipe".
func DisplayName(name string) string {
	singular := strings.TrimSuffix(name, "s")
	if singular == "" {
		singular = name
	}
	return cases.Title(language.English).String(strings.ReplaceAll(singular, "_", " "))
}

// Name returns the collection name.
func (r *Resource[T]) Name() string { return r.cfg.Name }

// Display returns the display name.
func (r *Resource[T]) Display() string { return r.cfg.Display }

// Register mounts the routes on mux.
func (r *Resource[T]) Register(mux *http.ServeMux) {
	base := "/api/" + r.cfg.Name
	mux.Handle("GET "+base, r.errs.Handle(r.list))
	mux.Handle("GET "+base+"/{id}", r.errs.Handle(r.get))
	mux.Handle("POST "+base, r.errs.Handle(r.create))
	mux.Handle("PUT "+base+"/{id}", r.errs.Handle(r.update))
	mux.Handle("DELETE "+base+"/{id}", r.errs.Handle(r.remove))
}

type createdReply struct {
	ID int `json:"id"`
}

func (r *Resource[T]) list(w http.ResponseWriter, req *http.Request) error {
	records, err := r.cfg.Store.FindAll(req.Context())
	if err != nil {
		return err
	}
	if expression := req.URL.Query().Get("filter"); expression != "" {
		records, err = Filter(records, expression)
		if err != nil {
			return apierror.BadRequest(err)
		}
	}
	httputil.WriteOK(w, records)
	return nil
}

func (r *Resource[T]) get(w http.ResponseWriter, req *http.Request) error {
	id, ok := parseID(req)
	if !ok {
		return apierror.InvalidInput()
	}
	record, err := r.cfg.Store.FindOne(req.Context(), collection.ByKey(r.cfg.Key, id))
	if err != nil {
		return r.notFound(err)
	}
	httputil.WriteOK(w, record)
	return nil
}

func (r *Resource[T]) create(w http.ResponseWriter, req *http.Request) error {
	var record T
	if err := r.decode(w, req, r.cfg.Create, &record); err != nil {
		return err
	}
	id, err := r.cfg.Store.InsertOne(req.Context(), record)
	if err != nil {
		return err
	}
	r.log.Debug("record created", "id", id)
	httputil.WriteCreated(w, createdReply{ID: id})
	return nil
}

func (r *Resource[T]) update(w http.ResponseWriter, req *http.Request) error {
	// the id is checked before the body
	id, ok := parseID(req)
	if !ok {
		return apierror.InvalidInput()
	}
	var record T
	if err := r.decode(w, req, r.cfg.Update, &record); err != nil {
		return err
	}
	err := r.cfg.Store.UpdateOne(req.Context(), collection.ByKey(r.cfg.Key, id), func(T) T {
		return r.cfg.WithID(record, id)
	})
	if err != nil {
		return r.notFound(err)
	}
	r.log.Debug("record updated", "id", id)
	httputil.WriteNoContent(w)
	return nil
}

func (r *Resource[T]) remove(w http.ResponseWriter, req *http.Request) error {
	// a non-numeric id can never match a record
	id, ok := parseID(req)
	if !ok {
		return apierror.NotFound(r.notFoundMessage())
	}
	if err := r.cfg.Store.DeleteOne(req.Context(), collection.ByKey(r.cfg.Key, id)); err != nil {
		return r.notFound(err)
	}
	r.log.Debug("record deleted", "id", id)
	httputil.WriteNoContent(w)
	return nil
}

func (r *Resource[T]) decode(w http.ResponseWriter, req *http.Request, v *validation.Validator, dst *T) error {
	body, err := httputil.ReadBody(w, req)
	if err != nil {
		return err
	}
	if res := v.Decode(body, dst); !res.Valid {
		return apierror.BadRequest(res.Err())
	}
	return nil
}

func (r *Resource[T]) notFound(err error) error {
	if collection.IsNotFound(err) {
		return apierror.NotFound(r.notFoundMessage())
	}
	return err
}

func (r *Resource[T]) notFoundMessage() string {
	return r.cfg.Display + " not found"
}

func parseID(req *http.Request) (int, bool) {
	id, err := strconv.Atoi(req.PathValue("id"))
	return id, err == nil
}
