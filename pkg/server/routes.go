package server

import (
	"net/http"

	"github.com/getmockd/shelfd/pkg/auth"
	"github.com/getmockd/shelfd/pkg/config"
	"github.com/getmockd/shelfd/pkg/httputil"
	"github.com/getmockd/shelfd/pkg/model"
	"github.com/getmockd/shelfd/pkg/resource"
	"github.com/getmockd/shelfd/pkg/validation"
)

// HelloMessage is the body served by the hello app.
const HelloMessage = "Hello World!"

var (
	createBook = validation.MustKeySet(validation.Integer("id"), validation.String("title"), validation.String("author"))
	updateBook = validation.MustKeySet(validation.String("title"), validation.String("author"))

	createRecipe = validation.MustKeySet(validation.Integer("id"), validation.String("name"), validation.StringArray("ingredients"))
	updateRecipe = validation.MustKeySet(validation.String("name"), validation.StringArray("ingredients"))
)

// mountsFor returns which route groups an app serves.
func mountsFor(app string) (books, recipes, users, hello bool) {
	switch app {
	case config.AppBooks:
		return true, false, true, false
	case config.AppCookbook:
		return false, true, true, false
	case config.AppHello:
		return false, false, false, true
	default:
		return true, true, true, true
	}
}

func (s *Server) routes() (*http.ServeMux, error) {
	mux := http.NewServeMux()
	books, recipes, users, hello := mountsFor(s.cfg.App)

	if books {
		res, err := resource.New(resource.Config[model.Book]{
			Name:   "books",
			Store:  s.stores.Books,
			Key:    model.BookKey,
			WithID: func(b model.Book, id int) model.Book { b.ID = id; return b },
			Create: createBook,
			Update: updateBook,
			Logger: s.log,
		}, s.errs)
		if err != nil {
			return nil, err
		}
		res.Register(mux)
	}

	if recipes {
		res, err := resource.New(resource.Config[model.Recipe]{
			Name:   "recipes",
			Store:  s.stores.Recipes,
			Key:    model.RecipeKey,
			WithID: func(r model.Recipe, id int) model.Recipe { r.ID = id; return r },
			Create: createRecipe,
			Update: updateRecipe,
			Logger: s.log,
		}, s.errs)
		if err != nil {
			return nil, err
		}
		res.Register(mux)
	}

	if users {
		svc := auth.NewService(s.stores.Users,
			auth.WithHasher(s.hasher),
			auth.WithTokens(auth.NewTokens(s.cfg.Auth.TokenSecret, s.cfg.Auth.TokenTTL)),
			auth.WithLogger(s.log),
		)
		auth.NewHandler(svc, s.errs).Register(mux)
	}

	if hello {
		mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteText(w, http.StatusOK, HelloMessage)
		})
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteOK(w, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("/", s.errs.NotFound)

	return mux, nil
}
