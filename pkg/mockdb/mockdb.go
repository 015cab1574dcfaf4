// Package mockdb holds the seed records for the mock collections.
//
// Seeds are embedded YAML files. Seed users carry plain-text passwords that
// are hashed when loaded, so the collections never store a cleartext password.
package mockdb

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/shelfd/pkg/model"
)

//go:embed data/*.yaml
var data embed.FS

// HashFunc hashes a plain-text password.
type HashFunc func(password string) (string, error)

type seedUser struct {
	model.User `yaml:",inline"`
	Password   string `yaml:"password"`
}

// Books returns the seed books.
func Books() ([]model.Book, error) {
	var books []model.Book
	if err := load("data/books.yaml", &books); err != nil {
		return nil, err
	}
	return books, nil
}

// Recipes returns the seed recipes.
func Recipes() ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := load("data/recipes.yaml", &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// Users returns the seed users with their passwords hashed by hash.
func Users(hash HashFunc) ([]model.User, error) {
	var seeds []seedUser
	if err := load("data/users.yaml", &seeds); err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(seeds))
	for _, s := range seeds {
		h, err := hash(s.Password)
		if err != nil {
			return nil, fmt.Errorf("hash seed password for %s: %w", s.Email, err)
		}
		u := s.User
		u.PasswordHash = h
		users = append(users, u)
	}
	return users, nil
}

func load(name string, out any) error {
	raw, err := data.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read seed %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse seed %s: %w", name, err)
	}
	return nil
}
