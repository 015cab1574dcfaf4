package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_JSONHidesSecrets(t *testing.T) {
	u := User{
		ID:           1,
		Email:        "ron@hogwarts.edu",
		PasswordHash: "$2a$10$abc",
		SecurityQuestions: []SecurityQuestion{
			{Question: "What is your pet's name?", Answer: "Scabbers"},
		},
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":1,"email":"ron@hogwarts.edu","securityQuestions":[{"question":"What is your pet's name?"}]}`, string(data))
	assert.NotContains(t, string(data), "Scabbers")
	assert.NotContains(t, string(data), "$2a$")
}

func TestUser_Clone(t *testing.T) {
	u := User{Email: "a@b.c", SecurityQuestions: []SecurityQuestion{{Question: "q", Answer: "a"}}}
	c := u.Clone()
	c.SecurityQuestions[0].Answer = "changed"
	assert.Equal(t, "a", u.SecurityQuestions[0].Answer)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, 3, BookKey(Book{ID: 3}))
	assert.Equal(t, 1, RecipeKey(Recipe{ID: 1}))
	assert.Equal(t, "x@y.z", UserKey(User{Email: "x@y.z"}))
}

func TestEncodeDecodeUsers_KeepsSecrets(t *testing.T) {
	in := []User{{
		ID:                3,
		Email:             "ron@hogwarts.edu",
		PasswordHash:      "$2a$04$hash",
		SecurityQuestions: []SecurityQuestion{{Question: "Pet?", Answer: "Scabbers"}},
	}}

	data, err := EncodeUsers(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Scabbers")

	out, err := DecodeUsers(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
