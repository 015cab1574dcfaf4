// Package model defines the records served by shelfd.
package model

// Book is a catalog entry in the books collection.
type Book struct {
	ID     int    `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author" yaml:"author"`
}

// BookKey returns the id of b.
func BookKey(b Book) int { return b.ID }

// Recipe is an entry in the recipes collection.
type Recipe struct {
	ID          int      `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Ingredients []string `json:"ingredients" yaml:"ingredients"`
}

// RecipeKey returns the id of r.
func RecipeKey(r Recipe) int { return r.ID }

// SecurityQuestion is a recovery question and its expected answer.
type SecurityQuestion struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"-" yaml:"answer"`
}

// User is an account in the users collection. Users are keyed by email.
//
// The JSON form never carries the password hash or security answers.
type User struct {
	ID                int                `json:"id" yaml:"id"`
	Email             string             `json:"email" yaml:"email"`
	PasswordHash      string             `json:"-" yaml:"-"`
	SecurityQuestions []SecurityQuestion `json:"securityQuestions,omitempty" yaml:"securityQuestions"`
}

// UserKey returns the email of u.
func UserKey(u User) string { return u.Email }

// Clone returns a deep copy of u.
func (u User) Clone() User {
	out := u
	if u.SecurityQuestions != nil {
		out.SecurityQuestions = append([]SecurityQuestion(nil), u.SecurityQuestions...)
	}
	return out
}
