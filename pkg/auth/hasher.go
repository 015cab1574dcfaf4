package auth

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Bcrypt is a Hasher backed by golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	// Cost is the bcrypt cost. Zero means bcrypt.DefaultCost.
	Cost int
}

// Hash returns a salted bcrypt hash of password.
func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Compare returns nil when password matches hash.
func (Bcrypt) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
