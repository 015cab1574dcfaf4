// Package auth implements user registration, login and security-question
// password recovery on top of the users collection.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/getmockd/shelfd/pkg/apierror"
	"github.com/getmockd/shelfd/pkg/collection"
	"github.com/getmockd/shelfd/pkg/logging"
	"github.com/getmockd/shelfd/pkg/model"
)

// Reply messages.
const (
	MsgRegistered = "Registration successful"
	MsgLoggedIn   = "Authentication successful"
	MsgReset      = "Password reset successful"
	MsgVerified   = "Security questions successfully answered"
)

// Users is the store the service works on, keyed by email.
type Users = collection.Store[string, model.User]

// Service performs the account operations.
type Service struct {
	users  Users
	hasher Hasher
	tokens *Tokens
	log    *slog.Logger

	// serializes the duplicate check and insert in Register
	registerMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithHasher overrides the bcrypt hasher.
func WithHasher(h Hasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithTokens enables login tokens.
func WithTokens(t *Tokens) Option {
	return func(s *Service) { s.tokens = t }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the account service.
func NewService(users Users, opts ...Option) *Service {
	s := &Service{
		users:  users,
		hasher: Bcrypt{},
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with the next free id.
func (s *Service) Register(ctx context.Context, email, password string) (model.User, error) {
	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	all, err := s.users.FindAll(ctx)
	if err != nil {
		return model.User{}, err
	}
	nextID := 1
	for _, u := range all {
		if u.Email == email {
			s.log.Warn("registration rejected", "email", email, "reason", "duplicate email")
			return model.User{}, apierror.Conflict("")
		}
		if u.ID >= nextID {
			nextID = u.ID + 1
		}
	}

	hash, err := s.hash(password)
	if err != nil {
		return model.User{}, err
	}

	user := model.User{ID: nextID, Email: email, PasswordHash: hash}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return model.User{}, err
	}

	s.log.Info("user registered", "email", email, "id", nextID)
	return user, nil
}

// Login verifies credentials. The token is empty when tokens are disabled.
func (s *Service) Login(ctx context.Context, email, password string) (model.User, string, error) {
	user, err := s.find(ctx, email)
	if err != nil {
		return model.User{}, "", err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.log.Warn("login rejected", "email", email, "reason", "password mismatch")
		return model.User{}, "", apierror.Unauthorized()
	}

	var token string
	if s.tokens != nil {
		token, err = s.tokens.Issue(email)
		if err != nil {
			return model.User{}, "", fmt.Errorf("issue token: %w", err)
		}
	}

	s.log.Info("user logged in", "email", email)
	return user, token, nil
}

// VerifySecurityQuestions checks answers positionally against the stored ones.
func (s *Service) VerifySecurityQuestions(ctx context.Context, email string, answers []string) error {
	user, err := s.find(ctx, email)
	if err != nil {
		return err
	}
	if !answersMatch(user.SecurityQuestions, answers) {
		s.log.Warn("security answers rejected", "email", email)
		return apierror.Unauthorized()
	}
	return nil
}

// ResetPassword replaces the password after verifying the security answers.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string, answers []string) (model.User, error) {
	if err := s.VerifySecurityQuestions(ctx, email, answers); err != nil {
		return model.User{}, err
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return model.User{}, err
	}

	var updated model.User
	err = s.users.UpdateOne(ctx, collection.ByKey(model.UserKey, email), func(u model.User) model.User {
		u = u.Clone()
		u.PasswordHash = hash
		updated = u
		return u
	})
	if collection.IsNotFound(err) {
		return model.User{}, apierror.Unauthorized()
	}
	if err != nil {
		return model.User{}, err
	}

	s.log.Info("password reset", "email", email)
	return updated, nil
}

func (s *Service) find(ctx context.Context, email string) (model.User, error) {
	user, err := s.users.FindOne(ctx, collection.ByKey(model.UserKey, email))
	if collection.IsNotFound(err) {
		s.log.Warn("unknown user", "email", email)
		return model.User{}, apierror.Unauthorized()
	}
	return user, err
}

func (s *Service) hash(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apierror.BadRequest(err)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// answersMatch requires exactly RequiredAnswers stored questions and answers,
// compared position by position.
func answersMatch(questions []model.SecurityQuestion, answers []string) bool {
	if len(questions) < RequiredAnswers || len(answers) != RequiredAnswers {
		return false
	}
	ok := 1
	for i := range RequiredAnswers {
		ok &= subtle.ConstantTimeCompare([]byte(questions[i].Answer), []byte(answers[i]))
	}
	return ok == 1
}
