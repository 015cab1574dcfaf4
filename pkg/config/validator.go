package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/getmockd/shelfd/pkg/logging"
)

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	validApps    = map[string]bool{AppCookbook: true, AppBooks: true, AppHello: true, AppAll: true}
	validEnvs    = map[string]bool{EnvDevelopment: true, EnvProduction: true, EnvTest: true}
	validDrivers = map[string]bool{"memory": true, "sqlite": true, "postgres": true}
)

// Validate checks the configuration and returns every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !validApps[c.App] {
		add("app", "must be one of cookbook, books, hello, all (got %q)", c.App)
	}
	if !validEnvs[c.Env] {
		add("env", "must be one of development, production, test (got %q)", c.Env)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		add("server.port", "must be between 0 and 65535 (got %d)", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		add("server.readTimeout", "must not be negative")
	}
	if c.Server.WriteTimeout < 0 {
		add("server.writeTimeout", "must not be negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		add("server.shutdownTimeout", "must be positive")
	}

	if _, err := logging.ParseLevelStrict(c.Log.Level); err != nil {
		add("log.level", "%v", err)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		add("log.format", "must be text or json (got %q)", c.Log.Format)
	}

	if !validDrivers[c.Storage.Driver] {
		add("storage.driver", "must be one of memory, sqlite, postgres (got %q)", c.Storage.Driver)
	} else if c.Storage.Driver != "memory" && c.Storage.DSN == "" {
		add("storage.dsn", "is required for driver %s", c.Storage.Driver)
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		add("auth.bcryptCost", "must be between %d and %d (got %d)", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost)
	}
	if c.Auth.TokenSecret != "" && c.Auth.TokenTTL <= 0 {
		add("auth.tokenTTL", "must be positive when a token secret is set")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Rate <= 0 {
			add("rateLimit.rate", "must be positive when rate limiting is enabled")
		}
		if c.RateLimit.Burst < 0 {
			add("rateLimit.burst", "must not be negative")
		}
	}

	return errors.Join(errs...)
}
