package config

import (
	"strconv"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvPort           = "PORT"
	EnvEnv            = "SHELFD_ENV"
	EnvApp            = "SHELFD_APP"
	EnvLogLevel       = "SHELFD_LOG_LEVEL"
	EnvLogFormat      = "SHELFD_LOG_FORMAT"
	EnvStorageDriver  = "SHELFD_STORAGE_DRIVER"
	EnvStorageDSN     = "SHELFD_STORAGE_DSN"
	EnvTokenSecret    = "SHELFD_TOKEN_SECRET"
	EnvTokenTTL       = "SHELFD_TOKEN_TTL"
	EnvRateLimit      = "SHELFD_RATE_LIMIT"
	EnvRateLimitBurst = "SHELFD_RATE_LIMIT_BURST"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment variables onto cfg. Only variables that are
// set and parse cleanly are applied.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	// PORT
	if v, ok := get(EnvPort); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
			cfg.set("server.port", SourceEnv)
		}
	}

	// SHELFD_ENV
	if v, ok := get(EnvEnv); ok {
		cfg.Env = strings.ToLower(v)
		cfg.set("env", SourceEnv)
	}

	// SHELFD_APP
	if v, ok := get(EnvApp); ok {
		cfg.App = strings.ToLower(v)
		cfg.set("app", SourceEnv)
	}

	// SHELFD_LOG_LEVEL
	if v, ok := get(EnvLogLevel); ok {
		cfg.Log.Level = v
		cfg.set("log.level", SourceEnv)
	}

	// SHELFD_LOG_FORMAT
	if v, ok := get(EnvLogFormat); ok {
		cfg.Log.Format = v
		cfg.set("log.format", SourceEnv)
	}

	// SHELFD_STORAGE_DRIVER
	if v, ok := get(EnvStorageDriver); ok {
		cfg.Storage.Driver = strings.ToLower(v)
		cfg.set("storage.driver", SourceEnv)
	}

	// SHELFD_STORAGE_DSN; a DSN alone selects the driver from its shape
	if v, ok := get(EnvStorageDSN); ok {
		cfg.Storage.DSN = v
		cfg.set("storage.dsn", SourceEnv)
		if cfg.Source("storage.driver") == SourceDefault {
			cfg.Storage.Driver = DriverForDSN(v)
		}
	}

	// SHELFD_TOKEN_SECRET
	if v, ok := get(EnvTokenSecret); ok {
		cfg.Auth.TokenSecret = v
		cfg.set("auth.tokenSecret", SourceEnv)
	}

	// SHELFD_TOKEN_TTL
	if v, ok := get(EnvTokenTTL); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = d
			cfg.set("auth.tokenTTL", SourceEnv)
		}
	}

	// SHELFD_RATE_LIMIT enables limiting at the given requests per second
	if v, ok := get(EnvRateLimit); ok {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.Enabled = rate > 0
			cfg.RateLimit.Rate = rate
			cfg.set("rateLimit.rate", SourceEnv)
		}
	}

	// SHELFD_RATE_LIMIT_BURST
	if v, ok := get(EnvRateLimitBurst); ok {
		if burst, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Burst = burst
			cfg.set("rateLimit.burst", SourceEnv)
		}
	}
}

// DriverForDSN guesses the storage driver from a DSN: postgres URLs select
// postgres, anything else is treated as a sqlite file path.
func DriverForDSN(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}
