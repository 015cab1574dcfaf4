package config

import "time"

// Apps that can be served.
const (
	AppCookbook = "cookbook"
	AppBooks    = "books"
	AppHello    = "hello"
	AppAll      = "all"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Value sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Config is the complete shelfd configuration.
type Config struct {
	// App selects which routes are mounted: cookbook, books, hello or all.
	App string `yaml:"app"`
	// Env is development, production or test. Development adds stack traces to error envelopes.
	Env string `yaml:"env"`

	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`

	// Sources maps dotted keys to where their value came from. Keys without
	// an entry hold defaults.
	Sources map[string]string `yaml:"-"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig selects snapshot persistence for the collections.
type StorageConfig struct {
	// Driver is memory, sqlite or postgres.
	Driver string `yaml:"driver"`
	// DSN is a file path for sqlite or a connection URL for postgres.
	DSN string `yaml:"dsn"`
}

// AuthConfig configures password hashing and login tokens.
type AuthConfig struct {
	BcryptCost int `yaml:"bcryptCost"`
	// TokenSecret enables login tokens when set.
	TokenSecret string        `yaml:"tokenSecret"`
	TokenTTL    time.Duration `yaml:"tokenTTL"`
}

// RateLimitConfig configures per-IP rate limiting.
type RateLimitConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Rate           float64  `yaml:"rate"`
	Burst          int      `yaml:"burst"`
	TrustedProxies []string `yaml:"trustedProxies"`
}

// Development reports whether the service runs in development mode.
func (c *Config) Development() bool {
	return c.Env == EnvDevelopment
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return joinHostPort(c.Server.Host, c.Server.Port)
}

// Source returns where key got its value.
func (c *Config) Source(key string) string {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

func (c *Config) set(key, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
}

// SetFlag records that key was overridden on the command line.
func (c *Config) SetFlag(key string) {
	c.set(key, SourceFlag)
}

// Keys lists the dotted keys reported by Source, in display order.
func Keys() []string {
	return []string{
		"app", "env",
		"server.host", "server.port", "server.readTimeout", "server.writeTimeout", "server.shutdownTimeout",
		"log.level", "log.format",
		"storage.driver", "storage.dsn",
		"auth.bcryptCost", "auth.tokenSecret", "auth.tokenTTL",
		"rateLimit.enabled", "rateLimit.rate", "rateLimit.burst", "rateLimit.trustedProxies",
	}
}
