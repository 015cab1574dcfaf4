package config

import (
	"net"
	"strconv"
	"time"
)

// Default values.
const (
	DefaultPort            = 3000
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBcryptCost      = 10
	DefaultTokenTTL        = time.Hour
	DefaultRate            = 100
)

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		App: AppAll,
		Env: EnvProduction,
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Auth: AuthConfig{
			BcryptCost: DefaultBcryptCost,
			TokenTTL:   DefaultTokenTTL,
		},
		RateLimit: RateLimitConfig{
			Rate:  DefaultRate,
			Burst: 2 * DefaultRate,
		},
		Sources: make(map[string]string),
	}
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
