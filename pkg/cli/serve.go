package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/shelfd/pkg/config"
	"github.com/getmockd/shelfd/pkg/logging"
	"github.com/getmockd/shelfd/pkg/server"
)

type serveFlags struct {
	app        string
	env        string
	host       string
	port       int
	logLevel   string
	logFormat  string
	driver     string
	dsn        string
	rateLimit  float64
	burst      int
	bcryptCost int
}

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (foreground)",
	Long: `Start the HTTP server and block until SIGINT or SIGTERM.

The --app flag selects the routes: cookbook serves /api/recipes, books serves
/api/books, both also serve the user routes, hello serves GET / and all
serves everything.`,
	Example: `  # Serve every app on port 3000
  shelfd serve

  # Serve the book catalogue persisted to sqlite
  shelfd serve --app books --storage-dsn ./data/shelfd.db

  # Development mode with stack traces in error responses
  shelfd serve --env development --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		log := logging.New(logging.Config{
			Level:  logging.ParseLevel(cfg.Log.Level),
			Format: logging.ParseFormat(cfg.Log.Format),
			Output: cmd.ErrOrStderr(),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, server.WithLogger(log))
	},
}

func serve(ctx context.Context, cfg *config.Config, opts ...server.Option) error {
	srv, err := server.New(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func init() {
	bindServeFlags(serveCmd, &serveFlagVals)
	rootCmd.AddCommand(serveCmd)
}

func bindServeFlags(cmd *cobra.Command, f *serveFlags) {
	cmd.Flags().StringVar(&f.app, "app", config.AppAll, "App to serve (cookbook, books, hello, all)")
	cmd.Flags().StringVar(&f.env, "env", config.EnvProduction, "Environment (development, production, test)")
	cmd.Flags().StringVar(&f.host, "host", "", "Interface to listen on")
	cmd.Flags().IntVarP(&f.port, "port", "p", config.DefaultPort, "HTTP server port")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&f.logFormat, "log-format", "text", "Log format (text, json)")
	cmd.Flags().StringVar(&f.driver, "storage-driver", "memory", "Collection storage (memory, sqlite, postgres)")
	cmd.Flags().StringVar(&f.dsn, "storage-dsn", "", "sqlite file path or postgres URL")
	cmd.Flags().Float64Var(&f.rateLimit, "rate-limit", 0, "Requests per second per client IP (0 = disabled)")
	cmd.Flags().IntVar(&f.burst, "rate-limit-burst", 2*config.DefaultRate, "Rate limit burst size")
	cmd.Flags().IntVar(&f.bcryptCost, "bcrypt-cost", config.DefaultBcryptCost, "bcrypt cost for password hashes")
}

// loadConfig resolves the configuration for cmd: file, then environment,
// then any serve flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	applyServeFlags(cmd, cfg, &serveFlagVals)
	return cfg, nil
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config, f *serveFlags) {
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}

	if changed("app") {
		cfg.App = f.app
		cfg.SetFlag("app")
	}
	if changed("env") {
		cfg.Env = f.env
		cfg.SetFlag("env")
	}
	if changed("host") {
		cfg.Server.Host = f.host
		cfg.SetFlag("server.host")
	}
	if changed("port") {
		cfg.Server.Port = f.port
		cfg.SetFlag("server.port")
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
		cfg.SetFlag("log.level")
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
		cfg.SetFlag("log.format")
	}
	if changed("storage-driver") {
		cfg.Storage.Driver = f.driver
		cfg.SetFlag("storage.driver")
	}
	if changed("storage-dsn") {
		cfg.Storage.DSN = f.dsn
		cfg.SetFlag("storage.dsn")
		if cfg.Source("storage.driver") == config.SourceDefault {
			cfg.Storage.Driver = config.DriverForDSN(f.dsn)
		}
	}
	if changed("rate-limit") {
		cfg.RateLimit.Enabled = f.rateLimit > 0
		cfg.RateLimit.Rate = f.rateLimit
		cfg.SetFlag("rateLimit.rate")
	}
	if changed("rate-limit-burst") {
		cfg.RateLimit.Burst = f.burst
		cfg.SetFlag("rateLimit.burst")
	}
	if changed("bcrypt-cost") {
		cfg.Auth.BcryptCost = f.bcryptCost
		cfg.SetFlag("auth.bcryptCost")
	}
}
