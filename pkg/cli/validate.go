package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/shelfd/pkg/cli/internal/output"
	"github.com/getmockd/shelfd/pkg/config"
)

// ConfigEntry is one resolved setting in validate output.
type ConfigEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// ValidateOutput represents JSON output format
type ValidateOutput struct {
	Valid    bool          `json:"valid"`
	Errors   []string      `json:"errors,omitempty"`
	Settings []ConfigEntry `json:"settings"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the resolved configuration and show where each value came from",
	Example: `  shelfd validate --config shelfd.yaml
  SHELFD_APP=books shelfd validate --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		out := ValidateOutput{Valid: true, Settings: settings(cfg)}
		verr := cfg.Validate()
		if verr != nil {
			out.Valid = false
			out.Errors = strings.Split(verr.Error(), "\n")
		}

		w := cmd.OutOrStdout()
		if jsonOutput {
			if err := output.JSON(w, out); err != nil {
				return err
			}
		} else {
			tw := output.Table(w)
			fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
			for _, e := range out.Settings {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, e.Value, e.Source)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, e := range out.Errors {
				fmt.Fprintf(w, "  - %s\n", e)
			}
			if out.Valid {
				fmt.Fprintln(w, "Configuration is valid")
			}
		}

		if verr != nil {
			return errors.New("configuration is invalid")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func settings(cfg *config.Config) []ConfigEntry {
	secret := ""
	if cfg.Auth.TokenSecret != "" {
		secret = "********"
	}
	values := map[string]string{
		"app":                      cfg.App,
		"env":                      cfg.Env,
		"server.host":              cfg.Server.Host,
		"server.port":              strconv.Itoa(cfg.Server.Port),
		"server.readTimeout":       cfg.Server.ReadTimeout.String(),
		"server.writeTimeout":      cfg.Server.WriteTimeout.String(),
		"server.shutdownTimeout":   cfg.Server.ShutdownTimeout.String(),
		"log.level":                cfg.Log.Level,
		"log.format":               cfg.Log.Format,
		"storage.driver":           cfg.Storage.Driver,
		"storage.dsn":              cfg.Storage.DSN,
		"auth.bcryptCost":          strconv.Itoa(cfg.Auth.BcryptCost),
		"auth.tokenSecret":         secret,
		"auth.tokenTTL":            cfg.Auth.TokenTTL.String(),
		"rateLimit.enabled":        strconv.FormatBool(cfg.RateLimit.Enabled),
		"rateLimit.rate":           strconv.FormatFloat(cfg.RateLimit.Rate, 'g', -1, 64),
		"rateLimit.burst":          strconv.Itoa(cfg.RateLimit.Burst),
		"rateLimit.trustedProxies": strings.Join(cfg.RateLimit.TrustedProxies, ","),
	}

	keys := config.Keys()
	entries := make([]ConfigEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, ConfigEntry{Key: k, Value: values[k], Source: cfg.Source(k)})
	}
	return entries
}
