// Package config loads shelfd's runtime configuration.
//
// Values are layered with the following precedence (highest to lowest):
//
//  1. Command-line flags (applied by pkg/cli)
//  2. Environment variables (PORT and SHELFD_*)
//  3. YAML config file (--config)
//  4. Default values
//
// The source of each overridden value is recorded in Config.Sources so
// `shelfd validate` can report where a setting came from.
package config
