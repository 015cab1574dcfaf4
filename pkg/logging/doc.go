// Package logging provides structured logging configuration for shelfd.
//
// This package wraps log/slog so every component logs the same way. It
// supports configurable levels and output formats, and by default masks
// credential attributes (passwords, tokens, security answers) before they
// reach the output.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatJSON,
//	})
//
//	logger.Info("server started", "port", 3000)
//	logger.Warn("login failed", "email", email, "password", pw) // password is masked
//
// # Integration
//
// Components accept a *slog.Logger in their constructor or through an option.
// If no logger is provided, use logging.Nop().
package logging
