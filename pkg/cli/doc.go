// Package cli implements the shelfd command line: serve, validate,
// hash-password and version.
package cli
