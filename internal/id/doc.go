// Package id provides identifier generation for shelfd.
//
// Request IDs are UUID v4 strings produced with github.com/google/uuid.
// Incoming X-Request-ID values are accepted only when they look like an
// identifier a client could legitimately send, so log lines cannot be
// forged through the header.
package id
