package id

import "github.com/google/uuid"

// maxRequestIDLength bounds client-supplied request IDs.
const maxRequestIDLength = 128

// UUID generates a UUID v4 (random).
func UUID() string {
	return uuid.NewString()
}

// RequestID returns incoming when it is a usable request ID, otherwise a new UUID.
func RequestID(incoming string) string {
	if IsValidRequestID(incoming) {
		return incoming
	}
	return UUID()
}

// IsValidRequestID reports whether s is non-empty, bounded, and made only of
// letters, digits, '-', '_' and '.'.
func IsValidRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
