package id

import (
	"regexp"
	"strings"
	"sync"
	"testing"
)

func TestUUID_Format(t *testing.T) {
	id := UUID()

	uuidRegex := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	if !uuidRegex.MatchString(id) {
		t.Errorf("UUID() = %q, does not match UUID v4 format", id)
	}
}

func TestUUID_Uniqueness(t *testing.T) {
	const n = 1000
	var mu sync.Mutex
	seen := make(map[string]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := UUID()
			mu.Lock()
			defer mu.Unlock()
			if seen[id] {
				t.Errorf("duplicate UUID %s", id)
			}
			seen[id] = true
		}()
	}
	wg.Wait()
}

func TestIsValidRequestID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abc-123", true},
		{"trace_id.7", true},
		{"550e8400-e29b-41d4-a716-446655440000", true},
		{"", false},
		{"has space", false},
		{"line\nbreak", false},
		{"quote\"", false},
		{strings.Repeat("a", 129), false},
		{strings.Repeat("a", 128), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsValidRequestID(tt.input); got != tt.want {
				t.Errorf("IsValidRequestID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	if got := RequestID("client-id-1"); got != "client-id-1" {
		t.Errorf("RequestID kept = %q, want client-id-1", got)
	}
	if got := RequestID("bad id"); got == "bad id" || len(got) != 36 {
		t.Errorf("RequestID replaced = %q, want a fresh UUID", got)
	}
}
