package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},

		{"DEBUG", LevelDebug},
		{"WARNING", LevelWarn},
		{"Error", LevelError},
		{"dEbUg", LevelDebug},

		// Empty and unrecognized default to Info
		{"", LevelInfo},
		{"trace", LevelInfo},
		{"fatal", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"Json", FormatJSON},
		{"text", FormatText},
		{"", FormatText},
		{"yaml", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseFormat(tt.input)
			if result != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNew_JSONRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Format: FormatJSON, Output: &buf})

	logger.Info("login attempt",
		"email", "ron@hogwarts.edu",
		"password", "scabbers",
		slog.Group("body", slog.String("newPassword", "hunter2"), slog.String("title", "kept")),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ron@hogwarts.edu", entry["email"])
	assert.Equal(t, Redacted, entry["password"])

	body, ok := entry["body"].(map[string]any)
	require.True(t, ok, "body group should be an object")
	assert.Equal(t, Redacted, body["newPassword"])
	assert.Equal(t, "kept", body["title"])
}

func TestNew_WithAttrsRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatText, Output: &buf}).With("token", "abc.def.ghi")

	logger.Info("issued")

	assert.NotContains(t, buf.String(), "abc.def.ghi")
	assert.Contains(t, buf.String(), Redacted)
}

func TestNew_DisableRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatText, Output: &buf, DisableRedaction: true})

	logger.Info("debugging", "password", "plain")

	assert.True(t, strings.Contains(buf.String(), "password=plain"))
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNop(t *testing.T) {
	logger := Nop()
	require.NotNil(t, logger)
	logger.Error("discarded")
}

func TestParseLevelStrict(t *testing.T) {
	lvl, err := ParseLevelStrict("WARNING")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, lvl)

	_, err = ParseLevelStrict("verbose")
	assert.Error(t, err)
}
