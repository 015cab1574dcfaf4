package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_StatusCode(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindInvalidInput, http.StatusBadRequest},
		{KindBadRequest, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindTooManyRequests, http.StatusTooManyRequests},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.StatusCode())
		})
	}
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, MsgInputMustBeNumber, InvalidInput().Message)
	assert.Equal(t, MsgBadRequest, BadRequest(nil).Message)
	assert.Equal(t, MsgUnauthorized, Unauthorized().Message)
	assert.Equal(t, "Book not found", NotFound("Book not found").Message)
	assert.Equal(t, MsgNotFound, NotFound("").Message)
	assert.Equal(t, MsgConflict, Conflict("").Message)
}

func TestFrom(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, From(nil))
	})

	t.Run("api error passes through wrapping", func(t *testing.T) {
		orig := Conflict("User already exists")
		got := From(fmt.Errorf("register: %w", orig))
		assert.Same(t, orig, got)
	})

	t.Run("plain error becomes internal with stack", func(t *testing.T) {
		cause := errors.New("disk on fire")
		got := From(cause)
		require.NotNil(t, got)
		assert.Equal(t, KindInternal, got.Kind)
		assert.Equal(t, MsgInternal, got.Message)
		assert.ErrorIs(t, got, cause)
		assert.Contains(t, got.Stack(), "disk on fire")
		assert.Contains(t, got.Stack(), "apierror")
	})
}

type missingErr struct{}

func (missingErr) Error() string   { return "no such row" }
func (missingErr) StatusCode() int { return http.StatusNotFound }

func TestFrom_StatusCodeNotFound(t *testing.T) {
	got := From(fmt.Errorf("lookup: %w", missingErr{}))
	require.NotNil(t, got)
	assert.Equal(t, KindNotFound, got.Kind)
	assert.Equal(t, MsgNotFound, got.Message)
	assert.Empty(t, got.Stack())
}

func TestStack_EmptyForClientErrors(t *testing.T) {
	assert.Empty(t, BadRequest(errors.New("missing key")).Stack())
	assert.Empty(t, Unauthorized().Stack())
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Unauthorized())
	assert.True(t, Is(err, KindUnauthorized))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(errors.New("plain"), KindUnauthorized))
}
