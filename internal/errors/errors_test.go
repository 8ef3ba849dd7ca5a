package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrTypeStructural, "test error message")

	assert.Equal(t, ErrTypeStructural, err.Type)
	assert.Equal(t, "test error message", err.Message)
	assert.NoError(t, err.Cause)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrTypeBackend, "failed to reach %s", "vector index")

	assert.Equal(t, ErrTypeBackend, err.Type)
	assert.Equal(t, "failed to reach vector index", err.Message)
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(originalErr, ErrTypeBackend, "similarity search failed")

	assert.Equal(t, ErrTypeBackend, wrappedErr.Type)
	assert.Equal(t, "similarity search failed", wrappedErr.Message)
	assert.Equal(t, originalErr, wrappedErr.Cause)
}

func TestWrapf(t *testing.T) {
	originalErr := errors.New("connection refused")
	wrappedErr := Wrapf(
		originalErr,
		ErrTypeBackend,
		"failed to connect to %s:%d",
		"localhost",
		8080,
	)

	assert.Equal(t, ErrTypeBackend, wrappedErr.Type)
	assert.Equal(t, "failed to connect to localhost:8080", wrappedErr.Message)
	assert.Equal(t, originalErr, wrappedErr.Cause)
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "error without cause",
			err: &Error{
				Type:    ErrTypeStructural,
				Message: "query must start with SELECT",
			},
			expected: "structural: query must start with SELECT",
		},
		{
			name: "error with cause",
			err: &Error{
				Type:    ErrTypeBackend,
				Message: "fetch failed",
				Cause:   errors.New("timeout"),
			},
			expected: "backend: fetch failed (caused by: timeout)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestWithSuggestion(t *testing.T) {
	err := New(ErrTypeReferential, "column 'AMT' not found in table 'ORDERS'").
		WithSuggestion("Did you mean: AMOUNT?").
		WithSuggestion("Check the table definition")

	assert.Len(t, err.Suggestions, 2)
	assert.Equal(t, "Did you mean: AMOUNT?", err.Suggestions[0])
}

func TestIsType(t *testing.T) {
	err := New(ErrTypeReferential, "table 'AP_INVOICE_ALL' not found")

	assert.True(t, IsType(err, ErrTypeReferential))
	assert.False(t, IsType(err, ErrTypeSecurity))
	assert.False(t, IsType(errors.New("plain"), ErrTypeReferential))
}

func TestIsTypeWrapped(t *testing.T) {
	inner := New(ErrTypeBackend, "index unavailable")
	outer := fmt.Errorf("retrieval: %w", inner)

	assert.True(t, IsType(outer, ErrTypeBackend))
}

func TestGetType(t *testing.T) {
	assert.Equal(t, ErrTypeSecurity, GetType(New(ErrTypeSecurity, "dangerous keyword")))
	assert.Equal(t, ErrTypeInternal, GetType(errors.New("plain")))
}

func TestIsHallucination(t *testing.T) {
	assert.True(t, IsHallucination(New(ErrTypeReferential, "column not found")))
	assert.False(t, IsHallucination(New(ErrTypeSecurity, "dangerous keyword")))
	assert.False(t, IsHallucination(nil))
}
