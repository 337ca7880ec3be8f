package errors_test

import (
	"log/slog"
	"testing"

	"github.com/myrjola/entangled/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotatedError_Wrap(t *testing.T) {
	sentinel := errors.NewSentinel("document missing")
	wrapped := errors.Wrap(sentinel, "load inventory", slog.String("user_id", "u-1"))

	require.Error(t, wrapped)
	assert.True(t, errors.Is(wrapped, sentinel), "wrapped error should match its sentinel")
	assert.Equal(t, "load inventory: document missing", wrapped.Error())
}

func TestAnnotatedError_LogValue(t *testing.T) {
	err := errors.New("boom", slog.Int("level", 42))

	var annotated errors.AnnotatedError
	require.True(t, errors.As(err, &annotated))

	value := annotated.LogValue()
	require.Equal(t, slog.KindGroup, value.Kind())

	keys := make(map[string]bool)
	for _, attr := range value.Group() {
		keys[attr.Key] = true
	}
	assert.True(t, keys["source"], "log value should contain the error source")
	assert.True(t, keys["level"], "log value should contain custom attributes")
}
