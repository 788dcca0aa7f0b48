package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapWithKeepsFieldsAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := WrapWith("data_generation_error", "landcover failed", cause, map[string]any{"operation": "landcover"})

	require.True(t, IsCode(err, "data_generation_error"))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "landcover failed: boom", err.Error())
	require.Equal(t, "landcover", FieldsOf(fmt.Errorf("outer: %w", err))["operation"])
}

func TestIsCodeOnPlainError(t *testing.T) {
	require.False(t, IsCode(errors.New("plain"), "storage_error"))
	require.Nil(t, FieldsOf(errors.New("plain")))
}
