package helper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	t.Run("Wrap error with context", func(t *testing.T) {
		inner := fmt.Errorf("connection refused")

		err := NewError("opening database", inner)

		assert.Error(t, err, "Expected NewError to return a non-nil error")
		assert.Equal(t, "error in opening database: connection refused", err.Error(),
			"Expected wrapped error to contain context and inner message")
	})

	t.Run("Wrapped error unwraps to the inner error", func(t *testing.T) {
		inner := fmt.Errorf("row not found")

		err := NewError("selecting group", inner)

		assert.True(t, errors.Is(err, inner), "Expected errors.Is to find the inner error")
	})
}
