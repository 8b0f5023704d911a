package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdeck/newswire/internal/apperr"
)

func TestNewInvalidItem(t *testing.T) {
	err := apperr.NewInvalidItem("missing title")

	assert.Equal(t, "invalid item: missing title", err.Error())
}

func TestNewProvider_Unwrap(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := apperr.NewProvider(inner)

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "provider unavailable: connection refused", err.Error())
}

func TestProviderError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewProvider(fmt.Errorf("timeout"))

	wrapped := fmt.Errorf("tick failed: %w", original)
	doubleWrapped := fmt.Errorf("scheduler: %w", wrapped)

	var pe *apperr.ProviderError
	require.ErrorAs(t, doubleWrapped, &pe)
}

func TestBudgetExhausted_IsSentinel(t *testing.T) {
	wrapped := fmt.Errorf("tick rejected: %w", apperr.ErrBudgetExhausted)

	assert.ErrorIs(t, wrapped, apperr.ErrBudgetExhausted)
}

func TestPersistenceError_NotFoundForPlainErrors(t *testing.T) {
	plain := fmt.Errorf("database connection failed")
	wrapped := fmt.Errorf("storage error: %w", plain)

	var pe *apperr.PersistenceError
	assert.False(t, errors.As(wrapped, &pe))
}

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("parse failed")
	err := apperr.NewValidationWrap("invalid room name", inner)

	assert.Equal(t, "invalid room name: parse failed", err.Error())
	assert.ErrorIs(t, err, inner)
}
