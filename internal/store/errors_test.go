package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/memorylane/memorylane-server/internal/store"
)

func TestError_Error(t *testing.T) {
	err := &store.Error{Code: http.StatusNotFound, Message: "not found"}
	assert.Equal(t, "not found", err.Error())
}

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := store.ErrNotFound.WithCause(cause)

	assert.Contains(t, err.Error(), "resource not found")
	assert.Contains(t, err.Error(), "underlying error")
	assert.Equal(t, cause, err.Unwrap())
}

func TestErrMemoryNotFound_MatchesErrNotFound(t *testing.T) {
	wrapped := fmt.Errorf("get memory 7: %w", store.ErrMemoryNotFound)

	assert.ErrorIs(t, wrapped, store.ErrNotFound)
	assert.ErrorIs(t, wrapped, store.ErrMemoryNotFound)
	assert.Equal(t, http.StatusNotFound, store.ErrMemoryNotFound.HTTPCode())
	assert.Equal(t, "Memory not found", store.ErrMemoryNotFound.Error())
}

func TestError_DifferentCodesDoNotMatch(t *testing.T) {
	other := &store.Error{Code: http.StatusConflict, Message: "conflict"}
	assert.NotErrorIs(t, other, store.ErrNotFound)
}
