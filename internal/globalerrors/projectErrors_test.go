package globalerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meza/minepkg/internal/models"
)

func TestModNotFoundError(t *testing.T) {
	err := &ModNotFoundError{Reference: "jei", Provider: models.CURSE}
	assert.Equal(t, "mod not found on curse: jei", err.Error())

	wrapped := fmt.Errorf("resolving: %w", err)
	assert.ErrorIs(t, wrapped, &ModNotFoundError{Reference: "jei", Provider: models.CURSE})
	assert.NotErrorIs(t, wrapped, &ModNotFoundError{Reference: "journeymap", Provider: models.CURSE})
	assert.False(t, err.Is(errors.New("other")))
}

func TestFileNotFoundError(t *testing.T) {
	err := &FileNotFoundError{ModID: 238222, FileID: 3040523}
	assert.Equal(t, "file 3040523 of mod 238222 not found", err.Error())
	assert.True(t, err.Is(&FileNotFoundError{ModID: 238222, FileID: 3040523}))
	assert.False(t, err.Is(&FileNotFoundError{ModID: 238222, FileID: 1}))
	assert.False(t, err.Is(errors.New("other")))
}

func TestAPIError(t *testing.T) {
	cause := errors.New("connection reset")
	err := APIErrorWrap(cause, "addon 42", models.CURSE)

	assert.Equal(t, "addon 42 cannot be fetched due to an api error on curse: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &APIError{Resource: "addon 42", Provider: models.CURSE})
	assert.NotErrorIs(t, err, &APIError{Resource: "addon 43", Provider: models.CURSE})

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, cause, apiErr.Unwrap())
}
