// Package globalerrors defines the error types shared by the catalog, the
// metadata client and the resolver.
package globalerrors

import (
	"fmt"

	"github.com/meza/minepkg/internal/models"
)

// ModNotFoundError reports a reference (id, slug or name) that matched nothing.
type ModNotFoundError struct {
	Reference string
	Provider  models.Provider
}

func (e *ModNotFoundError) Error() string {
	return fmt.Sprintf("mod not found on %s: %s", e.Provider, e.Reference)
}

func (e *ModNotFoundError) Is(target error) bool {
	t, ok := target.(*ModNotFoundError)
	if !ok {
		return false
	}
	return e.Reference == t.Reference && e.Provider == t.Provider
}

type FileNotFoundError struct {
	ModID  uint32
	FileID uint32
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file %d of mod %d not found", e.FileID, e.ModID)
}

func (e *FileNotFoundError) Is(target error) bool {
	t, ok := target.(*FileNotFoundError)
	if !ok {
		return false
	}
	return e.ModID == t.ModID && e.FileID == t.FileID
}

// APIError wraps a failed remote call that was not a plain "not found".
type APIError struct {
	Resource string
	Provider models.Provider
	Err      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s cannot be fetched due to an api error on %s: %v", e.Resource, e.Provider, e.Err)
}

func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Resource == t.Resource && e.Provider == t.Provider
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func APIErrorWrap(err error, resource string, provider models.Provider) error {
	return &APIError{
		Resource: resource,
		Provider: provider,
		Err:      err,
	}
}
