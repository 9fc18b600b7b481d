package catalog

import (
	"fmt"
)

// CacheReadError means the snapshot exists (or should exist) but could not be opened.
type CacheReadError struct {
	Path string
	Err  error
}

func (e *CacheReadError) Error() string {
	return fmt.Sprintf("cannot read catalog snapshot %s: %v", e.Path, e.Err)
}

func (e *CacheReadError) Unwrap() error {
	return e.Err
}

// CacheCorruptError means the snapshot was opened but did not decode. It is
// never treated as a missing snapshot; `minepkg refresh` replaces it.
type CacheCorruptError struct {
	Path string
	Err  error
}

func (e *CacheCorruptError) Error() string {
	return fmt.Sprintf("catalog snapshot %s is corrupt, run refresh to rebuild it: %v", e.Path, e.Err)
}

func (e *CacheCorruptError) Unwrap() error {
	return e.Err
}

type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("catalog feed %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch catalog feed %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	t, ok := target.(*NetworkError)
	if !ok {
		return false
	}
	return e.URL == t.URL && e.StatusCode == t.StatusCode
}

type InvalidReferenceReason string

const (
	ReasonEmptyReference InvalidReferenceReason = "empty reference"
	ReasonMissingSlug    InvalidReferenceReason = "project url without a slug"
	ReasonIDOutOfRange   InvalidReferenceReason = "numeric id out of range"
)

type InvalidReferenceError struct {
	Reference string
	Reason    InvalidReferenceReason
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid mod reference %q: %s", e.Reference, e.Reason)
}

func (e *InvalidReferenceError) Is(target error) bool {
	t, ok := target.(*InvalidReferenceError)
	if !ok {
		return false
	}
	return e.Reason == t.Reason
}
