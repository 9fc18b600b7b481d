package manifest

import "fmt"

type ManifestNotFoundError struct {
	Path string
	Err  error
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("manifest not found: %s", e.Path)
}

func (e *ManifestNotFoundError) Unwrap() error {
	return e.Err
}

type ManifestInvalidError struct {
	Path string
	Err  error
}

func (e *ManifestInvalidError) Error() string {
	return fmt.Sprintf("manifest %s is invalid: %s", e.Path, e.Err)
}

func (e *ManifestInvalidError) Unwrap() error {
	return e.Err
}

// UnsupportedProviderError is returned for a dependency whose source prefix is
// not a known provider.
type UnsupportedProviderError struct {
	Dependency string
	Provider   string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("dependency %s uses unsupported provider %q", e.Dependency, e.Provider)
}

func (e *UnsupportedProviderError) Is(target error) bool {
	t, ok := target.(*UnsupportedProviderError)
	if !ok {
		return false
	}
	return t.Provider == e.Provider
}

type MalformedDependencyError struct {
	Dependency string
	Value      string
}

func (e *MalformedDependencyError) Error() string {
	return fmt.Sprintf("dependency %s has malformed source %q, expected provider:name", e.Dependency, e.Value)
}
