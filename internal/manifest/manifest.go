package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/meza/minepkg/internal/constants"
	"github.com/meza/minepkg/internal/fileutils"
	"github.com/meza/minepkg/internal/models"
	"github.com/meza/minepkg/internal/perf"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultVersion = "0.1.0"

// Manifest is the minepkg.toml of a project.
type Manifest struct {
	Package      Package           `toml:"package"`
	Requirements Requirements      `toml:"requirements"`
	Entries      map[string]string `toml:"dependencies"`
}

type Package struct {
	Name    string `toml:"name"`
	Version string `toml:"version,omitempty"`
}

type Requirements struct {
	MinecraftVersion string `toml:"minecraft-version"`
}

// Dependency is one parsed entry of the [dependencies] table.
type Dependency struct {
	Key      string
	Provider models.Provider
	Name     string
}

func New(name string, minecraftVersion string) *Manifest {
	return &Manifest{
		Package:      Package{Name: name, Version: DefaultVersion},
		Requirements: Requirements{MinecraftVersion: minecraftVersion},
		Entries:      map[string]string{},
	}
}

// Path returns the manifest location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.ManifestFileName)
}

func Read(fs afero.Fs, path string) (*Manifest, error) {
	_, span := perf.StartSpan(context.Background(), "io.manifest.read", perf.WithAttributes(attribute.String("path", path)))
	defer span.End()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ManifestNotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, &ManifestInvalidError{Path: path, Err: err}
	}
	if manifest.Entries == nil {
		manifest.Entries = map[string]string{}
	}
	return &manifest, nil
}

// ReadOrCreate reads the manifest in dir, or returns a fresh one named after
// the directory when none exists yet. Nothing is written.
func ReadOrCreate(fs afero.Fs, dir string, minecraftVersion string) (*Manifest, bool, error) {
	manifest, err := Read(fs, Path(dir))
	if err == nil {
		return manifest, false, nil
	}
	var notFound *ManifestNotFoundError
	if !errors.As(err, &notFound) {
		return nil, false, err
	}

	name := filepath.Base(filepath.Clean(dir))
	if absolute, absErr := filepath.Abs(dir); absErr == nil {
		name = filepath.Base(absolute)
	}
	return New(name, minecraftVersion), true, nil
}

// Dependencies parses every entry of the [dependencies] table, ordered by key.
func (m *Manifest) Dependencies() ([]Dependency, error) {
	keys := make([]string, 0, len(m.Entries))
	for key := range m.Entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	deps := make([]Dependency, 0, len(keys))
	for _, key := range keys {
		value := m.Entries[key]
		providerName, name, found := strings.Cut(value, ":")
		if !found || providerName == "" || name == "" {
			return nil, &MalformedDependencyError{Dependency: key, Value: value}
		}
		provider, ok := models.ParseProvider(providerName)
		if !ok {
			return nil, &UnsupportedProviderError{Dependency: key, Provider: providerName}
		}
		deps = append(deps, Dependency{Key: key, Provider: provider, Name: name})
	}
	return deps, nil
}

// AddDependency records mod under its slug. It reports false when the slug
// was already present with the same source.
func (m *Manifest) AddDependency(mod models.Mod) bool {
	if m.Entries == nil {
		m.Entries = map[string]string{}
	}
	slug := mod.Slug()
	source := models.CURSE.String() + ":" + slug
	if m.Entries[slug] == source {
		return false
	}
	m.Entries[slug] = source
	return true
}

func (m *Manifest) Save(fs afero.Fs, path string) error {
	_, span := perf.StartSpan(context.Background(), "io.manifest.write", perf.WithAttributes(attribute.String("path", path)))

	data, err := toml.Marshal(m)
	if err != nil {
		span.EndWithError(err)
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	err = fileutils.WriteFileAtomic(fs, path, data)
	span.EndWithError(err)
	return err
}
