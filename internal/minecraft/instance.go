package minecraft

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
)

type Flavour string

const (
	MultiMC Flavour = "multimc"
	Vanilla Flavour = "vanilla"
)

const (
	multiMCPackFile   = "mmc-pack.json"
	minecraftUID      = "net.minecraft"
	vanillaVersionDir = "versions"
	modsDirName       = "mods"
)

// Instance is a game installation the mods get installed into.
type Instance struct {
	Flavour Flavour
	Version string
	ModsDir string
	// Assumed is set when Version was guessed from the newest installed version.
	Assumed bool
}

type multiMCPack struct {
	Components []multiMCComponent `json:"components"`
}

type multiMCComponent struct {
	UID           string `json:"uid"`
	CachedName    string `json:"cachedName"`
	CachedVersion string `json:"cachedVersion"`
}

// Detect looks for a MultiMC instance in dir first and falls back to the
// vanilla launcher layout.
func Detect(fs afero.Fs, dir string) (Instance, error) {
	instance, err := readMultiMC(fs, dir)
	if err == nil {
		return instance, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Instance{}, err
	}

	instance, err = readVanilla(fs, dir)
	if errors.Is(err, os.ErrNotExist) {
		return Instance{}, ErrNoInstance
	}
	return instance, err
}

func readMultiMC(fs afero.Fs, dir string) (Instance, error) {
	data, err := afero.ReadFile(fs, filepath.Join(dir, multiMCPackFile))
	if err != nil {
		return Instance{}, err
	}

	var pack multiMCPack
	if err := json.Unmarshal(data, &pack); err != nil {
		return Instance{}, fmt.Errorf("failed to parse %s: %w", multiMCPackFile, err)
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return Instance{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	gameDir := ""
	for _, entry := range entries {
		if entry.IsDir() && (entry.Name() == "minecraft" || entry.Name() == ".minecraft") {
			gameDir = entry.Name()
			break
		}
	}
	if gameDir == "" {
		return Instance{}, ErrModsDirNotFound
	}

	version := ""
	for _, component := range pack.Components {
		if component.UID == minecraftUID {
			version = component.CachedVersion
			break
		}
	}

	return Instance{
		Flavour: MultiMC,
		Version: version,
		ModsDir: filepath.Join(dir, gameDir, modsDirName),
	}, nil
}

func readVanilla(fs afero.Fs, dir string) (Instance, error) {
	entries, err := afero.ReadDir(fs, filepath.Join(dir, vanillaVersionDir))
	if err != nil {
		return Instance{}, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	latest, ok := LatestVersion(names)
	if !ok {
		return Instance{}, ErrNeverLaunched
	}

	return Instance{
		Flavour: Vanilla,
		Version: latest,
		ModsDir: filepath.Join(dir, vanillaVersionDir, latest, modsDirName),
		Assumed: true,
	}, nil
}

// LatestVersion picks the highest version name. Names that are not semantic
// versions (snapshots like 20w14a) rank below every release and are ordered
// lexically among themselves.
func LatestVersion(names []string) (string, bool) {
	if len(names) == 0 {
		return "", false
	}

	type candidate struct {
		name    string
		version *semver.Version
	}
	candidates := make([]candidate, 0, len(names))
	for _, name := range names {
		parsed, err := semver.NewVersion(name)
		if err != nil {
			parsed = nil
		}
		candidates = append(candidates, candidate{name: name, version: parsed})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		left, right := candidates[i], candidates[j]
		switch {
		case left.version == nil && right.version == nil:
			return left.name < right.name
		case left.version == nil:
			return true
		case right.version == nil:
			return false
		case left.version.Equal(right.version):
			return left.name < right.name
		default:
			return left.version.LessThan(right.version)
		}
	})
	return candidates[len(candidates)-1].name, true
}
