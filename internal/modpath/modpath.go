// Package modpath places installed archives inside a mods directory.
package modpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// EscapeError is returned when an archive would end up outside the mods
// directory, either through its name or through a symlink already sitting at
// the destination.
type EscapeError struct {
	Name     string
	Resolved string
	ModsDir  string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("%s resolves to %s which is outside the mods directory %s", e.Name, e.Resolved, e.ModsDir)
}

type pathFuncs struct {
	evalSymlinks func(string) (string, error)
	abs          func(string) (string, error)
}

var osPathFuncs = pathFuncs{evalSymlinks: filepath.EvalSymlinks, abs: filepath.Abs}

// Destination joins name onto modsDir. Filesystems that cannot read links only
// get the lexical check.
func Destination(fs afero.Fs, modsDir string, name string) (string, error) {
	return destination(fs, modsDir, name, osPathFuncs)
}

func destination(fs afero.Fs, modsDir string, name string, funcs pathFuncs) (string, error) {
	path := filepath.Join(modsDir, name)
	if name == "" || filepath.Base(name) != name || !within(filepath.Clean(modsDir), path) {
		return "", &EscapeError{Name: name, Resolved: path, ModsDir: modsDir}
	}

	lstater, canLstat := fs.(afero.Lstater)
	linkReader, canReadLink := fs.(afero.LinkReader)
	if !canLstat || !canReadLink {
		return path, nil
	}

	info, _, err := lstater.LstatIfPossible(path)
	if errors.Is(err, os.ErrNotExist) {
		return path, nil
	}
	if err != nil {
		return "", err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return path, nil
	}

	root, err := resolve(modsDir, funcs)
	if err != nil {
		return "", err
	}
	target, err := linkReader.ReadlinkIfPossible(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(modsDir, target)
	}
	targetDir, err := resolve(filepath.Dir(target), funcs)
	if err != nil {
		return "", err
	}
	resolved := filepath.Join(targetDir, filepath.Base(target))
	if !within(root, resolved) {
		return "", &EscapeError{Name: name, Resolved: resolved, ModsDir: root}
	}
	return path, nil
}

func resolve(path string, funcs pathFuncs) (string, error) {
	resolved, err := funcs.evalSymlinks(path)
	if err != nil {
		return "", err
	}
	return funcs.abs(resolved)
}

func within(root string, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
