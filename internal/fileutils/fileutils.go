// Package fileutils wraps afero with the temp-then-rename writes used for every
// file minepkg commits to disk.
package fileutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const DefaultFileMode os.FileMode = 0o644

func FileExists(path string, filesystem ...afero.Fs) bool {
	exists, _ := afero.Exists(InitFilesystem(filesystem...), path)
	return exists
}

func InitFilesystem(filesystem ...afero.Fs) afero.Fs {
	if len(filesystem) > 0 && filesystem[0] != nil {
		return filesystem[0]
	}

	return afero.NewOsFs()
}

// TempSibling creates an empty temp file next to target so the final rename
// never crosses a filesystem boundary.
func TempSibling(fs afero.Fs, target string) (string, error) {
	dir := filepath.Dir(target)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	file, err := afero.TempFile(fs, dir, filepath.Base(target)+".minepkg.*.tmp")
	if err != nil {
		return "", err
	}
	name := file.Name()
	if err := file.Close(); err != nil {
		_ = fs.Remove(name)
		return "", err
	}
	return name, nil
}

// WriteFileAtomic writes data to a sibling temp file and commits it over targetPath.
func WriteFileAtomic(fs afero.Fs, targetPath string, data []byte) error {
	tempPath, err := TempSibling(fs, targetPath)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fs, tempPath, data, DefaultFileMode); err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}
	return Commit(fs, tempPath, targetPath)
}

// Commit moves tempPath over targetPath. When the filesystem refuses to rename
// over an existing file the old file is moved aside first and restored if the
// second rename fails.
func Commit(fs afero.Fs, tempPath string, targetPath string) error {
	exists, err := afero.Exists(fs, targetPath)
	if err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}
	if !exists {
		return renameTempIntoPlace(fs, tempPath, targetPath)
	}

	if err := fs.Rename(tempPath, targetPath); err == nil {
		return nil
	}

	backupPath, err := nextSiblingPath(fs, targetPath, ".bak")
	if err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}
	if err := fs.Rename(targetPath, backupPath); err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}
	if err := fs.Rename(tempPath, targetPath); err != nil {
		return restoreBackupOnFailure(fs, tempPath, targetPath, backupPath, err)
	}
	if err := RemoveIfExists(fs, backupPath); err != nil {
		return removePathError("backup file", backupPath, err)
	}
	return nil
}

func RemoveIfExists(fs afero.Fs, path string) error {
	removeErr := fs.Remove(path)
	if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		return removeErr
	}
	return nil
}

func nextSiblingPath(fs afero.Fs, targetPath string, suffix string) (string, error) {
	base := targetPath + ".minepkg" + suffix

	candidate := base
	for i := 0; i < 100; i++ {
		exists, err := afero.Exists(fs, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s.%d", base, i+1)
	}

	return "", errors.New("cannot allocate sibling path")
}

func removePathError(kind string, path string, err error) error {
	return fmt.Errorf("failed to remove %s %s: %w", kind, path, err)
}

func cleanupTempOnError(fs afero.Fs, tempPath string, originalErr error) error {
	if cleanupErr := RemoveIfExists(fs, tempPath); cleanupErr != nil {
		return errors.Join(originalErr, removePathError("temp file", tempPath, cleanupErr))
	}
	return originalErr
}

func renameTempIntoPlace(fs afero.Fs, tempPath string, targetPath string) error {
	renameErr := fs.Rename(tempPath, targetPath)
	if renameErr == nil {
		return nil
	}
	return cleanupTempOnError(fs, tempPath, renameErr)
}

func restoreBackupOnFailure(fs afero.Fs, tempPath string, targetPath string, backupPath string, renameErr error) error {
	cleanupErr := RemoveIfExists(fs, tempPath)
	rollbackErr := fs.Rename(backupPath, targetPath)
	if cleanupErr != nil {
		renameErr = errors.Join(renameErr, removePathError("temp file", tempPath, cleanupErr))
	}
	if rollbackErr != nil {
		renameErr = errors.Join(renameErr, fmt.Errorf("failed to restore backup %s: %w", backupPath, rollbackErr))
	}
	return renameErr
}
