package fileutils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type renameFailFs struct {
	afero.Fs
	failOnce map[string]bool
}

func (filesystem *renameFailFs) Rename(oldname, newname string) error {
	if filesystem.failOnce[newname] {
		delete(filesystem.failOnce, newname)
		return errors.New("rename refused")
	}
	return filesystem.Fs.Rename(oldname, newname)
}

func listFiles(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()
	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestWriteFileAtomicCreatesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	target := filepath.FromSlash("/data/minepkg.toml")

	require.NoError(t, WriteFileAtomic(fs, target, []byte("hello")))

	content, err := afero.ReadFile(fs, target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
	assert.Equal(t, []string{"minepkg.toml"}, listFiles(t, fs, filepath.Dir(target)))
}

func TestWriteFileAtomicReplacesExistingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	target := filepath.FromSlash("/data/minepkg.toml")
	require.NoError(t, afero.WriteFile(fs, target, []byte("old"), 0o644))

	require.NoError(t, WriteFileAtomic(fs, target, []byte("new")))

	content, err := afero.ReadFile(fs, target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
	assert.Equal(t, []string{"minepkg.toml"}, listFiles(t, fs, filepath.Dir(target)))
}

func TestCommitFallsBackToBackupRename(t *testing.T) {
	target := filepath.FromSlash("/data/mod.jar")
	fs := &renameFailFs{Fs: afero.NewMemMapFs(), failOnce: map[string]bool{target: true}}
	require.NoError(t, afero.WriteFile(fs, target, []byte("old"), 0o644))

	temp, err := TempSibling(fs, target)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, temp, []byte("new"), 0o644))

	require.NoError(t, Commit(fs, temp, target))

	content, err := afero.ReadFile(fs, target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
	assert.Equal(t, []string{"mod.jar"}, listFiles(t, fs, filepath.Dir(target)))
}

func TestCommitRemovesTempWhenRenameFails(t *testing.T) {
	target := filepath.FromSlash("/data/mod.jar")
	fs := &renameFailFs{Fs: afero.NewMemMapFs(), failOnce: map[string]bool{target: true}}

	temp, err := TempSibling(fs, target)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(temp, ".tmp"))

	err = Commit(fs, temp, target)
	assert.ErrorContains(t, err, "rename refused")
	assert.False(t, FileExists(temp, fs))
	assert.False(t, FileExists(target, fs))
}

func TestRemoveIfExistsIgnoresMissing(t *testing.T) {
	assert.NoError(t, RemoveIfExists(afero.NewMemMapFs(), "/missing"))
}

func TestInitFilesystemDefaultsToOs(t *testing.T) {
	assert.IsType(t, &afero.OsFs{}, InitFilesystem())
	memFs := afero.NewMemMapFs()
	assert.Equal(t, memFs, InitFilesystem(memFs))
	_, statErr := os.Stat(os.TempDir())
	assert.NoError(t, statErr)
}
