package config

import (
	"path/filepath"
	"testing"

	"github.com/meza/minepkg/internal/constants"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATA_DIR", "FEED_URL", "METADATA_URL", "CONCURRENCY", "RATE_LIMIT"} {
		t.Setenv(constants.EnvPrefix+"_"+key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	config, err := Load(afero.NewMemMapFs(), "/config/config.toml")
	require.NoError(t, err)

	assert.Equal(t, DefaultDataDir(), config.DataDir)
	assert.Equal(t, constants.DefaultFeedURL, config.FeedURL)
	assert.Equal(t, constants.DefaultMetadataURL, config.MetadataURL)
	assert.Equal(t, DefaultConcurrency, config.Concurrency)
	assert.InDelta(t, DefaultRateLimit, config.RateLimit, 0.0001)
	assert.Empty(t, config.File)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config/config.toml", []byte(`
data_dir = "/srv/minepkg"
feed_url = "https://mirror.example/complete.json.bz2"
concurrency = 8
rate_limit = 2.5
`), 0o644))

	config, err := Load(fs, "/config/config.toml")
	require.NoError(t, err)

	assert.Equal(t, "/srv/minepkg", config.DataDir)
	assert.Equal(t, "https://mirror.example/complete.json.bz2", config.FeedURL)
	assert.Equal(t, constants.DefaultMetadataURL, config.MetadataURL)
	assert.Equal(t, 8, config.Concurrency)
	assert.InDelta(t, 2.5, config.RateLimit, 0.0001)
	assert.Equal(t, "/config/config.toml", config.File)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config/config.toml", []byte("concurrency = 8\n"), 0o644))
	t.Setenv("MINEPKG_CONCURRENCY", "2")
	t.Setenv("MINEPKG_DATA_DIR", filepath.FromSlash("/env/data"))

	config, err := Load(fs, "/config/config.toml")
	require.NoError(t, err)

	assert.Equal(t, 2, config.Concurrency)
	assert.Equal(t, filepath.FromSlash("/env/data"), config.DataDir)
}

func TestLoadInvalidFile(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config/config.toml", []byte("concurrency = [\n"), 0o644))

	_, err := Load(fs, "/config/config.toml")

	var invalid *ConfigFileInvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "/config/config.toml", invalid.Path)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
		key  string
	}{
		{name: "negative concurrency", env: "MINEPKG_CONCURRENCY", val: "-1", key: KeyConcurrency},
		{name: "negative rate limit", env: "MINEPKG_RATE_LIMIT", val: "-0.5", key: KeyRateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, tt.val)

			_, err := Load(afero.NewMemMapFs(), "/config/config.toml")
			assert.ErrorIs(t, err, &ConfigValueError{Key: tt.key})
		})
	}
}

func TestDefaultPaths(t *testing.T) {
	assert.Equal(t, constants.AppName, filepath.Base(DefaultDataDir()))
	assert.Equal(t, "config.toml", filepath.Base(DefaultFile()))
	assert.Equal(t, constants.AppName, filepath.Base(filepath.Dir(DefaultFile())))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "configuration value concurrency=-1 is invalid: nope", (&ConfigValueError{Key: "concurrency", Value: -1, Reason: "nope"}).Error())
	assert.False(t, (&ConfigValueError{Key: "a"}).Is(&ConfigFileInvalidError{}))
}
