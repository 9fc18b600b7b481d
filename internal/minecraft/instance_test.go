package minecraft

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mmcPack = `{
  "components": [
    {"uid": "org.lwjgl", "cachedName": "LWJGL 2", "cachedVersion": "2.9.4"},
    {"uid": "net.minecraft", "cachedName": "Minecraft", "cachedVersion": "1.12.2"},
    {"uid": "net.minecraftforge", "cachedName": "Forge", "cachedVersion": "14.23.5.2854"}
  ],
  "formatVersion": 1
}`

func TestDetectMultiMC(t *testing.T) {
	for _, gameDir := range []string{"minecraft", ".minecraft"} {
		t.Run(gameDir, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/instance/mmc-pack.json", []byte(mmcPack), 0o644))
			require.NoError(t, fs.MkdirAll(filepath.Join("/instance", gameDir), 0o755))

			instance, err := Detect(fs, "/instance")
			require.NoError(t, err)

			assert.Equal(t, Instance{
				Flavour: MultiMC,
				Version: "1.12.2",
				ModsDir: filepath.Join("/instance", gameDir, "mods"),
			}, instance)
		})
	}

	t.Run("wins over a vanilla layout", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/instance/mmc-pack.json", []byte(mmcPack), 0o644))
		require.NoError(t, fs.MkdirAll("/instance/minecraft", 0o755))
		require.NoError(t, fs.MkdirAll("/instance/versions/1.16.5", 0o755))

		instance, err := Detect(fs, "/instance")
		require.NoError(t, err)
		assert.Equal(t, MultiMC, instance.Flavour)
	})

	t.Run("missing minecraft component leaves the version empty", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/instance/mmc-pack.json", []byte(`{"components": []}`), 0o644))
		require.NoError(t, fs.MkdirAll("/instance/minecraft", 0o755))

		instance, err := Detect(fs, "/instance")
		require.NoError(t, err)
		assert.Empty(t, instance.Version)
	})

	t.Run("no game directory", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/instance/mmc-pack.json", []byte(mmcPack), 0o644))

		_, err := Detect(fs, "/instance")
		assert.ErrorIs(t, err, ErrModsDirNotFound)
	})

	t.Run("a file named minecraft is not a game directory", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/instance/mmc-pack.json", []byte(mmcPack), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/instance/minecraft", []byte("x"), 0o644))

		_, err := Detect(fs, "/instance")
		assert.ErrorIs(t, err, ErrModsDirNotFound)
	})

	t.Run("invalid pack file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/instance/mmc-pack.json", []byte("{"), 0o644))

		_, err := Detect(fs, "/instance")
		assert.ErrorContains(t, err, "failed to parse mmc-pack.json")
	})
}

func TestDetectVanilla(t *testing.T) {
	t.Run("latest installed version", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		for _, version := range []string{"1.8.9", "1.12.2", "1.16.5", "1.9", "20w14a"} {
			require.NoError(t, fs.MkdirAll(filepath.Join("/game/versions", version), 0o755))
		}
		require.NoError(t, afero.WriteFile(fs, "/game/versions/launcher_profiles.json", []byte("{}"), 0o644))

		instance, err := Detect(fs, "/game")
		require.NoError(t, err)
		assert.Equal(t, Instance{
			Flavour: Vanilla,
			Version: "1.16.5",
			ModsDir: filepath.Join("/game", "versions", "1.16.5", "mods"),
			Assumed: true,
		}, instance)
	})

	t.Run("empty versions directory", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/game/versions", 0o755))

		_, err := Detect(fs, "/game")
		assert.ErrorIs(t, err, ErrNeverLaunched)
		assert.EqualError(t, err, "you need to launch minecraft once")
	})

	t.Run("nothing found", func(t *testing.T) {
		_, err := Detect(afero.NewMemMapFs(), "/nowhere")
		assert.ErrorIs(t, err, ErrNoInstance)
	})
}

func TestLatestVersion(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected string
		ok       bool
	}{
		{name: "empty", input: nil, ok: false},
		{name: "numeric not lexical", input: []string{"1.9", "1.10.2"}, expected: "1.10.2", ok: true},
		{name: "release beats modded build", input: []string{"1.16.5-forge-36.1.0", "1.16.5"}, expected: "1.16.5", ok: true},
		{name: "snapshots rank lowest", input: []string{"21w03a", "1.7.10"}, expected: "1.7.10", ok: true},
		{name: "only snapshots", input: []string{"20w14a", "21w03a"}, expected: "21w03a", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest, ok := LatestVersion(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, latest)
		})
	}
}
