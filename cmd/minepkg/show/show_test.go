package show

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meza/minepkg/cmd/minepkg/cmdutil/cmdutiltest"
	"github.com/meza/minepkg/internal/catalog"
	"github.com/meza/minepkg/internal/models"
)

func storageDrawers() models.Mod {
	return models.Mod{
		ID:            223852,
		Name:          "Storage Drawers",
		WebSiteURL:    "https://minecraft.curseforge.com/projects/storage-drawers",
		DownloadCount: 12_345_678,
		LatestFiles: []models.ModFile{{
			ID:           2952005,
			FileName:     "StorageDrawers-1.12.2-5.4.2.jar",
			GameVersions: []string{"1.12.2", "1.12.1"},
			Dependencies: []models.ModDependency{
				{AddOnID: 230497, Type: models.Required},
				{AddOnID: 238222, Type: models.Optional},
				{AddOnID: 32274, Type: models.Optional},
			},
		}},
		GameVersionLatestFiles: []models.GameVersionRelease{
			{GameVersion: "1.12.2", FileID: 2952005, FileType: models.Release},
			{GameVersion: "1.12.1", FileID: 2952004, FileType: models.Beta},
		},
	}
}

func TestRender(t *testing.T) {
	expected := "Storage Drawers\n" +
		"===============================\n" +
		"id: 223852\n" +
		"Downloads: 12,345,678\n" +
		"URL: https://minecraft.curseforge.com/projects/storage-drawers\n" +
		"Latest Releases:\n" +
		"· 1.12.2 (Release)\n" +
		"· 1.12.1 (Beta)\n" +
		"\n" +
		"Latest File: StorageDrawers-1.12.2-5.4.2.jar\n" +
		"Game Version: 1.12.2, 1.12.1\n" +
		"Dependencies:\n" +
		"  Required: 1 (230497)\n" +
		"  Optional: 2 (238222, 32274)\n" +
		"  Embedded: 0"

	rendered := Render(storageDrawers(), false)
	assert.Equal(t, expected, rendered)
	snaps.MatchSnapshot(t, rendered)
}

func TestRenderWithoutFiles(t *testing.T) {
	mod := storageDrawers()
	mod.LatestFiles = nil

	rendered := Render(mod, false)
	assert.NotContains(t, rendered, "Latest File")
	assert.Contains(t, rendered, "· 1.12.1 (Beta)")
}

func TestShowByID(t *testing.T) {
	harness := cmdutiltest.New(t)

	out, err := harness.Run(Command(harness.Deps()), "", "-q", "230497")
	require.NoError(t, err)

	assert.Contains(t, out, "Chameleon\n===")
	assert.Contains(t, out, "Latest File: Chameleon-1.12-4.1.3.jar")
	assert.Equal(t, "show", harness.Events()[0].Command)
}

func TestShowByProjectURL(t *testing.T) {
	harness := cmdutiltest.New(t)

	out, err := harness.Run(Command(harness.Deps()), "", "-q", "https://minecraft.curseforge.com/projects/storage-drawers")
	require.NoError(t, err)
	assert.Contains(t, out, "Required: 1 (230497)")
}

func TestShowByName(t *testing.T) {
	harness := cmdutiltest.New(t)

	out, err := harness.Run(Command(harness.Deps()), "", "-q", "just", "enough")
	require.NoError(t, err)
	assert.Contains(t, out, "Just Enough Items (JEI)\n===")
}

func TestShowUnknownMod(t *testing.T) {
	harness := cmdutiltest.New(t)

	_, err := harness.Run(Command(harness.Deps()), "", "optifine")
	require.Error(t, err)
	assert.False(t, harness.Events()[0].Success)
}

func TestShowInvalidReference(t *testing.T) {
	harness := cmdutiltest.New(t)

	_, err := harness.Run(Command(harness.Deps()), "", "https://minecraft.curseforge.com/projects/")
	var invalid *catalog.InvalidReferenceError
	assert.ErrorAs(t, err, &invalid)
}
