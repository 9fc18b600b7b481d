package cmdutil

import (
	"fmt"

	"github.com/meza/minepkg/internal/models"
	"github.com/meza/minepkg/internal/tui"
)

const maxNameLength = 40

// ShortenName cuts names longer than the table column.
func ShortenName(name string) string {
	runes := []rune(name)
	if len(runes) < maxNameLength {
		return name
	}
	return string(runes[:maxNameLength-2]) + "…"
}

// CompactCount renders large counts as 12 K, 3 M or 1 B.
func CompactCount(count uint32) string {
	switch {
	case count >= 1_000_000_000:
		return fmt.Sprintf("%d B", count/1_000_000_000)
	case count >= 1_000_000:
		return fmt.Sprintf("%d M", count/1_000_000)
	case count >= 1000:
		return fmt.Sprintf("%d K", count/1000)
	default:
		return fmt.Sprintf("%d", count)
	}
}

func ModTable(mods []models.Mod, colorize bool) string {
	rows := make([][]string, 0, len(mods))
	for _, mod := range mods {
		rows = append(rows, []string{ShortenName(mod.Name), CompactCount(mod.DownloadCount), fmt.Sprintf("%d", mod.ID)})
	}
	return tui.Table([]string{"Name", "Downloads", "Id"}, rows, colorize)
}
