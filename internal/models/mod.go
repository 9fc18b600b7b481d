package models

import (
	"encoding/json"
	"math"
	"strings"
)

type GameVersionRelease struct {
	GameVersion string      `json:"GameVesion"`
	FileID      uint32      `json:"ProjectFileID"`
	FileType    ReleaseType `json:"FileType"`
}

// Mod is a single catalog entry.
type Mod struct {
	ID                     uint32               `json:"Id"`
	Name                   string               `json:"Name"`
	WebSiteURL             string               `json:"WebSiteURL"`
	DownloadCount          uint32               `json:"DownloadCount"`
	LatestFiles            []ModFile            `json:"LatestFiles"`
	GameVersionLatestFiles []GameVersionRelease `json:"GameVersionLatestFiles"`
}

// UnmarshalJSON truncates the fractional download count the feed publishes.
func (m *Mod) UnmarshalJSON(data []byte) error {
	type wire Mod
	var decoded struct {
		wire
		DownloadCount float64 `json:"DownloadCount"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*m = Mod(decoded.wire)
	m.DownloadCount = truncateCount(decoded.DownloadCount)
	return nil
}

func truncateCount(value float64) uint32 {
	switch {
	case math.IsNaN(value) || value <= 0:
		return 0
	case value >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(value)
	}
}

// ReleaseForGameVersion returns the latest release published for the exact game version.
func (m Mod) ReleaseForGameVersion(version string) (GameVersionRelease, bool) {
	for _, release := range m.GameVersionLatestFiles {
		if release.GameVersion == version {
			return release, true
		}
	}
	return GameVersionRelease{}, false
}

// LatestFileFor searches the latest uploads for one that supports version. The
// list is not ordered, so a miss here does not mean the mod lacks support.
func (m Mod) LatestFileFor(version string) (ModFile, bool) {
	for _, file := range m.LatestFiles {
		if file.SupportsGameVersion(version) {
			return file, true
		}
	}
	return ModFile{}, false
}

func (m Mod) LatestFile(fileID uint32) (ModFile, bool) {
	for _, file := range m.LatestFiles {
		if file.ID == fileID {
			return file, true
		}
	}
	return ModFile{}, false
}

// Slug is the last path segment of the project page.
func (m Mod) Slug() string {
	trimmed := strings.TrimRight(m.WebSiteURL, "/")
	if index := strings.LastIndex(trimmed, "/"); index >= 0 {
		return trimmed[index+1:]
	}
	return trimmed
}

// ModDB is the full catalog as published by the remote feed.
type ModDB struct {
	Mods []Mod `json:"data"`
}
