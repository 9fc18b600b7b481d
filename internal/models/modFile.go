package models

import (
	"encoding/json"
	"slices"
)

type ModDependency struct {
	AddOnID uint32  `json:"AddOnId"`
	Type    ReqType `json:"Type"`
}

// ModFile is one downloadable artifact of a Mod. Two files are the same file
// when their IDs match; every other field is ignored for identity.
type ModFile struct {
	ID           uint32          `json:"Id"`
	DownloadURL  string          `json:"DownloadURL"`
	FileName     string          `json:"FileName"`
	GameVersions []string        `json:"GameVersion"`
	Dependencies []ModDependency `json:"Dependencies"`
}

func (f *ModFile) UnmarshalJSON(data []byte) error {
	type wire ModFile
	var decoded wire
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Dependencies == nil {
		decoded.Dependencies = []ModDependency{}
	}
	*f = ModFile(decoded)
	return nil
}

func (f ModFile) Same(other ModFile) bool {
	return f.ID == other.ID
}

func (f ModFile) SupportsGameVersion(version string) bool {
	return slices.Contains(f.GameVersions, version)
}

// DependenciesOf returns the dependencies of the given kind in declaration order.
func (f ModFile) DependenciesOf(kind ReqType) []ModDependency {
	out := make([]ModDependency, 0, len(f.Dependencies))
	for _, dependency := range f.Dependencies {
		if dependency.Type == kind {
			out = append(out, dependency)
		}
	}
	return out
}
