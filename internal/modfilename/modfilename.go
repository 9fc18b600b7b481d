// Package modfilename validates artifact file names before they are joined
// onto the mods directory.
package modfilename

import "strings"

// ArchiveExtension is the extension every installed mod carries.
const ArchiveExtension = ".jar"

type ErrorReason string

const (
	ReasonEmpty       ErrorReason = "empty"
	ReasonDriveLetter ErrorReason = "drive_letter"
	ReasonUNCPath     ErrorReason = "unc_path"
	ReasonSeparator   ErrorReason = "path_separator"
	ReasonTraversal   ErrorReason = "traversal"
)

type Error struct {
	Value  string
	Reason ErrorReason
}

func (err Error) Error() string {
	if err.Value == "" {
		return "invalid mod filename: " + string(err.Reason)
	}
	return "invalid mod filename " + err.Value + ": " + string(err.Reason)
}

// EnsureArchiveExtension validates a bare file name and appends ".jar" when the
// name does not already end with it. Matching is case-insensitive, so
// "Mod.JAR" is kept as is.
func EnsureArchiveExtension(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", Error{Value: trimmed, Reason: ReasonEmpty}
	}
	if hasUNCPath(trimmed) {
		return "", Error{Value: trimmed, Reason: ReasonUNCPath}
	}
	if hasDriveLetter(trimmed) {
		return "", Error{Value: trimmed, Reason: ReasonDriveLetter}
	}
	if strings.ContainsAny(trimmed, `/\`) {
		return "", Error{Value: trimmed, Reason: ReasonSeparator}
	}
	if trimmed == "." || trimmed == ".." {
		return "", Error{Value: trimmed, Reason: ReasonTraversal}
	}
	if strings.HasSuffix(strings.ToLower(trimmed), ArchiveExtension) {
		return trimmed, nil
	}
	return trimmed + ArchiveExtension, nil
}

func Display(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "(empty)"
	}
	return trimmed
}

func hasUNCPath(value string) bool {
	return strings.HasPrefix(value, `\\`) || strings.HasPrefix(value, "//")
}

func hasDriveLetter(value string) bool {
	if len(value) < 2 {
		return false
	}
	return isASCIIAlpha(value[0]) && value[1] == ':'
}

func isASCIIAlpha(value byte) bool {
	return (value >= 'a' && value <= 'z') || (value >= 'A' && value <= 'Z')
}
