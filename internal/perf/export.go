package perf

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/afero"
)

const defaultExportFilename = "minepkg-perf.json"

// Export is the document written by ExportToFile.
type Export struct {
	Dropped int            `json:"dropped"`
	Spans   []SpanSnapshot `json:"spans"`
}

// ExportToFile writes the recorded spans as JSON to <outDir>/minepkg-perf.json.
// It is a diagnostic artifact; callers treat a returned error as non-fatal.
func ExportToFile(fs afero.Fs, outDir string) (string, error) {
	if outDir == "" {
		outDir = "."
	}

	spans, err := GetSpans()
	if err != nil {
		return "", err
	}

	if err := fs.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(Export{Dropped: Dropped(), Spans: spans}, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(outDir, defaultExportFilename)
	return path, afero.WriteFile(fs, path, data, 0644)
}
