package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pbr-texgen/internal/pipeline"
)

// ManifestEntry represents one source in the output manifest. Paths are
// relative to the manifest's directory when possible.
type ManifestEntry struct {
	Source    string   `json:"source"`
	Success   bool     `json:"success"`
	Error     string   `json:"error,omitempty"`
	Height    string   `json:"height,omitempty"`
	Normal    string   `json:"normal,omitempty"`
	Roughness string   `json:"roughness,omitempty"`
	Packed    []string `json:"packed,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	ElapsedMS int64    `json:"elapsed_ms"`
}

// WriteManifest writes the results as indented JSON to path.
func WriteManifest(path string, results []pipeline.Result) error {
	base := filepath.Dir(path)
	rel := func(p string) string {
		if p == "" {
			return ""
		}
		if r, err := filepath.Rel(base, p); err == nil {
			return filepath.ToSlash(r)
		}
		return p
	}

	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		e := ManifestEntry{
			Source:    r.Source,
			Success:   r.Success,
			Error:     r.Error,
			Height:    rel(r.HeightPath),
			Normal:    rel(r.NormalPath),
			Roughness: rel(r.RoughnessPath),
			Warnings:  r.Warnings,
			ElapsedMS: r.Elapsed.Milliseconds(),
		}
		for _, p := range r.PackedPaths {
			e.Packed = append(e.Packed, rel(p))
		}
		entries[i] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write manifest %s: %w", path, err)
	}
	return nil
}
