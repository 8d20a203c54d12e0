package texture

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GeneratedSuffixes mark files written by the pipeline; Index skips them so
// rerunning over an output directory does not feed maps back in as albedo.
var GeneratedSuffixes = []string{"_height", "_normal", "_roughness"}

// Index maps lowercase albedo stems to filesystem paths.
// Lossless sources take priority over JPEG for the same stem.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

// BuildIndex scans dir for albedo files. With recursive set it descends
// into subdirectories; stems are matched without regard to directory.
func BuildIndex(dir string, recursive bool) (*Index, error) {
	idx := &Index{entries: make(map[string]string)}

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !Supported(path) {
			return nil
		}
		stem := Stem(path)
		if isGenerated(stem) {
			return nil
		}

		existing, exists := idx.entries[stem]
		if !exists || (isLossy(existing) && !isLossy(path)) {
			idx.entries[stem] = path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Stem returns the lowercase file name without extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

func isGenerated(stem string) bool {
	for _, s := range GeneratedSuffixes {
		if strings.HasSuffix(stem, s) {
			return true
		}
	}
	return false
}

func isLossy(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jpg" || ext == ".jpeg"
}

// Paths returns every indexed file in stem order.
func (idx *Index) Paths() []string {
	stems := make([]string, 0, len(idx.entries))
	for s := range idx.entries {
		stems = append(stems, s)
	}
	sort.Strings(stems)

	out := make([]string, len(stems))
	for i, s := range stems {
		out[i] = idx.entries[s]
	}
	return out
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
