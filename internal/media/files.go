package media

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kozaktomas/photo-culler/internal/constants"
)

// IsImageFile reports whether the name has a supported image extension.
func IsImageFile(name string) bool {
	return slices.Contains(constants.SupportedExtensions, strings.ToLower(filepath.Ext(name)))
}

// ListImageFiles returns the absolute paths of the image files directly inside
// dir, sorted by path. Subdirectories are not descended into.
func ListImageFiles(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", abs, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsImageFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(abs, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}
