package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/photo-culler/internal/constants"
	"github.com/kozaktomas/photo-culler/internal/media"
)

// CopiedFile records one exported photo.
type CopiedFile struct {
	Source      string
	Destination string
}

// CopySelected copies the selected photos of every group into dir. Groups
// without a selection are skipped. When two photos share a file name the
// later ones are renamed base_1.ext, base_2.ext and so on. Names are compared
// after Unicode NFC normalisation so visually identical names collide.
//
// A failed copy does not stop the export; all failures are returned joined.
func CopySelected(groups []*media.Group, dir string, logger *slog.Logger) ([]CopiedFile, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, constants.ExportDirPerm); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	namer := newUniqueNamer()
	var copied []CopiedFile
	var errs []error
	for _, g := range groups {
		for _, p := range g.Selected() {
			dest := filepath.Join(dir, namer.next(p.Name()))
			if err := copyFile(p.Path, dest); err != nil {
				logger.Warn("couldn't copy file", "file", p.Path, "error", err)
				errs = append(errs, fmt.Errorf("copy %s: %w", p.Path, err))
				continue
			}
			logger.Debug("copied file", "from", p.Path, "to", dest)
			copied = append(copied, CopiedFile{Source: p.Path, Destination: dest})
		}
	}
	return copied, errors.Join(errs...)
}

// uniqueNamer hands out file names that have not been used yet.
type uniqueNamer struct {
	counts map[string]int
	used   map[string]bool
}

func newUniqueNamer() *uniqueNamer {
	return &uniqueNamer{counts: make(map[string]int), used: make(map[string]bool)}
}

func (n *uniqueNamer) next(name string) string {
	key := norm.NFC.String(name)
	candidate := name
	if n.used[key] {
		base, ext := splitExt(name)
		for {
			n.counts[key]++
			candidate = fmt.Sprintf("%s_%d%s", base, n.counts[key], ext)
			if !n.used[norm.NFC.String(candidate)] {
				break
			}
		}
	}
	n.used[norm.NFC.String(candidate)] = true
	return candidate
}

// splitExt splits at the last dot. Names starting with their only dot have
// no extension.
func splitExt(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
