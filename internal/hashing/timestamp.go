package hashing

import (
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

// ExtractTimestamp returns the EXIF capture time of a file in milliseconds
// since epoch. Files without usable EXIF data fall back to their modification
// time, and unreadable files to 0.
func ExtractTimestamp(path string) int64 {
	if ts, ok := exifTimestamp(path); ok {
		return ts
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixMilli()
}

// exifTimestamp reads DateTimeOriginal, or DateTime when the former is missing.
func exifTimestamp(path string) (int64, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return 0, false
	}
	dt, err := x.DateTime()
	if err != nil || dt.IsZero() {
		return 0, false
	}
	return dt.UnixMilli(), true
}
