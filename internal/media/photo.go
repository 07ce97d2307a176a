// Package media holds the photo and burst group model shared by hashing,
// grouping, selection and export.
package media

import (
	"path/filepath"
)

// Photo is a single image file. Its identity is the absolute path.
type Photo struct {
	Path      string
	Timestamp int64  // capture time, milliseconds since epoch
	Hash      string // channelled average hash, empty when HashErr is set
	HashErr   error

	// Index is the zero-based position inside the owning group.
	Index int

	deltaTime  float64
	similarity float64
	hasMetrics bool
	group      *Group
}

// NewPhoto creates a photo with a computed hash.
func NewPhoto(path string, timestamp int64, hash string) *Photo {
	return &Photo{Path: path, Timestamp: timestamp, Hash: hash}
}

// NewFailedPhoto creates a photo whose hash could not be computed.
func NewFailedPhoto(path string, timestamp int64, err error) *Photo {
	return &Photo{Path: path, Timestamp: timestamp, HashErr: err}
}

// Name returns the file name without directories.
func (p *Photo) Name() string {
	return filepath.Base(p.Path)
}

// HasHash reports whether the photo can take part in Hamming distance comparisons.
func (p *Photo) HasHash() bool {
	return p.HashErr == nil && p.Hash != ""
}

// SetMetrics records the time delta in seconds and the distance in percent to
// the previous photo in sort order.
func (p *Photo) SetMetrics(deltaTimeSeconds, similarityPercent float64) {
	p.deltaTime = deltaTimeSeconds
	p.similarity = similarityPercent
	p.hasMetrics = true
}

// Metrics returns the values set by SetMetrics. ok is false for the first
// photo of a batch.
func (p *Photo) Metrics() (deltaTimeSeconds, similarityPercent float64, ok bool) {
	return p.deltaTime, p.similarity, p.hasMetrics
}

// Group returns the owning group, or nil before grouping.
func (p *Photo) Group() *Group {
	return p.group
}

// IsSelected reports whether the owning group has this photo selected.
func (p *Photo) IsSelected() bool {
	return p.group != nil && p.group.IsSelected(p)
}
