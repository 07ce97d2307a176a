// Package grouping splits a batch of hashed photos into burst groups.
package grouping

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/kozaktomas/photo-culler/internal/constants"
	"github.com/kozaktomas/photo-culler/internal/fingerprint"
	"github.com/kozaktomas/photo-culler/internal/media"
)

// Engine groups photos by capture time and hash distance.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a grouping engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// SortPhotos orders photos by timestamp, then by file name.
func SortPhotos(photos []*media.Photo) {
	slices.SortStableFunc(photos, func(a, b *media.Photo) int {
		return cmp.Or(
			cmp.Compare(a.Timestamp, b.Timestamp),
			cmp.Compare(a.Name(), b.Name()),
		)
	})
}

// GroupPhotos sorts a copy of photos and scans it once. A photo joins the
// current group when it is at most timeThreshold seconds after the previous
// photo and at most similarityThreshold percent of its hash bits differ.
// Both bounds are inclusive. Every photo after the first gets its metrics
// recorded whether it joins or not.
//
// A photo without a hash always forms a group of its own and is given the
// maximum distance as its similarity metric.
func (e *Engine) GroupPhotos(photos []*media.Photo, timeThreshold, similarityThreshold float64) []*media.Group {
	sorted := slices.Clone(photos)
	SortPhotos(sorted)

	var groups []*media.Group
	var current *media.Group

	closeCurrent := func() {
		if current != nil && current.Size() > 0 {
			current.Index = len(groups)
			groups = append(groups, current)
		}
		current = media.NewGroup()
	}

	var last *media.Photo
	for _, p := range sorted {
		if last == nil {
			closeCurrent()
			p.Index = 0
			current.Add(p)
			last = p
			continue
		}

		deltaTime := math.Abs(float64(p.Timestamp-last.Timestamp)) / 1000
		similarity, comparable := e.distance(last, p)
		p.SetMetrics(deltaTime, similarity)

		if comparable && deltaTime <= timeThreshold && similarity <= similarityThreshold {
			p.Index = last.Index + 1
		} else {
			closeCurrent()
			p.Index = 0
		}
		current.Add(p)
		last = p
	}
	closeCurrent()

	e.logger.Debug("grouped photos", "photos", len(sorted), "groups", len(groups))
	return groups
}

// distance returns the hash distance in percent between two neighbours.
// comparable is false when either photo lacks a usable hash.
func (e *Engine) distance(prev, next *media.Photo) (float64, bool) {
	if !prev.HasHash() || !next.HasHash() {
		return constants.MaxDistancePercent, false
	}
	pct, err := fingerprint.DistancePercent(prev.Hash, next.Hash)
	if err != nil {
		e.logger.Warn("cannot compare hashes", "previous", prev.Name(), "photo", next.Name(), "error", err)
		return constants.MaxDistancePercent, false
	}
	return pct, true
}
