package hashing

import (
	"github.com/schollz/progressbar/v3"
)

// NewProgressBar creates a progress bar for hash computation, or nil if disabled.
func NewProgressBar(count int, enabled bool) *progressbar.ProgressBar {
	if !enabled {
		return nil
	}
	return progressbar.NewOptions(count,
		progressbar.OptionSetDescription("Computing hashes"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}
