// Package pipeline runs one culling batch: discover files, hash them through
// the cache, group bursts and select the best takes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/photo-culler/internal/config"
	"github.com/kozaktomas/photo-culler/internal/export"
	"github.com/kozaktomas/photo-culler/internal/fingerprint"
	"github.com/kozaktomas/photo-culler/internal/grouping"
	"github.com/kozaktomas/photo-culler/internal/hashcache"
	"github.com/kozaktomas/photo-culler/internal/hashing"
	"github.com/kozaktomas/photo-culler/internal/media"
	"github.com/kozaktomas/photo-culler/internal/selection"
)

// ErrNoPhotos is returned when the input folder has no supported images.
var ErrNoPhotos = errors.New("no image files found")

// Options are the per-run settings, usually taken from flags.
type Options struct {
	InputDir            string
	TimeThreshold       float64
	SimilarityThreshold float64
	Strategy            string
	ShowProgress        bool
	// TimestampFunc overrides EXIF/mtime timestamp extraction.
	TimestampFunc hashing.TimestampFunc
}

// Result is the outcome of a run.
type Result struct {
	RunID      string
	Groups     []*media.Group
	Photos     int
	Failed     int
	Thresholds export.Thresholds
	Strategy   string
	// StrategyErr is set when the strategy did not compile and every group
	// fell back to its first photo.
	StrategyErr error
	CacheStats  hashcache.Stats
	Duration    time.Duration
}

// Report builds the export report for the result.
func (r *Result) Report(now time.Time) export.Report {
	return export.BuildReport(r.Groups, r.Thresholds, r.RunID, now)
}

// Runner executes batches with a fixed configuration.
type Runner struct {
	cfg      *config.Config
	store    hashcache.Store
	selector *selection.Manager
	grouper  *grouping.Engine
	logger   *slog.Logger
}

// NewRunner creates a runner. store persists the hash cache between runs.
func NewRunner(cfg *config.Config, store hashcache.Store, selector *selection.Manager, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:      cfg,
		store:    store,
		selector: selector,
		grouper:  grouping.NewEngine(logger),
		logger:   logger,
	}
}

// Run processes every image in opts.InputDir. Photos that cannot be hashed
// stay in the result as groups of their own. Only listing failures, cache
// load failures and hashing timeouts fail the run.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	if err := config.ValidateThresholds(opts.TimeThreshold, opts.SimilarityThreshold); err != nil {
		return nil, err
	}
	if opts.Strategy == "" {
		opts.Strategy = r.cfg.Selection.DefaultStrategy
	}

	files, err := media.ListImageFiles(opts.InputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPhotos, opts.InputDir)
	}
	r.logger.Info("found photos", "count", len(files), "dir", opts.InputDir)

	cache, err := hashcache.Load(ctx, r.store, r.logger)
	if err != nil {
		return nil, err
	}

	hasher := fingerprint.NewHasher(r.cfg.Hashing.Width, r.cfg.Hashing.Height)
	workers := hashing.WorkerCount(runtime.NumCPU(), r.cfg.Hashing.MaxCPUUsage)
	coordinator := hashing.NewCoordinator(cache, hasher, opts.TimestampFunc, hashing.Options{
		Workers:        workers,
		Timeout:        r.cfg.Hashing.Timeout,
		HashingEnabled: r.cfg.Hashing.Enabled,
		Bar:            hashing.NewProgressBar(len(files), opts.ShowProgress),
	}, r.logger)

	photos, err := coordinator.HashAll(ctx, files)
	if err != nil {
		return nil, err
	}

	if err := cache.Save(ctx, r.store); err != nil {
		// Results are still valid, only the next run gets slower
		r.logger.Warn("failed to save hash cache", "error", err)
	}

	failed := 0
	for _, p := range photos {
		if p.HashErr != nil {
			failed++
		}
	}

	groups := r.grouper.GroupPhotos(photos, opts.TimeThreshold, opts.SimilarityThreshold)
	strategyErr := r.selector.Apply(opts.Strategy, groups)

	result := &Result{
		RunID:  uuid.NewString(),
		Groups: groups,
		Photos: len(photos),
		Failed: failed,
		Thresholds: export.Thresholds{
			TimeThresholdSeconds:       opts.TimeThreshold,
			SimilarityThresholdPercent: opts.SimilarityThreshold,
		},
		Strategy:    opts.Strategy,
		StrategyErr: strategyErr,
		CacheStats:  cache.Stats(),
		Duration:    time.Since(start),
	}
	r.logger.Info("culling finished",
		"run_id", result.RunID,
		"photos", result.Photos,
		"groups", len(groups),
		"failed", failed,
		"cache_hits", result.CacheStats.Hits,
		"duration", result.Duration.Round(time.Millisecond),
	)
	return result, nil
}
