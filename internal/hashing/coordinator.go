// Package hashing fans a batch of image files out to a bounded worker pool
// and turns each one into a hashed media.Photo.
package hashing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/kozaktomas/photo-culler/internal/fingerprint"
	"github.com/kozaktomas/photo-culler/internal/hashcache"
	"github.com/kozaktomas/photo-culler/internal/media"
)

var (
	// ErrBatchTimeout is returned when the pool does not finish within the batch timeout.
	ErrBatchTimeout = errors.New("hashing batch timed out")
	// ErrHashCompute marks a photo whose hash could not be computed.
	ErrHashCompute = errors.New("hash computation failed")
)

// DefaultTimeout bounds a whole batch when Options.Timeout is zero.
const DefaultTimeout = 60 * time.Minute

// TimestampFunc returns the capture time of a file in milliseconds since epoch.
type TimestampFunc func(path string) int64

// Options tune a Coordinator.
type Options struct {
	Workers        int
	Timeout        time.Duration
	HashingEnabled bool
	// Bar is advanced once per file when set.
	Bar *progressbar.ProgressBar
}

// Coordinator hashes files through the cache on a bounded pool.
type Coordinator struct {
	cache     *hashcache.Cache
	hasher    hashcache.Hasher
	timestamp TimestampFunc
	opts      Options
	logger    *slog.Logger
}

// NewCoordinator creates a coordinator. A nil timestamp func uses ExtractTimestamp.
func NewCoordinator(cache *hashcache.Cache, hasher hashcache.Hasher, timestamp TimestampFunc, opts Options, logger *slog.Logger) *Coordinator {
	if timestamp == nil {
		timestamp = ExtractTimestamp
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		cache:     cache,
		hasher:    hasher,
		timestamp: timestamp,
		opts:      opts,
		logger:    logger,
	}
}

// WorkerCount sizes the pool to a fraction of the CPUs while leaving one core
// free. The result is never below 1.
func WorkerCount(numCPU int, maxUsage float64) int {
	return max(1, min(int(float64(numCPU)*maxUsage), numCPU-1))
}

// HashAll hashes every file and returns one photo per file in no particular
// order. A file that fails to hash is returned as a failed photo and does not
// stop the batch. Exceeding the timeout or cancelling ctx fails the whole batch.
func (c *Coordinator) HashAll(ctx context.Context, files []string) ([]*media.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		photos = make([]*media.Photo, 0, len(files))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	done := make(chan error, 1)
	go func() {
		for _, path := range files {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				photo := c.hashOne(path)

				mu.Lock()
				photos = append(photos, photo)
				mu.Unlock()

				if c.opts.Bar != nil {
					c.opts.Bar.Add(1)
				}
				return nil
			})
		}
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, batchError(err)
		}
		mu.Lock()
		complete := len(photos) == len(files)
		mu.Unlock()
		if !complete {
			// submission stopped early
			return nil, batchError(ctx.Err())
		}
	case <-ctx.Done():
		return nil, batchError(ctx.Err())
	}

	mu.Lock()
	defer mu.Unlock()
	c.logger.Debug("hashing batch finished", "files", len(files), "workers", c.opts.Workers)
	return photos, nil
}

func batchError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrBatchTimeout, err)
	}
	return fmt.Errorf("hashing batch interrupted: %w", err)
}

func (c *Coordinator) hashOne(path string) *media.Photo {
	timestamp := c.timestamp(path)

	if !c.opts.HashingEnabled {
		return media.NewPhoto(path, timestamp, fingerprint.Zero(c.hasher.Length()))
	}

	hash, err := c.cache.ComputeOrReuse(path, c.hasher)
	if err != nil {
		c.logger.Warn("failed to hash photo", "file", path, "error", err)
		return media.NewFailedPhoto(path, timestamp, fmt.Errorf("%w: %w", ErrHashCompute, err))
	}
	return media.NewPhoto(path, timestamp, hash)
}
