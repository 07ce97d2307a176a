package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-culler/internal/config"
	"github.com/kozaktomas/photo-culler/internal/hashcache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Hash cache management commands",
	Long: `Commands for inspecting and clearing the perceptual hash cache.

The backend is chosen by cache.backend in the config file (json, sqlite or
postgres).`,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}

// openCacheStore loads the config and opens the configured cache store.
func openCacheStore(ctx context.Context) (*config.Config, hashcache.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := hashcache.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("opening hash cache: %w", err)
	}
	return cfg, store, nil
}

// cacheLocation describes where the configured store keeps its data.
func cacheLocation(cfg config.CacheConfig) string {
	if strings.EqualFold(cfg.Backend, "postgres") {
		return "postgres"
	}
	return cfg.Backend + " (" + cfg.Path + ")"
}
