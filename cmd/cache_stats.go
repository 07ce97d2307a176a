package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-culler/internal/hashcache"
)

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show hash cache statistics",
	Long: `Show how many hashes the cache holds and how many of them match the
configured hash size. Entries of another size are recomputed on the next run.`,
	Args: cobra.NoArgs,
	RunE: runCacheStats,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)

	cacheStatsCmd.Flags().Bool("json", false, "Output as JSON")
}

// CacheStatsResult represents the cache statistics
type CacheStatsResult struct {
	Backend    string `json:"backend"`
	Entries    int    `json:"entries"`
	Valid      int    `json:"valid"`
	HashLength int    `json:"hash_length"`
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	ctx := context.Background()

	cfg, store, err := openCacheStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading hash cache: %w", err)
	}

	hashLength := cfg.Hashing.HashLength()
	result := CacheStatsResult{
		Backend:    cfg.Cache.Backend,
		Entries:    len(entries),
		Valid:      hashcache.CountValid(entries, hashLength),
		HashLength: hashLength,
	}
	if jsonOutput {
		return outputJSON(result)
	}

	fmt.Printf("Cache:        %s\n", cacheLocation(cfg.Cache))
	fmt.Printf("  Entries:    %d\n", result.Entries)
	fmt.Printf("  Valid:      %d (hash length %d)\n", result.Valid, result.HashLength)
	if stale := result.Entries - result.Valid; stale > 0 {
		fmt.Printf("  Stale:      %d\n", stale)
	}
	return nil
}
