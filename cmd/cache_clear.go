package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every hash from the cache",
	Long: `Remove every cached hash. The next run recomputes all hashes.

Example:
  photo-culler cache clear --yes`,
	Args: cobra.NoArgs,
	RunE: runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
}

func confirmAction(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, store, err := openCacheStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if !mustGetBool(cmd, "yes") && !confirmAction(fmt.Sprintf("Clear the hash cache in %s? [y/N] ", cacheLocation(cfg.Cache))) {
		fmt.Println("Aborted")
		return nil
	}

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing hash cache: %w", err)
	}
	fmt.Println("Hash cache cleared")
	return nil
}
