package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-culler/internal/config"
	"github.com/kozaktomas/photo-culler/internal/constants"
	"github.com/kozaktomas/photo-culler/internal/export"
	"github.com/kozaktomas/photo-culler/internal/hashcache"
	"github.com/kozaktomas/photo-culler/internal/pipeline"
	"github.com/kozaktomas/photo-culler/internal/selection"
)

var cullCmd = &cobra.Command{
	Use:   "cull",
	Short: "Group burst photos and pick the best takes",
	Long: `Scan a folder, group photos that were taken close together and look alike,
and select the best takes of every group with a selection strategy.

Examples:
  # Preview the first photo of every burst
  photo-culler cull --input ./shoot --preview

  # Keep the first and last shot of each burst and copy them to ./best
  photo-culler cull --input ./shoot --strategy first_and_last --output ./best

  # Keep shots that differ from what is already selected, write a report
  photo-culler cull --input ./shoot --strategy "index == 0 || minDistanceToSelected > 30" --json groups.json`,
	RunE: runCull,
}

func init() {
	rootCmd.AddCommand(cullCmd)

	addRunFlags(cullCmd)
	cullCmd.Flags().String("output", "", "Directory to copy the selected photos into")
	cullCmd.Flags().String("json", "", fmt.Sprintf("Write the JSON report to this file, e.g. %s (- for stdout)", constants.DefaultJSONReport))
	cullCmd.Flags().Bool("preview", false, "Print the selection without copying anything")
	cullCmd.Flags().Bool("no-progress", false, "Hide the hashing progress bar")
}

// addRunFlags registers the flags shared by every command that runs a batch.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("input", "", "Folder with the photos to cull (required)")
	cmd.Flags().Float64("time", 0, "Time threshold in seconds (default from config)")
	cmd.Flags().Float64("similarity", 0, "Similarity threshold in percent (default from config)")
	cmd.Flags().String("strategy", "", "Selection strategy expression or alias (default from config)")
	cmd.Flags().Duration("timeout", 0, "Hashing timeout for the whole batch (default from config)")
	_ = cmd.MarkFlagRequired("input")
}

// runOptions merges the run flags over the configuration.
func runOptions(cmd *cobra.Command, cfg *config.Config) pipeline.Options {
	opts := pipeline.Options{
		InputDir:            mustGetString(cmd, "input"),
		TimeThreshold:       cfg.Grouping.TimeThresholdSeconds,
		SimilarityThreshold: cfg.Grouping.SimilarityThresholdPercent,
		Strategy:            mustGetString(cmd, "strategy"),
	}
	if cmd.Flags().Changed("time") {
		opts.TimeThreshold = mustGetFloat64(cmd, "time")
	}
	if cmd.Flags().Changed("similarity") {
		opts.SimilarityThreshold = mustGetFloat64(cmd, "similarity")
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Hashing.Timeout = mustGetDuration(cmd, "timeout")
	}
	return opts
}

// openRunner opens the cache store and wires a runner around it. The returned
// store must be closed by the caller.
func openRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, *selection.Manager, hashcache.Store, error) {
	store, err := hashcache.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening hash cache: %w", err)
	}
	selector := selection.NewManager(cfg.Selection.Aliases, slog.Default())
	return pipeline.NewRunner(cfg, store, selector, slog.Default()), selector, store, nil
}

func runCull(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := runOptions(cmd, cfg)
	outputDir := mustGetString(cmd, "output")
	jsonPath := mustGetString(cmd, "json")
	preview := mustGetBool(cmd, "preview")

	// stdout carries the report in this mode
	quiet := jsonPath == "-"
	opts.ShowProgress = !mustGetBool(cmd, "no-progress") && !quiet

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, _, store, err := openRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := runner.Run(ctx, opts)
	if err != nil {
		return err
	}

	if !quiet {
		printRunSummary(result)
	}

	switch {
	case preview:
		if !quiet {
			fmt.Println()
			export.PrintPreview(os.Stdout, result.Groups)
		}
	case outputDir != "":
		copied, copyErr := export.CopySelected(result.Groups, outputDir, slog.Default())
		if !quiet {
			fmt.Printf("Copied %d photos to %s\n", len(copied), outputDir)
		}
		if copyErr != nil {
			return fmt.Errorf("copying selected photos: %w", copyErr)
		}
	}

	if jsonPath != "" {
		report := result.Report(time.Now())
		if quiet {
			return outputJSON(report)
		}
		if err := export.WriteJSONFile(jsonPath, report); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", jsonPath)
	}
	return nil
}

func printRunSummary(result *pipeline.Result) {
	selected := 0
	for _, g := range result.Groups {
		selected += len(g.Selected())
	}

	fmt.Println("Culling complete!")
	fmt.Printf("  Photos:      %d\n", result.Photos)
	fmt.Printf("  Groups:      %d\n", len(result.Groups))
	fmt.Printf("  Selected:    %d\n", selected)
	fmt.Printf("  Strategy:    %s\n", result.Strategy)
	fmt.Printf("  Cache hits:  %d\n", result.CacheStats.Hits)
	if result.Failed > 0 {
		fmt.Printf("  Hash errors: %d\n", result.Failed)
	}
	fmt.Printf("  Duration:    %s\n", result.Duration.Round(time.Millisecond))
	if result.StrategyErr != nil {
		fmt.Printf("Warning: %v; the first photo of each group was selected\n", result.StrategyErr)
	}
}

// outputJSON writes data as indented JSON to stdout.
func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
