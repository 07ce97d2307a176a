package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-culler/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Cull a folder and serve the result for review",
	Long: `Run the culling pipeline once over --input and start the review API.

The API lists the groups, toggles single photos and reapplies selection
strategies to every group. Selections live in memory; export them with
GET /api/v1/groups.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addRunFlags(serveCmd)
	serveCmd.Flags().Int("port", 0, "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := runOptions(cmd, cfg)
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = mustGetInt(cmd, "port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = mustGetString(cmd, "host")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, selector, store, err := openRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := runner.Run(ctx, opts)
	if err != nil {
		return err
	}
	if result.StrategyErr != nil {
		slog.Warn("strategy rejected, first photo of each group selected", "error", result.StrategyErr)
	}

	server := web.NewServer(cfg.Server, result, selector, slog.Default())

	go func() {
		<-ctx.Done()
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Reviewing %d groups of %d photos on http://%s:%d\n", len(result.Groups), result.Photos, cfg.Server.Host, cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
