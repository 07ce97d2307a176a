package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-culler/internal/expression"
	"github.com/kozaktomas/photo-culler/internal/selection"
)

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Selection strategy commands",
	Long:  `Commands for validating selection strategies and listing the named aliases.`,
}

var strategyCheckCmd = &cobra.Command{
	Use:   "check [expression]",
	Short: "Validate a selection strategy",
	Long: `Parse a selection strategy and print how it is read, or point at the
first syntax error.

Examples:
  photo-culler strategy check "index == 0 || minDistanceToSelected > 30"
  photo-culler strategy check first_and_last`,
	Args: cobra.ExactArgs(1),
	RunE: runStrategyCheck,
}

var strategyAliasesCmd = &cobra.Command{
	Use:   "aliases",
	Short: "List the named strategies",
	RunE:  runStrategyAliases,
}

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyCheckCmd)
	strategyCmd.AddCommand(strategyAliasesCmd)

	strategyAliasesCmd.Flags().Bool("json", false, "Output as JSON")
}

func newSelector() (*selection.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return selection.NewManager(cfg.Selection.Aliases, slog.Default()), nil
}

func runStrategyCheck(cmd *cobra.Command, args []string) error {
	selector, err := newSelector()
	if err != nil {
		return err
	}
	return checkStrategy(os.Stdout, selector, args[0])
}

// checkStrategy prints the parsed form of strategy, or the source with a
// caret under the error position.
func checkStrategy(w io.Writer, selector *selection.Manager, strategy string) error {
	source := selector.Resolve(strategy)
	if selector.IsAlias(strategy) {
		fmt.Fprintf(w, "Alias:      %s\n", strings.ToLower(strategy))
	}
	fmt.Fprintf(w, "Expression: %s\n", source)

	node, err := expression.Parse(source)
	if err != nil {
		var syntaxErr *expression.SyntaxError
		if errors.As(err, &syntaxErr) {
			fmt.Fprintf(w, "  %s\n  %s^\n", source, strings.Repeat(" ", syntaxErr.Pos))
		}
		return fmt.Errorf("invalid strategy: %w", err)
	}
	fmt.Fprintf(w, "Parsed:     %s\n", node)
	return nil
}

func runStrategyAliases(cmd *cobra.Command, args []string) error {
	selector, err := newSelector()
	if err != nil {
		return err
	}
	aliases := selector.Aliases()
	if mustGetBool(cmd, "json") {
		return outputJSON(aliases)
	}

	width := 0
	for _, a := range aliases {
		width = max(width, len(a.Name))
	}
	for _, a := range aliases {
		fmt.Printf("  %-*s  %s\n", width, a.Name, a.Expression)
	}
	return nil
}
