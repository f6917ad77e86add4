package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/iksnae/eval-session/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	batchPath   string
	annotatorID string
	configPath  string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "eval-session",
	Short: "Rate assistant conversations and track goal completion",
	Long: `A CLI for human annotators evaluating multi-turn assistant conversations.

Each conversation is rated on four quality dimensions (0-2) plus per-goal
completion. Ratings are saved to a per-annotator workbook next to the batch,
and a later session resumes from it without losing progress.

Quick Start:
  eval-session list --batch logs/batch_1 --annotator alice
  eval-session show conv_001 --batch logs/batch_1 --annotator alice
  eval-session rate --conversation conv_001 --dimension plan_coherence --score 2 \
      --batch logs/batch_1 --annotator alice
  eval-session export --format md --batch logs/batch_1 --annotator alice

Batches are folders of conversation JSON records (a nested conversations/
subfolder is honored) or single-file SQLite batch archives.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&batchPath, "batch", "", "Batch location (folder of conversation JSON records, or a batch archive file)")
	rootCmd.PersistentFlags().StringVar(&annotatorID, "annotator", "", "Annotator id (use the same id consistently between sessions)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional YAML config with scoring weights and pacing settings")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadBatch loads the batch and derives every conversation's targets
func loadBatch() (*internal.ConversationStore, *internal.TargetRegistry, error) {
	if batchPath == "" {
		return nil, nil, fmt.Errorf("--batch is required")
	}
	store, err := internal.LoadStore(batchPath)
	if err != nil {
		return nil, nil, err
	}
	registry := internal.NewTargetRegistry()
	for _, conv := range store.Conversations() {
		if _, err := registry.Derive(conv); err != nil {
			return nil, nil, err
		}
	}
	return store, registry, nil
}

func requireAnnotator() error {
	if annotatorID == "" {
		return fmt.Errorf("--annotator is required")
	}
	return nil
}

func loadConfig() (*internal.Config, error) {
	return internal.LoadConfig(configPath)
}

// resumeOrFresh rehydrates the ledger from the saved workbook when one
// exists, or starts fresh when none does. Corrupt workbooks abort: saved
// work is at risk and silently starting over would destroy it on the next
// save.
func resumeOrFresh(store *internal.ConversationStore, registry *internal.TargetRegistry) (*internal.RatingLedger, error) {
	snapshot, err := internal.LoadWorkbook(batchPath, annotatorID)
	if errors.Is(err, internal.ErrSnapshotNotFound) {
		internal.LogDebug("No saved workbook for %s, starting fresh", annotatorID)
		return internal.NewRatingLedger(registry), nil
	}
	if err != nil {
		return nil, err
	}

	merger := internal.NewResumeMerger(store, registry)
	ledger, warnings, err := merger.Merge(snapshot, annotatorID)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		internal.PrintWarning(w.String())
	}
	internal.LogInfo("Resumed %d saved rating(s) from %s", len(snapshot.Rows), snapshot.Path)
	return ledger, nil
}
