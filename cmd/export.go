package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/eval-session/internal"
	"github.com/iksnae/eval-session/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
	exportStdout bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the annotator's ratings report",
	Long: `Export a ratings report for the batch in jsonl, md, yaml, or json format.

The report covers the conversations the annotator has rated, with dimension
scores, target statuses, and the computed overall score per conversation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAnnotator(); err != nil {
			return err
		}
		store, registry, err := loadBatch()
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ledger, err := resumeOrFresh(store, registry)
		if err != nil {
			return err
		}

		report := internal.BuildReport(ledger, annotatorID, store, cfg)
		if len(report.Rows) == 0 {
			return fmt.Errorf("nothing to export: %s has not rated any conversation in this batch", annotatorID)
		}

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		if exportStdout {
			return exporter.Export(report, os.Stdout)
		}

		outDir := exportOutput
		if outDir == "" {
			outDir = "."
		}
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path := filepath.Join(outDir, fmt.Sprintf("ratings_%s.%s", annotatorID, exporter.Extension()))

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()

		if err := exporter.Export(report, f); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		internal.PrintSuccess(fmt.Sprintf("Exported %d rating(s) to %s", len(report.Rows), path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: jsonl, md, yaml, json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output directory (default current directory)")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write to stdout instead of a file")
}
