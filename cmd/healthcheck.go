package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/eval-session/internal"
	"github.com/spf13/cobra"
)

var (
	healthSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Bold(true)

	healthWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	healthErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	healthInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that a batch and any saved workbook are usable",
	Long: `Check the health of a rating session by verifying:
  - the batch location resolves and its records parse
  - targets derive without refinement cycles
  - the annotator's saved workbook, if present, parses cleanly

Run this before handing a batch to annotators.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("Eval Session Health Check"))
		fmt.Println()

		fmt.Println(healthInfoStyle.Render("Step 1: Loading batch..."))
		if batchPath == "" {
			fmt.Println(healthErrorStyle.Render("FAIL --batch is required"))
			os.Exit(1)
		}
		store, err := internal.LoadStore(batchPath)
		if err != nil {
			fmt.Println(healthErrorStyle.Render("FAIL batch did not load:"), err)
			os.Exit(1)
		}
		fmt.Println(healthSuccessStyle.Render(fmt.Sprintf("OK   %d conversation(s) loaded", store.Len())))
		fmt.Println()

		fmt.Println(healthInfoStyle.Render("Step 2: Deriving targets..."))
		registry := internal.NewTargetRegistry()
		targets := 0
		for _, conv := range store.Conversations() {
			ts, err := registry.Derive(conv)
			if err != nil {
				fmt.Println(healthErrorStyle.Render("FAIL target derivation:"), err)
				os.Exit(1)
			}
			targets += len(ts.Targets)
		}
		fmt.Println(healthSuccessStyle.Render(fmt.Sprintf("OK   %d target(s) derived, refinement graphs acyclic", targets)))
		fmt.Println()

		fmt.Println(healthInfoStyle.Render("Step 3: Checking saved workbook..."))
		if annotatorID == "" {
			fmt.Println(healthWarnStyle.Render("SKIP no --annotator given"))
			return nil
		}
		snapshot, err := internal.LoadWorkbook(batchPath, annotatorID)
		switch {
		case errors.Is(err, internal.ErrSnapshotNotFound):
			fmt.Println(healthWarnStyle.Render("NONE no workbook yet (fresh session expected)"))
		case err != nil:
			fmt.Println(healthErrorStyle.Render("FAIL workbook unreadable:"), err)
			os.Exit(1)
		default:
			merger := internal.NewResumeMerger(store, registry)
			_, warnings, err := merger.Merge(snapshot, annotatorID)
			if err != nil {
				fmt.Println(healthErrorStyle.Render("FAIL workbook does not merge:"), err)
				os.Exit(1)
			}
			fmt.Println(healthSuccessStyle.Render(fmt.Sprintf("OK   %d saved rating(s), %d merge warning(s)", len(snapshot.Rows), len(warnings))))
			for _, w := range warnings {
				fmt.Println(healthWarnStyle.Render("WARN " + w.String()))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
