package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/eval-session/internal"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [conversation-id]",
	Short: "Inspect derived targets and their refinement graph",
	Long: `Show the stable target identifiers derived for a batch and the refinement
edges between them. With a conversation id, only that conversation is shown.

Useful for finding the target id to pass to 'rate --target', and for
checking that target derivation is behaving before annotators start.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, registry, err := loadBatch()
		if err != nil {
			return err
		}

		convs := store.Conversations()
		if len(args) == 1 {
			conv, ok := store.Get(args[0])
			if !ok {
				return fmt.Errorf("conversation %s not found in batch", args[0])
			}
			convs = []*internal.Conversation{conv}
		}

		totalTargets := 0
		totalEdges := 0
		for _, conv := range convs {
			ts, _ := registry.Lookup(conv.ID)
			fmt.Println(titleStyle.Render(conv.ID))
			if ts == nil || len(ts.Targets) == 0 {
				fmt.Println(dimStyle.Render("  no targets"))
				continue
			}
			for _, t := range ts.Targets {
				totalTargets++
				totalEdges += len(t.Refines)
				fmt.Printf("  %s  %s", idStyle.Render(t.ID), t.Description)
				if t.Constraint != "" {
					fmt.Print(dimStyle.Render("  [" + t.Constraint + "]"))
				}
				fmt.Println()
				if len(t.Refines) > 0 {
					fmt.Println(dimStyle.Render("      -> implies " + strings.Join(t.Refines, ", ")))
				}
			}
		}

		fmt.Println()
		fmt.Printf("%s conversations, %s targets, %s refinement edges\n",
			countStyle.Render(fmt.Sprintf("%d", len(convs))),
			countStyle.Render(fmt.Sprintf("%d", totalTargets)),
			countStyle.Render(fmt.Sprintf("%d", totalEdges)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
