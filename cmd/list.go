package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/eval-session/internal"
	"github.com/spf13/cobra"
)

var (
	listClearCache bool
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the conversations in a batch",
	Long: `List the conversations in a batch with their rating status.

When an annotator id is given, each conversation is marked rated or pending
based on the annotator's saved workbook. An unchanged batch is listed from
the local index cache without re-parsing every record.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if batchPath == "" {
			return fmt.Errorf("--batch is required")
		}

		cacheDir, err := internal.DefaultCacheDir()
		if err != nil {
			return err
		}
		cache := internal.NewCacheManager(cacheDir)
		if listClearCache {
			if err := cache.Clear(); err != nil {
				internal.LogWarn("Failed to clear cache: %v", err)
			} else {
				internal.LogInfo("Cache cleared")
			}
		}

		var entries []internal.ConversationIndexEntry
		if cache.IsValid(batchPath) {
			index, err := cache.LoadIndex()
			if err == nil {
				internal.LogDebug("Listing %d conversation(s) from cache", len(index.Conversations))
				entries = index.Conversations
			}
		}
		if entries == nil {
			store, _, err := loadBatch()
			if err != nil {
				return err
			}
			for _, conv := range store.Conversations() {
				entries = append(entries, internal.ConversationIndexEntry{
					ID:          conv.ID,
					SeedPhrase:  conv.SeedPhrase,
					Persona:     conv.Persona,
					TurnCount:   conv.TurnCount(),
					TargetCount: len(conv.RawTargets),
				})
			}
			if err := cache.SaveIndex(store); err != nil {
				internal.LogWarn("Failed to update cache: %v", err)
			}
		}

		rated, err := ratedConversations()
		if err != nil {
			return err
		}

		displayConversations(entries, rated)
		return nil
	},
}

// ratedConversations returns the set of conversation ids the annotator has
// already rated, from the saved workbook. No annotator or no workbook means
// nothing is marked rated.
func ratedConversations() (map[string]bool, error) {
	if annotatorID == "" {
		return nil, nil
	}
	snapshot, err := internal.LoadWorkbook(batchPath, annotatorID)
	if errors.Is(err, internal.ErrSnapshotNotFound) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, err
	}
	rated := make(map[string]bool, len(snapshot.Rows))
	for _, row := range snapshot.Rows {
		rated[row.ConversationID] = true
	}
	return rated, nil
}

func displayConversations(entries []internal.ConversationIndexEntry, rated map[string]bool) {
	if len(entries) == 0 {
		fmt.Println(headerStyle.Render("No conversations found"))
		return
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Conversations (%d)", len(entries))))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if rated != nil {
		fmt.Fprintln(w, "STATUS\tID\tSCENARIO\tTURNS\tTARGETS")
	} else {
		fmt.Fprintln(w, "ID\tSCENARIO\tTURNS\tTARGETS")
	}

	ratedCount := 0
	for _, e := range entries {
		seed := e.SeedPhrase
		if len(seed) > 48 {
			seed = seed[:45] + "..."
		}
		if rated != nil {
			status := "pending"
			if rated[e.ID] {
				status = "rated"
				ratedCount++
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", status, e.ID, seed, e.TurnCount, e.TargetCount)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", e.ID, seed, e.TurnCount, e.TargetCount)
		}
	}
	w.Flush()

	if rated != nil {
		fmt.Println()
		fmt.Printf("%s %s\n", countStyle.Render(fmt.Sprintf("%d/%d", ratedCount, len(entries))),
			dimStyle.Render("conversations rated"))
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listClearCache, "clear-cache", false, "Clear the batch index cache before listing")
}
