package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/eval-session/internal"
	"github.com/spf13/cobra"
)

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("27")).
			Padding(0, 1)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("252")).
			Padding(0, 1)

	turnLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	completeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	incompleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	droppedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
)

var showCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Show a conversation with its targets and current rating",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, registry, err := loadBatch()
		if err != nil {
			return err
		}
		conv, ok := store.Get(args[0])
		if !ok {
			return fmt.Errorf("conversation %s not found in batch", args[0])
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		displayConversation(conv)

		targets, _ := registry.Lookup(conv.ID)
		if annotatorID == "" {
			displayTargets(targets, nil)
			return nil
		}

		ledger, err := resumeOrFresh(store, registry)
		if err != nil {
			return err
		}
		rating := ledger.Rating(conv.ID, annotatorID)
		displayTargets(targets, rating)
		displayRating(ledger, conv.ID, rating, cfg)
		return nil
	},
}

func displayConversation(conv *internal.Conversation) {
	fmt.Println(titleStyle.Render("Conversation " + conv.ID))
	if conv.SeedPhrase != "" {
		fmt.Println(dimStyle.Render("Scenario: " + conv.SeedPhrase))
	}
	if conv.Persona != "" {
		fmt.Println(dimStyle.Render("Persona: " + conv.Persona))
	}
	fmt.Println()

	for _, turn := range conv.Turns {
		var bubble lipgloss.Style
		var label string
		if turn.Speaker == internal.SpeakerUser {
			bubble = userStyle
			label = "driver"
		} else {
			bubble = assistantStyle
			label = "assistant"
		}
		fmt.Println(bubble.Render(turn.Text))
		fmt.Println(turnLabelStyle.Render(fmt.Sprintf("%s - turn %d", label, turn.Index+1)))
		fmt.Println()
	}
}

func displayTargets(targets *internal.TargetSet, rating *internal.Rating) {
	if targets == nil || len(targets.Targets) == 0 {
		fmt.Println(dimStyle.Render("No targets in this conversation."))
		return
	}

	fmt.Println(headerStyle.Render("Targets"))
	for _, t := range targets.Targets {
		line := fmt.Sprintf("%s  %s", idStyle.Render(t.ID), t.Description)
		if t.Constraint != "" {
			line += dimStyle.Render(" (" + t.Constraint + ")")
		}
		if rating != nil {
			switch rating.TargetStatus[t.ID] {
			case internal.StatusComplete:
				line = completeStyle.Render("[complete]") + " " + line
			case internal.StatusDropped:
				line = droppedStyle.Render("[dropped]") + " " + line
			default:
				line = incompleteStyle.Render("[incomplete]") + " " + line
			}
		}
		fmt.Println(line)
		if len(t.Refines) > 0 {
			fmt.Println(dimStyle.Render("    implies: " + strings.Join(t.Refines, ", ")))
		}
	}
	fmt.Println()
}

func displayRating(ledger *internal.RatingLedger, conversationID string, rating *internal.Rating, cfg *internal.Config) {
	if !ledger.Rated(conversationID, annotatorID) {
		fmt.Println(dimStyle.Render("Not yet rated by " + annotatorID))
		return
	}

	fmt.Println(headerStyle.Render("Rating by " + annotatorID))
	for _, d := range internal.Dimensions {
		if v, ok := rating.Score(d.Key); ok {
			fmt.Printf("  %s: %d (%s)\n", d.Name, v, d.RubricLabels[v])
		} else {
			fmt.Printf("  %s: %s\n", d.Name, dimStyle.Render("unset"))
		}
	}
	if rating.Note != "" {
		fmt.Printf("  Note: %s\n", rating.Note)
	}
	overall := internal.ComputeOverallScore(rating, cfg)
	fmt.Printf("  Overall: %s\n", countStyle.Render(fmt.Sprintf("%.3f (%s)", overall, internal.PassFailLabel(overall, cfg))))
}

func init() {
	rootCmd.AddCommand(showCmd)
}
