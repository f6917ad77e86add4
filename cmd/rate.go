package cmd

import (
	"fmt"

	"github.com/iksnae/eval-session/internal"
	"github.com/spf13/cobra"
)

var (
	rateConversation string
	rateDimension    string
	rateScore        int
	rateTarget       string
	rateStatus       int
	rateNote         string
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Record a rating for a conversation",
	Long: `Record a dimension score, a target completion status, or a note for one
conversation, then save the workbook.

Any prior save for the same annotator and batch is resumed first, so rating
is always cumulative. Completing a specific target automatically completes
the more general targets it implies.

Examples:
  eval-session rate --conversation conv_001 --dimension plan_coherence --score 2
  eval-session rate --conversation conv_001 --target 3f7a1c2d9b40 --status 1
  eval-session rate --conversation conv_001 --note "assistant forgot the budget constraint"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAnnotator(); err != nil {
			return err
		}
		if rateConversation == "" {
			return fmt.Errorf("--conversation is required")
		}
		// Pairing checks come first so a bare --score or --status gets the
		// pairing message, not "nothing to record".
		dimSet := cmd.Flags().Changed("dimension")
		targetSet := cmd.Flags().Changed("target")
		noteSet := cmd.Flags().Changed("note")
		if dimSet != cmd.Flags().Changed("score") {
			return fmt.Errorf("--dimension and --score must be used together")
		}
		if targetSet != cmd.Flags().Changed("status") {
			return fmt.Errorf("--target and --status must be used together")
		}
		if !dimSet && !targetSet && !noteSet {
			return fmt.Errorf("nothing to record: pass --dimension/--score, --target/--status, or --note")
		}

		store, registry, err := loadBatch()
		if err != nil {
			return err
		}
		if _, ok := store.Get(rateConversation); !ok {
			return fmt.Errorf("conversation %s not found in batch", rateConversation)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ledger, err := resumeOrFresh(store, registry)
		if err != nil {
			return err
		}

		if dimSet {
			if err := ledger.SetDimensionScore(rateConversation, annotatorID, internal.Dimension(rateDimension), rateScore); err != nil {
				return err
			}
		}
		if targetSet {
			if err := ledger.SetTargetStatus(rateConversation, annotatorID, rateTarget, internal.TargetStatus(rateStatus)); err != nil {
				return err
			}
		}
		if noteSet {
			ledger.SetNote(rateConversation, annotatorID, rateNote)
		}

		path, err := internal.SaveWorkbook(ledger, annotatorID, batchPath, store, cfg)
		if err != nil {
			return err
		}

		rating := ledger.Rating(rateConversation, annotatorID)
		overall := internal.ComputeOverallScore(rating, cfg)
		internal.PrintSuccess(fmt.Sprintf("Saved. %s now scores %.3f (%s)",
			rateConversation, overall, internal.PassFailLabel(overall, cfg)))

		reportProgress(ledger, store, cfg)
		internal.LogDebug("Workbook at %s", path)
		return nil
	},
}

// reportProgress prints batch progress and, when due, break and
// session-length reminders. The session start is persisted in the cache dir
// so the length check works across one-shot invocations.
func reportProgress(ledger *internal.RatingLedger, store *internal.ConversationStore, cfg *internal.Config) {
	progress := internal.NewSessionProgress(store.Len(), cfg)
	if cacheDir, err := internal.DefaultCacheDir(); err == nil {
		start, err := internal.NewCacheManager(cacheDir).SessionStart(annotatorID, cfg)
		if err != nil {
			internal.LogDebug("Session tracking unavailable: %v", err)
		} else {
			progress.StartedAt = start
		}
	}
	for _, conv := range store.Conversations() {
		if ledger.Rated(conv.ID, annotatorID) {
			progress.Completed++
		}
	}
	internal.PrintInfo(progress.Summary())
	if progress.BreakDue() {
		internal.PrintInfo(fmt.Sprintf("You've rated %d conversations - consider a short break. Brief breaks help maintain rating quality.", progress.Completed))
	}
	if progress.SessionTooLong() {
		internal.PrintWarning(fmt.Sprintf("You've been rating for over %d minutes - consider a longer break before continuing.", cfg.MaxSessionMinutes))
	}
}

func init() {
	rootCmd.AddCommand(rateCmd)
	rateCmd.Flags().StringVar(&rateConversation, "conversation", "", "Conversation id to rate")
	rateCmd.Flags().StringVar(&rateDimension, "dimension", "", "Dimension key (see 'eval-session rubric')")
	rateCmd.Flags().IntVar(&rateScore, "score", 0, "Dimension score in {0,1,2}")
	rateCmd.Flags().StringVar(&rateTarget, "target", "", "Target id (see 'eval-session show')")
	rateCmd.Flags().IntVar(&rateStatus, "status", 0, "Target status: 1 complete, 0 incomplete, -1 dropped")
	rateCmd.Flags().StringVar(&rateNote, "note", "", "Free-text note for the conversation")
}
