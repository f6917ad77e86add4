package internal

import "fmt"

// MergeWarning records saved state that could not be carried into the
// resumed session. Warnings are surfaced, never silently swallowed: an
// annotator deserves to know which judgments did not survive a reload.
type MergeWarning struct {
	ConversationID string
	TargetID       string
	Reason         string
}

func (w MergeWarning) String() string {
	if w.TargetID != "" {
		return fmt.Sprintf("conversation %s, target %s: %s", w.ConversationID, w.TargetID, w.Reason)
	}
	return fmt.Sprintf("conversation %s: %s", w.ConversationID, w.Reason)
}

// ResumeMerger reconciles a freshly loaded batch with a previously saved
// workbook snapshot
type ResumeMerger struct {
	store    *ConversationStore
	registry *TargetRegistry
}

// NewResumeMerger creates a merger over the loaded store and derived targets
func NewResumeMerger(store *ConversationStore, registry *TargetRegistry) *ResumeMerger {
	return &ResumeMerger{store: store, registry: registry}
}

// Merge rehydrates a fresh ledger from a snapshot. See MergeInto for the
// matching rules.
func (m *ResumeMerger) Merge(snapshot *PersistedSnapshot, annotatorID string) (*RatingLedger, []MergeWarning, error) {
	ledger := NewRatingLedger(m.registry)
	warnings, err := m.MergeInto(ledger, snapshot, annotatorID)
	if err != nil {
		return nil, nil, err
	}
	return ledger, warnings, nil
}

// MergeInto restores saved ratings into an existing ledger:
//
//   - the snapshot must have been saved by the resuming annotator;
//   - conversations present in both snapshot and store get their dimension
//     scores and note restored verbatim;
//   - target statuses are matched by stable target id — ids missing from the
//     freshly derived set are dropped with a warning, never attached to some
//     other target, and newly derived ids default to Incomplete;
//   - after raw restore, subsumption propagation is re-run over every
//     restored rating.
//
// MergeInto is idempotent: applying the same snapshot twice leaves the
// ledger exactly as one application does.
func (m *ResumeMerger) MergeInto(ledger *RatingLedger, snapshot *PersistedSnapshot, annotatorID string) ([]MergeWarning, error) {
	if snapshot.AnnotatorID != annotatorID {
		return nil, &AnnotatorMismatchError{Saved: snapshot.AnnotatorID, Current: annotatorID}
	}

	var warnings []MergeWarning
	for _, row := range snapshot.Rows {
		if _, ok := m.store.Get(row.ConversationID); !ok {
			w := MergeWarning{ConversationID: row.ConversationID, Reason: "saved rating has no matching conversation in this batch"}
			LogWarn("%s", w)
			warnings = append(warnings, w)
			continue
		}

		rating := ledger.freshRating(row.ConversationID, annotatorID)
		for dim, v := range row.Scores {
			rating.Scores[dim] = v
		}
		rating.Note = row.Note
		rating.UpdatedAt = row.UpdatedAt

		for id, status := range row.TargetStatus {
			if _, known := rating.TargetStatus[id]; !known {
				w := MergeWarning{
					ConversationID: row.ConversationID,
					TargetID:       id,
					Reason:         "saved target status has no matching target in the derived set",
				}
				LogWarn("%s", w)
				warnings = append(warnings, w)
				continue
			}
			rating.TargetStatus[id] = status
		}

		ledger.resolver.PropagateAll(rating)
		ledger.restore(rating)
	}
	return warnings, nil
}
