package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Target is a discrete user goal derived from a conversation, addressed by a
// stable identifier so saved statuses survive reloads.
type Target struct {
	ID             string
	ConversationID string
	Description    string
	Constraint     string
	IntroducedTurn int
	Refines        []string // target IDs of the more general goals this one implies
}

// TargetSet holds a conversation's targets in derivation order plus the
// refinement edges between them.
type TargetSet struct {
	ConversationID string
	Targets        []*Target
	byID           map[string]*Target
}

// Get looks up a target by id
func (ts *TargetSet) Get(id string) (*Target, bool) {
	t, ok := ts.byID[id]
	return t, ok
}

// IDs returns the target ids in derivation order
func (ts *TargetSet) IDs() []string {
	ids := make([]string, 0, len(ts.Targets))
	for _, t := range ts.Targets {
		ids = append(ids, t.ID)
	}
	return ids
}

// TargetRegistry derives targets and their refinement DAG per conversation
type TargetRegistry struct {
	sets map[string]*TargetSet // keyed by conversation id
}

// NewTargetRegistry creates an empty registry
func NewTargetRegistry() *TargetRegistry {
	return &TargetRegistry{sets: make(map[string]*TargetSet)}
}

// TargetID derives the stable identifier for a target: the first 12 hex
// characters of SHA-256 over the conversation id and the normalized goal
// description. The same record content always yields the same id, which is
// what lets saved statuses be matched back on resume. Changing this
// derivation invalidates every previously saved workbook.
func TargetID(conversationID, description string) string {
	h := sha256.New()
	h.Write([]byte(conversationID))
	h.Write([]byte{0})
	h.Write([]byte(normalizeGoal(description)))
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// normalizeGoal lowercases and collapses runs of whitespace so cosmetic
// edits to a goal description do not change its identifier
func normalizeGoal(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Derive builds the target set for a conversation, validating the refinement
// graph. A conversation with no targets is valid and yields an empty set.
// Derive is idempotent: repeated calls for the same conversation return the
// cached set.
func (r *TargetRegistry) Derive(conv *Conversation) (*TargetSet, error) {
	if ts, ok := r.sets[conv.ID]; ok {
		return ts, nil
	}

	ts := &TargetSet{
		ConversationID: conv.ID,
		byID:           make(map[string]*Target),
	}

	descToID := make(map[string]string, len(conv.RawTargets))
	for _, raw := range conv.RawTargets {
		id := TargetID(conv.ID, raw.Description)
		if _, dup := ts.byID[id]; dup {
			return nil, &MalformedConversationError{
				Source: conv.ID,
				ID:     conv.ID,
				Reason: "duplicate target description: " + raw.Description,
			}
		}
		t := &Target{
			ID:             id,
			ConversationID: conv.ID,
			Description:    raw.Description,
			Constraint:     raw.Constraint,
			IntroducedTurn: raw.IntroducedTurn,
		}
		ts.Targets = append(ts.Targets, t)
		ts.byID[id] = t
		descToID[normalizeGoal(raw.Description)] = id
	}

	// Resolve refinement edges by description, then by id.
	for i, raw := range conv.RawTargets {
		t := ts.Targets[i]
		for _, ref := range raw.Refines {
			general, ok := descToID[normalizeGoal(ref)]
			if !ok {
				if _, byID := ts.byID[ref]; byID {
					general = ref
				} else {
					return nil, &MalformedConversationError{
						Source: conv.ID,
						ID:     conv.ID,
						Reason: "target " + raw.Description + " refines unknown target " + ref,
					}
				}
			}
			if general == t.ID {
				return nil, &CyclicSubsumptionError{ConversationID: conv.ID, TargetID: t.ID}
			}
			t.Refines = append(t.Refines, general)
		}
	}

	if cyclic, at := findCycle(ts); cyclic {
		return nil, &CyclicSubsumptionError{ConversationID: conv.ID, TargetID: at}
	}

	r.sets[conv.ID] = ts
	return ts, nil
}

// Lookup returns the derived target set for a conversation, if any
func (r *TargetRegistry) Lookup(conversationID string) (*TargetSet, bool) {
	ts, ok := r.sets[conversationID]
	return ts, ok
}

// findCycle runs a three-color DFS over refinement edges. Returns the id of
// a target on a cycle, if one exists.
func findCycle(ts *TargetSet) (bool, string) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(ts.Targets))

	var visit func(id string) (bool, string)
	visit = func(id string) (bool, string) {
		color[id] = gray
		t := ts.byID[id]
		for _, next := range t.Refines {
			switch color[next] {
			case gray:
				return true, next
			case white:
				if cyclic, at := visit(next); cyclic {
					return true, at
				}
			}
		}
		color[id] = black
		return false, ""
	}

	for _, t := range ts.Targets {
		if color[t.ID] == white {
			if cyclic, at := visit(t.ID); cyclic {
				return true, at
			}
		}
	}
	return false, ""
}
