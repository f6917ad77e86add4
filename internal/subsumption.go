package internal

// SubsumptionResolver applies the "specific implies general" completion rule
// across a conversation's refinement DAG.
type SubsumptionResolver struct {
	registry *TargetRegistry
}

// NewSubsumptionResolver creates a resolver over the given registry
func NewSubsumptionResolver(registry *TargetRegistry) *SubsumptionResolver {
	return &SubsumptionResolver{registry: registry}
}

// Propagate forces every target implied by targetID to Complete when
// targetID itself is Complete. Completion forced this way is monotonic: a
// later revert of the triggering target does not flip implied targets back.
// Dropped statuses never propagate; an implied target the annotator has
// explicitly Dropped keeps its Dropped status, but traversal continues
// through it to further implied targets.
func (r *SubsumptionResolver) Propagate(rating *Rating, targetID string) {
	if rating.TargetStatus[targetID] != StatusComplete {
		return
	}
	ts, ok := r.registry.Lookup(rating.ConversationID)
	if !ok {
		return
	}

	visited := map[string]bool{targetID: true}
	queue := []string{targetID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		t, ok := ts.Get(id)
		if !ok {
			continue
		}
		for _, general := range t.Refines {
			if visited[general] {
				continue
			}
			visited[general] = true
			if rating.TargetStatus[general] != StatusDropped {
				rating.TargetStatus[general] = StatusComplete
			}
			queue = append(queue, general)
		}
	}
}

// PropagateAll re-runs propagation for every Complete target in a rating.
// Used after a resume merge so a restored ledger never shows a state a live
// session could not have produced.
func (r *SubsumptionResolver) PropagateAll(rating *Rating) {
	ts, ok := r.registry.Lookup(rating.ConversationID)
	if !ok {
		return
	}
	for _, t := range ts.Targets {
		if rating.TargetStatus[t.ID] == StatusComplete {
			r.Propagate(rating, t.ID)
		}
	}
}
