package internal

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// TargetStatus is an annotator's completion judgment for one target
type TargetStatus int

const (
	StatusDropped    TargetStatus = -1 // user explicitly retracted the goal
	StatusIncomplete TargetStatus = 0
	StatusComplete   TargetStatus = 1
)

// ValidTargetStatus reports whether v is an allowed target status
func ValidTargetStatus(v int) bool {
	return v == int(StatusDropped) || v == int(StatusIncomplete) || v == int(StatusComplete)
}

// Rating holds one annotator's judgment of one conversation
type Rating struct {
	ConversationID string
	AnnotatorID    string
	Scores         map[Dimension]int       // absent key = unset
	Note           string
	TargetStatus   map[string]TargetStatus // keyed by target id, one entry per known target
	UpdatedAt      time.Time
}

// Clone returns a deep copy of the rating
func (r *Rating) Clone() *Rating {
	c := &Rating{
		ConversationID: r.ConversationID,
		AnnotatorID:    r.AnnotatorID,
		Scores:         make(map[Dimension]int, len(r.Scores)),
		Note:           r.Note,
		TargetStatus:   make(map[string]TargetStatus, len(r.TargetStatus)),
		UpdatedAt:      r.UpdatedAt,
	}
	for k, v := range r.Scores {
		c.Scores[k] = v
	}
	for k, v := range r.TargetStatus {
		c.TargetStatus[k] = v
	}
	return c
}

// Score returns the score for a dimension and whether it is set
func (r *Rating) Score(dim Dimension) (int, bool) {
	v, ok := r.Scores[dim]
	return v, ok
}

// TargetCounts returns (completed, introduced) with Dropped targets excluded
// from both counts
func (r *Rating) TargetCounts() (completed, introduced int) {
	for _, s := range r.TargetStatus {
		switch s {
		case StatusComplete:
			completed++
			introduced++
		case StatusIncomplete:
			introduced++
		}
	}
	return completed, introduced
}

type ledgerKey struct {
	conversationID string
	annotatorID    string
}

// ledgerEntry serializes all mutations for one (conversation, annotator)
// pair behind its own mutex, so writers to different pairs never contend.
type ledgerEntry struct {
	mu      sync.Mutex
	rating  *Rating
	touched bool // set by the first explicit mutation; creation-on-read stays untouched
}

// RatingLedger is the in-memory table of ratings for the active session
type RatingLedger struct {
	mu       sync.RWMutex
	entries  map[ledgerKey]*ledgerEntry
	registry *TargetRegistry
	resolver *SubsumptionResolver
}

// NewRatingLedger creates an empty ledger over the given registry
func NewRatingLedger(registry *TargetRegistry) *RatingLedger {
	return &RatingLedger{
		entries:  make(map[ledgerKey]*ledgerEntry),
		registry: registry,
		resolver: NewSubsumptionResolver(registry),
	}
}

// Resolver exposes the ledger's subsumption resolver
func (l *RatingLedger) Resolver() *SubsumptionResolver {
	return l.resolver
}

func (l *RatingLedger) entry(conversationID, annotatorID string) *ledgerEntry {
	key := ledgerKey{conversationID, annotatorID}

	l.mu.RLock()
	e, ok := l.entries[key]
	l.mu.RUnlock()
	if ok {
		return e
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok = l.entries[key]; ok {
		return e
	}
	e = &ledgerEntry{rating: l.freshRating(conversationID, annotatorID)}
	l.entries[key] = e
	return e
}

// freshRating builds an all-unset rating with a status entry for every
// target currently known for the conversation
func (l *RatingLedger) freshRating(conversationID, annotatorID string) *Rating {
	r := &Rating{
		ConversationID: conversationID,
		AnnotatorID:    annotatorID,
		Scores:         make(map[Dimension]int),
		TargetStatus:   make(map[string]TargetStatus),
	}
	if ts, ok := l.registry.Lookup(conversationID); ok {
		for _, t := range ts.Targets {
			r.TargetStatus[t.ID] = StatusIncomplete
		}
	}
	return r
}

// SetDimensionScore records a dimension score in {0,1,2}
func (l *RatingLedger) SetDimensionScore(conversationID, annotatorID string, dim Dimension, value int) error {
	if _, ok := LookupDimension(string(dim)); !ok {
		return fmt.Errorf("unknown dimension %q for conversation %s", dim, conversationID)
	}
	if !ValidScore(value) {
		return &InvalidScoreError{ConversationID: conversationID, Field: string(dim), Value: value}
	}

	e := l.entry(conversationID, annotatorID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rating.Scores[dim] = value
	e.rating.UpdatedAt = time.Now()
	e.touched = true
	return nil
}

// SetTargetStatus records a target completion status in {-1,0,1} and runs
// subsumption propagation as part of the same mutation, so the ledger is
// never observable between a specific target's completion and its implied
// general targets' completion.
func (l *RatingLedger) SetTargetStatus(conversationID, annotatorID, targetID string, status TargetStatus) error {
	if !ValidTargetStatus(int(status)) {
		return &InvalidScoreError{ConversationID: conversationID, Field: targetID, Value: int(status)}
	}
	ts, ok := l.registry.Lookup(conversationID)
	if !ok {
		return fmt.Errorf("no targets derived for conversation %s", conversationID)
	}
	if _, ok := ts.Get(targetID); !ok {
		return fmt.Errorf("unknown target %s in conversation %s", targetID, conversationID)
	}

	e := l.entry(conversationID, annotatorID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rating.TargetStatus[targetID] = status
	l.resolver.Propagate(e.rating, targetID)
	e.rating.UpdatedAt = time.Now()
	e.touched = true
	return nil
}

// SetNote records the free-text note
func (l *RatingLedger) SetNote(conversationID, annotatorID, note string) {
	e := l.entry(conversationID, annotatorID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rating.Note = note
	e.rating.UpdatedAt = time.Now()
	e.touched = true
}

// Rating returns a copy of the current rating for the pair, creating a fresh
// all-unset rating if none exists. Creation on read does not mark the pair
// as rated.
func (l *RatingLedger) Rating(conversationID, annotatorID string) *Rating {
	e := l.entry(conversationID, annotatorID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rating.Clone()
}

// Rated reports whether the pair has received at least one explicit mutation
func (l *RatingLedger) Rated(conversationID, annotatorID string) bool {
	key := ledgerKey{conversationID, annotatorID}
	l.mu.RLock()
	e, ok := l.entries[key]
	l.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.touched
}

// Snapshot returns deep copies of every rated entry, ordered by conversation
// id then annotator id. Mutations after Snapshot returns never appear in the
// copies, so a save can proceed while the session keeps editing.
func (l *RatingLedger) Snapshot() []*Rating {
	l.mu.RLock()
	keys := make([]ledgerKey, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	l.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].conversationID != keys[j].conversationID {
			return keys[i].conversationID < keys[j].conversationID
		}
		return keys[i].annotatorID < keys[j].annotatorID
	})

	var out []*Rating
	for _, k := range keys {
		l.mu.RLock()
		e := l.entries[k]
		l.mu.RUnlock()
		e.mu.Lock()
		if e.touched {
			out = append(out, e.rating.Clone())
		}
		e.mu.Unlock()
	}
	return out
}

// restore installs a merged rating as rated state. Used by the resume path;
// the rating must already be propagated.
func (l *RatingLedger) restore(r *Rating) {
	e := l.entry(r.ConversationID, r.AnnotatorID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rating = r.Clone()
	e.touched = true
}
