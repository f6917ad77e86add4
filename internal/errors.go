package internal

import (
	"errors"
	"fmt"
)

// ErrSnapshotNotFound is returned by LoadWorkbook when no workbook exists yet
// for the (annotator, batch) key. Starting fresh is the expected response,
// not a failure.
var ErrSnapshotNotFound = errors.New("no saved workbook for this annotator and batch")

// MalformedConversationError represents a conversation record that cannot be
// parsed into a usable conversation structure
type MalformedConversationError struct {
	Source string // file path or archive key
	ID     string // conversation id, if one was recovered
	Reason string
}

func (e *MalformedConversationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("malformed conversation %s (%s): %s", e.ID, e.Source, e.Reason)
	}
	return fmt.Sprintf("malformed conversation record %s: %s", e.Source, e.Reason)
}

// CyclicSubsumptionError represents a cycle in a conversation's target
// refinement graph
type CyclicSubsumptionError struct {
	ConversationID string
	TargetID       string
}

func (e *CyclicSubsumptionError) Error() string {
	return fmt.Sprintf("cyclic target refinement in conversation %s at target %s", e.ConversationID, e.TargetID)
}

// InvalidScoreError represents a dimension score or target status outside the
// allowed range
type InvalidScoreError struct {
	ConversationID string
	Field          string // dimension key or target id
	Value          int
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("invalid value %d for %s in conversation %s", e.Value, e.Field, e.ConversationID)
}

// CorruptSnapshotError represents a workbook that exists but cannot be parsed
// back into ratings
type CorruptSnapshotError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptSnapshotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt workbook %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt workbook %s: %s", e.Path, e.Reason)
}

func (e *CorruptSnapshotError) Unwrap() error {
	return e.Err
}

// AnnotatorMismatchError is returned when a workbook was saved by a different
// annotator than the one resuming
type AnnotatorMismatchError struct {
	Saved   string
	Current string
}

func (e *AnnotatorMismatchError) Error() string {
	return fmt.Sprintf("workbook was saved by annotator %q, not %q", e.Saved, e.Current)
}
