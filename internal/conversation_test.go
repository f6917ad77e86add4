package internal

import (
	"errors"
	"testing"
)

func TestParseConversationRecord(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantErr     bool
		wantID      string
		wantTurns   int
		wantTargets int
	}{
		{
			name: "basic record",
			data: `{
				"conversation_id": "conv_001",
				"seed_phrase": "dinner plans",
				"turns": [
					{"turn_number": 0, "user": "Find food", "system": "Sure, what kind?"}
				],
				"targets": {"find food": {"introduced_turn": 0}}
			}`,
			wantID:      "conv_001",
			wantTurns:   2,
			wantTargets: 1,
		},
		{
			name: "alternate turn field names",
			data: `{
				"conversation_id": "conv_002",
				"turns": [
					{"turn_number": 0, "user_utterance": "Play jazz", "assistant_response": "Playing jazz."}
				]
			}`,
			wantID:      "conv_002",
			wantTurns:   2,
			wantTargets: 0,
		},
		{
			name: "zero targets is valid",
			data: `{
				"conversation_id": "conv_003",
				"turns": [{"turn_number": 0, "user": "Turn up the AC", "system": "Done."}],
				"targets": {}
			}`,
			wantID:      "conv_003",
			wantTurns:   2,
			wantTargets: 0,
		},
		{
			name: "assistant-only turn",
			data: `{
				"conversation_id": "conv_004",
				"turns": [{"turn_number": 0, "system": "Welcome back."}]
			}`,
			wantID:      "conv_004",
			wantTurns:   1,
			wantTargets: 0,
		},
		{
			name:    "not JSON",
			data:    `{{{`,
			wantErr: true,
		},
		{
			name:    "missing conversation_id",
			data:    `{"turns": [{"turn_number": 0, "user": "hi", "system": "hello"}]}`,
			wantErr: true,
		},
		{
			name:    "no turns",
			data:    `{"conversation_id": "conv_005", "turns": []}`,
			wantErr: true,
		},
		{
			name: "turns with no utterance text",
			data: `{
				"conversation_id": "conv_006",
				"turns": [{"turn_number": 0}]
			}`,
			wantErr: true,
		},
		{
			name: "target with empty description",
			data: `{
				"conversation_id": "conv_007",
				"turns": [{"turn_number": 0, "user": "hi", "system": "hello"}],
				"targets": {"": {"introduced_turn": 0}}
			}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := ParseConversationRecord("test.json", []byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseConversationRecord() expected error, got nil")
				}
				var malformed *MalformedConversationError
				if !errors.As(err, &malformed) {
					t.Errorf("error = %v, want *MalformedConversationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConversationRecord() error = %v", err)
			}
			if conv.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", conv.ID, tt.wantID)
			}
			if len(conv.Turns) != tt.wantTurns {
				t.Errorf("len(Turns) = %d, want %d", len(conv.Turns), tt.wantTurns)
			}
			if len(conv.RawTargets) != tt.wantTargets {
				t.Errorf("len(RawTargets) = %d, want %d", len(conv.RawTargets), tt.wantTargets)
			}
		})
	}
}

func TestParseConversationRecord_TargetOrderDeterministic(t *testing.T) {
	data := []byte(`{
		"conversation_id": "conv_010",
		"turns": [{"turn_number": 0, "user": "hi", "system": "hello"}],
		"targets": {
			"zeta goal": {"introduced_turn": 1},
			"alpha goal": {"introduced_turn": 1},
			"first goal": {"introduced_turn": 0}
		}
	}`)

	first, err := ParseConversationRecord("a.json", data)
	if err != nil {
		t.Fatalf("ParseConversationRecord() error = %v", err)
	}

	want := []string{"first goal", "alpha goal", "zeta goal"}
	for i, target := range first.RawTargets {
		if target.Description != want[i] {
			t.Errorf("RawTargets[%d] = %q, want %q", i, target.Description, want[i])
		}
	}

	// Same bytes parse to the same order every time.
	for i := 0; i < 5; i++ {
		again, err := ParseConversationRecord("a.json", data)
		if err != nil {
			t.Fatalf("ParseConversationRecord() error = %v", err)
		}
		for j := range again.RawTargets {
			if again.RawTargets[j].Description != first.RawTargets[j].Description {
				t.Fatalf("target order changed between parses at index %d", j)
			}
		}
	}
}

func TestParseConversationRecord_SanitizesEvaluationFields(t *testing.T) {
	data := []byte(`{
		"conversation_id": "conv_011",
		"seed_phrase": "seed",
		"llm_scores": {"plan_coherence": 2},
		"failure_labels": ["omission"],
		"turns": [{"turn_number": 0, "user": "hi", "system": "hello", "turn_score": 0.9}],
		"targets": {"a goal": {"introduced_turn": 0, "status": 1, "completed_turn": 3}}
	}`)

	conv, err := ParseConversationRecord("b.json", data)
	if err != nil {
		t.Fatalf("ParseConversationRecord() error = %v", err)
	}
	// The record's own completion claims must not leak into the target: only
	// the fields the annotator is allowed to see are mapped.
	if len(conv.RawTargets) != 1 {
		t.Fatalf("len(RawTargets) = %d, want 1", len(conv.RawTargets))
	}
	if conv.RawTargets[0].Description != "a goal" {
		t.Errorf("target description = %q", conv.RawTargets[0].Description)
	}
}

func TestConversation_TurnCount(t *testing.T) {
	conv := CreateTestConversation("conv_020")
	if got := conv.TurnCount(); got != 2 {
		t.Errorf("TurnCount() = %d, want 2", got)
	}
}
