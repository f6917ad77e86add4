package internal

import (
	"encoding/json"
	"sort"
)

// Speaker tags for conversation turns
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// Turn is a single utterance in a conversation
type Turn struct {
	Index   int    `json:"index"`
	Speaker string `json:"speaker"` // "user" or "assistant"
	Text    string `json:"text"`
}

// RawTarget is a user goal as declared in a conversation record, before
// identifier derivation
type RawTarget struct {
	Description    string   `json:"description"`
	Constraint     string   `json:"constraint,omitempty"`
	IntroducedTurn int      `json:"introduced_turn"`
	Refines        []string `json:"refines,omitempty"` // descriptions of more general targets
}

// Conversation is an immutable, sanitized conversation loaded for a batch
type Conversation struct {
	ID         string      `json:"conversation_id"`
	SeedPhrase string      `json:"seed_phrase,omitempty"`
	Persona    string      `json:"persona,omitempty"`
	Turns      []Turn      `json:"turns"`
	RawTargets []RawTarget `json:"targets"`
}

// rawRecord mirrors the conversation log JSON on disk. Evaluation fields the
// generator may have attached (scores, failure labels, strategy data) are
// deliberately not mapped so they never reach the annotator.
type rawRecord struct {
	ConversationID string                   `json:"conversation_id"`
	SeedPhrase     string                   `json:"seed_phrase"`
	Turns          []rawTurn                `json:"turns"`
	Targets        map[string]rawTargetInfo `json:"targets"`
	Metadata       struct {
		PersonaName string `json:"persona_name"`
	} `json:"metadata"`
}

type rawTurn struct {
	TurnNumber int    `json:"turn_number"`
	User       string `json:"user"`
	UserAlt    string `json:"user_utterance"`
	System     string `json:"system"`
	SystemAlt  string `json:"assistant_response"`
}

type rawTargetInfo struct {
	IntroducedTurn int      `json:"introduced_turn"`
	Constraint     string   `json:"constraint"`
	Refines        []string `json:"refines"`
}

// ParseConversationRecord parses and sanitizes a single conversation log
// record. source identifies the file or archive key for error reporting.
func ParseConversationRecord(source string, data []byte) (*Conversation, error) {
	var rec rawRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &MalformedConversationError{Source: source, Reason: "not valid JSON: " + err.Error()}
	}

	if rec.ConversationID == "" {
		return nil, &MalformedConversationError{Source: source, Reason: "missing conversation_id"}
	}
	if len(rec.Turns) == 0 {
		return nil, &MalformedConversationError{Source: source, ID: rec.ConversationID, Reason: "record has no turns"}
	}

	conv := &Conversation{
		ID:         rec.ConversationID,
		SeedPhrase: rec.SeedPhrase,
		Persona:    rec.Metadata.PersonaName,
	}

	for _, t := range rec.Turns {
		user := t.User
		if user == "" {
			user = t.UserAlt
		}
		assistant := t.System
		if assistant == "" {
			assistant = t.SystemAlt
		}
		if user != "" {
			conv.Turns = append(conv.Turns, Turn{Index: t.TurnNumber, Speaker: SpeakerUser, Text: user})
		}
		if assistant != "" {
			conv.Turns = append(conv.Turns, Turn{Index: t.TurnNumber, Speaker: SpeakerAssistant, Text: assistant})
		}
	}
	if len(conv.Turns) == 0 {
		return nil, &MalformedConversationError{Source: source, ID: rec.ConversationID, Reason: "no turn carries any utterance text"}
	}

	// JSON object order is not stable, so targets get a deterministic order
	// here: by introduction turn, then description.
	for desc, info := range rec.Targets {
		if desc == "" {
			return nil, &MalformedConversationError{Source: source, ID: rec.ConversationID, Reason: "target with empty description"}
		}
		conv.RawTargets = append(conv.RawTargets, RawTarget{
			Description:    desc,
			Constraint:     info.Constraint,
			IntroducedTurn: info.IntroducedTurn,
			Refines:        info.Refines,
		})
	}
	sort.Slice(conv.RawTargets, func(i, j int) bool {
		a, b := conv.RawTargets[i], conv.RawTargets[j]
		if a.IntroducedTurn != b.IntroducedTurn {
			return a.IntroducedTurn < b.IntroducedTurn
		}
		return a.Description < b.Description
	})

	return conv, nil
}

// TurnCount returns the number of user/assistant exchanges (by turn index)
func (c *Conversation) TurnCount() int {
	max := -1
	for _, t := range c.Turns {
		if t.Index > max {
			max = t.Index
		}
	}
	return max + 1
}
