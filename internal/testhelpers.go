package internal

// CreateTestConversation creates a conversation with two targets where the
// second refines the first
func CreateTestConversation(id string) *Conversation {
	return &Conversation{
		ID:         id,
		SeedPhrase: "find somewhere to eat",
		Turns: []Turn{
			{Index: 0, Speaker: SpeakerUser, Text: "Find me an Indian restaurant"},
			{Index: 0, Speaker: SpeakerAssistant, Text: "There are three nearby. Indian Village Restaurant is closest."},
			{Index: 1, Speaker: SpeakerUser, Text: "Navigate to Indian Village Restaurant"},
			{Index: 1, Speaker: SpeakerAssistant, Text: "Starting navigation to Indian Village Restaurant."},
		},
		RawTargets: []RawTarget{
			{Description: "find an Indian restaurant", IntroducedTurn: 0},
			{
				Description:    "navigate to Indian Village Restaurant",
				IntroducedTurn: 1,
				Refines:        []string{"find an Indian restaurant"},
			},
		},
	}
}

// CreateTestConversationWithTargets creates a conversation with the given
// targets and a single exchange
func CreateTestConversationWithTargets(id string, targets []RawTarget) *Conversation {
	return &Conversation{
		ID: id,
		Turns: []Turn{
			{Index: 0, Speaker: SpeakerUser, Text: "hello"},
			{Index: 0, Speaker: SpeakerAssistant, Text: "hi there"},
		},
		RawTargets: targets,
	}
}

// BuildTestRegistry derives targets for the given conversations, panicking
// on derivation errors so tests stay terse. Only use with known-good
// fixtures.
func BuildTestRegistry(convs ...*Conversation) *TargetRegistry {
	registry := NewTargetRegistry()
	for _, conv := range convs {
		if _, err := registry.Derive(conv); err != nil {
			panic(err)
		}
	}
	return registry
}

// BuildTestStore assembles a store from the given conversations
func BuildTestStore(batchPath string, convs ...*Conversation) *ConversationStore {
	store := newStore(batchPath)
	for _, conv := range convs {
		if err := store.add(conv.ID, conv); err != nil {
			panic(err)
		}
	}
	return store
}
