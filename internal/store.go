package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ConversationStore holds the ordered batch of conversations loaded for a
// session. Read-only after load.
type ConversationStore struct {
	BatchPath     string
	conversations []*Conversation
	byID          map[string]*Conversation
}

// Conversations returns the batch in load order
func (s *ConversationStore) Conversations() []*Conversation {
	return s.conversations
}

// Get looks up a conversation by id
func (s *ConversationStore) Get(id string) (*Conversation, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// Len returns the number of conversations in the batch
func (s *ConversationStore) Len() int {
	return len(s.conversations)
}

func newStore(batchPath string) *ConversationStore {
	return &ConversationStore{
		BatchPath: batchPath,
		byID:      make(map[string]*Conversation),
	}
}

func (s *ConversationStore) add(source string, conv *Conversation) error {
	if _, dup := s.byID[conv.ID]; dup {
		return &MalformedConversationError{Source: source, ID: conv.ID, Reason: "duplicate conversation id in batch"}
	}
	s.conversations = append(s.conversations, conv)
	s.byID[conv.ID] = conv
	return nil
}

// LoadStoreFromFolder loads all conversation JSON records from a batch
// folder in filename order. A nested "conversations" subdirectory is
// honored. Any unparsable record aborts the whole load: proceeding with a
// partial batch would silently shift what the annotator sees.
func LoadStoreFromFolder(folder string) (*ConversationStore, error) {
	resolved := folder
	if nested := filepath.Join(folder, "conversations"); isDir(nested) {
		resolved = nested
	}
	if !isDir(resolved) {
		return nil, fmt.Errorf("batch folder not found: %s", folder)
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch folder %s: %w", resolved, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	store := newStore(resolved)
	for _, name := range names {
		path := filepath.Join(resolved, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		conv, err := ParseConversationRecord(path, data)
		if err != nil {
			return nil, err
		}
		if err := store.add(path, conv); err != nil {
			return nil, err
		}
	}

	LogDebug("Loaded %d conversation(s) from %s", store.Len(), resolved)
	return store, nil
}

// LoadStore loads a batch from either a folder of JSON records or a SQLite
// batch archive, decided by what the path points at.
func LoadStore(path string) (*ConversationStore, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("batch location not found: %s", path)
	}
	if info.IsDir() {
		return LoadStoreFromFolder(path)
	}
	return LoadStoreFromArchive(path)
}

// DiscoverBatchFolders finds batch subfolders under a base path, trying the
// layouts the conversation generator produces (batch_1, batch1, folder_1,
// bare numbers). When none match, the base path itself is the single batch.
func DiscoverBatchFolders(base string, numBatches int) []string {
	var found []string
	for i := 1; i <= numBatches; i++ {
		patterns := []string{
			fmt.Sprintf("batch_%d", i),
			fmt.Sprintf("batch%d", i),
			fmt.Sprintf("folder_%d", i),
			fmt.Sprintf("%d", i),
		}
		for _, p := range patterns {
			candidate := filepath.Join(base, p)
			if isDir(candidate) {
				found = append(found, candidate)
				break
			}
		}
	}
	if len(found) == 0 {
		found = []string{base}
	}
	return found
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
