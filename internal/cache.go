package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheManager keeps a YAML index of a batch's conversations so `list` can
// skip re-parsing an unchanged batch
type CacheManager struct {
	cacheDir string
}

// CacheMetadata stores what the index was built from
type CacheMetadata struct {
	BatchPath    string    `yaml:"batch_path"`
	BatchModTime time.Time `yaml:"batch_mod_time"`
	CacheVersion string    `yaml:"cache_version"`
	CreatedAt    time.Time `yaml:"created_at"`
}

// ConversationIndexEntry summarizes one conversation for listing
type ConversationIndexEntry struct {
	ID          string `yaml:"id"`
	SeedPhrase  string `yaml:"seed_phrase,omitempty"`
	Persona     string `yaml:"persona,omitempty"`
	TurnCount   int    `yaml:"turn_count"`
	TargetCount int    `yaml:"target_count"`
}

// BatchIndex is the YAML index of a batch
type BatchIndex struct {
	Conversations []ConversationIndexEntry `yaml:"conversations"`
	Metadata      CacheMetadata            `yaml:"metadata"`
}

const cacheVersion = "1"

// NewCacheManager creates a cache manager rooted at cacheDir
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{cacheDir: cacheDir}
}

// DefaultCacheDir returns ~/.eval-session-cache
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".eval-session-cache"), nil
}

// IndexPath returns the path of the batch index file
func (cm *CacheManager) IndexPath() string {
	return filepath.Join(cm.cacheDir, "index.yaml")
}

// IsValid reports whether the cached index still describes batchPath
func (cm *CacheManager) IsValid(batchPath string) bool {
	index, err := cm.LoadIndex()
	if err != nil {
		return false
	}
	if index.Metadata.BatchPath != batchPath || index.Metadata.CacheVersion != cacheVersion {
		return false
	}
	mod, err := batchModTime(batchPath)
	if err != nil {
		return false
	}
	return index.Metadata.BatchModTime.Equal(mod)
}

// LoadIndex loads the batch index
func (cm *CacheManager) LoadIndex() (*BatchIndex, error) {
	data, err := os.ReadFile(cm.IndexPath())
	if err != nil {
		return nil, err
	}
	var index BatchIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}
	return &index, nil
}

// SaveIndex builds and saves the index for a loaded store
func (cm *CacheManager) SaveIndex(store *ConversationStore) error {
	if err := os.MkdirAll(cm.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	mod, err := batchModTime(store.BatchPath)
	if err != nil {
		return err
	}

	index := BatchIndex{
		Metadata: CacheMetadata{
			BatchPath:    store.BatchPath,
			BatchModTime: mod,
			CacheVersion: cacheVersion,
			CreatedAt:    time.Now(),
		},
	}
	for _, conv := range store.Conversations() {
		index.Conversations = append(index.Conversations, ConversationIndexEntry{
			ID:          conv.ID,
			SeedPhrase:  conv.SeedPhrase,
			Persona:     conv.Persona,
			TurnCount:   conv.TurnCount(),
			TargetCount: len(conv.RawTargets),
		})
	}

	data, err := yaml.Marshal(&index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := os.WriteFile(cm.IndexPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// sessionState records when an annotator's current rating run began and
// when it last saw activity, persisted so session-length warnings survive
// one-shot command invocations.
type sessionState struct {
	AnnotatorID  string    `yaml:"annotator_id"`
	StartedAt    time.Time `yaml:"started_at"`
	LastActivity time.Time `yaml:"last_activity"`
}

// SessionStart returns when the annotator's current rating session began.
// A new session starts when no state exists or the last activity is older
// than the configured session length (a gap that long means the annotator
// took the break). Every call counts as activity.
func (cm *CacheManager) SessionStart(annotatorID string, cfg *Config) (time.Time, error) {
	if err := os.MkdirAll(cm.cacheDir, 0755); err != nil {
		return time.Time{}, fmt.Errorf("failed to create cache directory: %w", err)
	}
	path := cm.sessionPath(annotatorID)
	now := time.Now()
	state := sessionState{AnnotatorID: annotatorID, StartedAt: now}

	if data, err := os.ReadFile(path); err == nil {
		var prev sessionState
		if err := yaml.Unmarshal(data, &prev); err == nil && !prev.LastActivity.IsZero() {
			gap := time.Duration(cfg.MaxSessionMinutes) * time.Minute
			if cfg.MaxSessionMinutes > 0 && now.Sub(prev.LastActivity) < gap {
				state.StartedAt = prev.StartedAt
			}
		}
	}

	state.LastActivity = now
	data, err := yaml.Marshal(&state)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to marshal session state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return time.Time{}, fmt.Errorf("failed to write session state: %w", err)
	}
	return state.StartedAt, nil
}

func (cm *CacheManager) sessionPath(annotatorID string) string {
	return filepath.Join(cm.cacheDir, "session_"+sanitizeAnnotatorID(annotatorID)+".yaml")
}

// Clear removes the cached index
func (cm *CacheManager) Clear() error {
	err := os.Remove(cm.IndexPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// batchModTime returns the newest modification time among the batch
// location and its JSON records, which changes whenever a record is added,
// removed, or edited.
func batchModTime(batchPath string) (time.Time, error) {
	info, err := os.Stat(batchPath)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat batch %s: %w", batchPath, err)
	}
	newest := info.ModTime()
	if !info.IsDir() {
		return newest, nil
	}
	entries, err := os.ReadDir(batchPath)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read batch %s: %w", batchPath, err)
	}
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(newest) {
			newest = fi.ModTime()
		}
	}
	return newest, nil
}
