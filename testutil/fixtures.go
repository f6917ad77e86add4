package testutil

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// TargetSpec describes one target in a conversation record fixture
type TargetSpec struct {
	Description    string
	Constraint     string
	IntroducedTurn int
	Refines        []string
}

// ConversationRecord builds the raw JSON for one conversation log record
func ConversationRecord(t *testing.T, id, seedPhrase string, targets []TargetSpec) []byte {
	t.Helper()
	targetMap := map[string]interface{}{}
	for _, spec := range targets {
		entry := map[string]interface{}{
			"introduced_turn": spec.IntroducedTurn,
		}
		if spec.Constraint != "" {
			entry["constraint"] = spec.Constraint
		}
		if len(spec.Refines) > 0 {
			entry["refines"] = spec.Refines
		}
		targetMap[spec.Description] = entry
	}

	record := map[string]interface{}{
		"conversation_id": id,
		"seed_phrase":     seedPhrase,
		"turns": []map[string]interface{}{
			{"turn_number": 0, "user": "Find me an Indian restaurant", "system": "Indian Village Restaurant is nearby."},
			{"turn_number": 1, "user": "Navigate there", "system": "Starting navigation."},
		},
		"targets": targetMap,
		"metadata": map[string]interface{}{
			"persona_name": "Commuter",
		},
	}
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Failed to marshal conversation record: %v", err)
	}
	return data
}

// CreateBatchFixture writes conversation records into a batch folder and
// returns its path
func CreateBatchFixture(t *testing.T, dir string, records map[string][]byte) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create batch folder: %v", err)
	}
	for id, data := range records {
		path := filepath.Join(dir, id+".json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("Failed to write record %s: %v", path, err)
		}
	}
	return dir
}

// CreateArchiveFixture packages conversation records into a SQLite batch
// archive at dbPath
func CreateArchiveFixture(t *testing.T, dbPath string, records map[string][]byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create archive directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	defer func() { _ = db.Close() }()

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS batchkv (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create batchkv table: %v", err)
	}

	insertSQL := "INSERT INTO batchkv (key, value) VALUES (?, ?)"
	for id, data := range records {
		key := fmt.Sprintf("conversation:%s", id)
		if _, err := db.Exec(insertSQL, key, string(data)); err != nil {
			t.Fatalf("Failed to insert record %s: %v", key, err)
		}
	}
}
