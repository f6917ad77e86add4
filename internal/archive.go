package internal

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Batch archives are single SQLite files packaging a batch of conversation
// records in a key/value table:
//
//	CREATE TABLE batchkv (key TEXT PRIMARY KEY, value TEXT)
//
// with keys "conversation:<id>" and JSON record values.
const archiveKeyPrefix = "conversation:"

// OpenArchive opens a batch archive in read-only mode
func OpenArchive(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive ping failed: %w", err)
	}
	return db, nil
}

// QueryArchiveKV queries the batchkv table with a LIKE pattern
func QueryArchiveKV(db *sql.DB, pattern string) ([]KeyValuePair, error) {
	query := "SELECT key, value FROM batchkv WHERE key LIKE ? AND value IS NOT NULL ORDER BY key"
	rows, err := db.Query(query, pattern)
	if err != nil {
		return nil, fmt.Errorf("archive query failed: %w", err)
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		var value sql.NullString
		if err := rows.Scan(&pair.Key, &value); err != nil {
			return nil, fmt.Errorf("archive scan failed: %w", err)
		}
		if value.Valid {
			pair.Value = value.String
			pairs = append(pairs, pair)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive rows iteration error: %w", err)
	}
	return pairs, nil
}

// KeyValuePair represents a key-value pair from a batch archive
type KeyValuePair struct {
	Key   string
	Value string
}

// LoadStoreFromArchive loads a batch from a SQLite archive. Records come
// back in key order, so load order is deterministic across processes.
func LoadStoreFromArchive(path string) (*ConversationStore, error) {
	db, err := OpenArchive(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	pairs, err := QueryArchiveKV(db, archiveKeyPrefix+"%")
	if err != nil {
		return nil, err
	}

	store := newStore(path)
	for _, pair := range pairs {
		source := path + "#" + pair.Key
		conv, err := ParseConversationRecord(source, []byte(pair.Value))
		if err != nil {
			return nil, err
		}
		// The key suffix and record id must agree, otherwise saved statuses
		// keyed by id could attach to the wrong record.
		if keyID := strings.TrimPrefix(pair.Key, archiveKeyPrefix); keyID != conv.ID {
			return nil, &MalformedConversationError{
				Source: source,
				ID:     conv.ID,
				Reason: fmt.Sprintf("archive key names conversation %q but record says %q", keyID, conv.ID),
			}
		}
		if err := store.add(source, conv); err != nil {
			return nil, err
		}
	}

	LogDebug("Loaded %d conversation(s) from archive %s", store.Len(), path)
	return store, nil
}
