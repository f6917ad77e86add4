package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/iksnae/eval-session/testutil"
)

func threeRecordBatch(t *testing.T) map[string][]byte {
	t.Helper()
	return map[string][]byte{
		"conv_001": testutil.ConversationRecord(t, "conv_001", "find food", nil),
		"conv_002": testutil.ConversationRecord(t, "conv_002", "get home", []testutil.TargetSpec{
			{Description: "navigate home", IntroducedTurn: 0},
		}),
		"conv_003": testutil.ConversationRecord(t, "conv_003", "play music", nil),
	}
}

func TestLoadStoreFromFolder(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.CreateBatchFixture(t, dir, threeRecordBatch(t))

	store, err := LoadStoreFromFolder(dir)
	if err != nil {
		t.Fatalf("LoadStoreFromFolder() error = %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", store.Len())
	}

	// Filename order, not directory order.
	want := []string{"conv_001", "conv_002", "conv_003"}
	for i, conv := range store.Conversations() {
		if conv.ID != want[i] {
			t.Errorf("conversation %d = %s, want %s", i, conv.ID, want[i])
		}
	}

	if _, ok := store.Get("conv_002"); !ok {
		t.Error("Get(conv_002) not found")
	}
	if _, ok := store.Get("conv_099"); ok {
		t.Error("Get(conv_099) unexpectedly found")
	}
}

func TestLoadStoreFromFolder_NestedConversationsDir(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	nested := filepath.Join(dir, "conversations")
	testutil.CreateBatchFixture(t, nested, threeRecordBatch(t))

	store, err := LoadStoreFromFolder(dir)
	if err != nil {
		t.Fatalf("LoadStoreFromFolder() error = %v", err)
	}
	if store.Len() != 3 {
		t.Errorf("Len() = %d, want 3", store.Len())
	}
	if store.BatchPath != nested {
		t.Errorf("BatchPath = %s, want the nested conversations dir", store.BatchPath)
	}
}

func TestLoadStoreFromFolder_IgnoresNonJSON(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.CreateBatchFixture(t, dir, threeRecordBatch(t))
	testutil.WriteFile(t, dir, "README.txt", []byte("not a record"))
	testutil.WriteFile(t, dir, "notes.yaml", []byte("also: not"))

	store, err := LoadStoreFromFolder(dir)
	if err != nil {
		t.Fatalf("LoadStoreFromFolder() error = %v", err)
	}
	if store.Len() != 3 {
		t.Errorf("Len() = %d, want 3", store.Len())
	}
}

func TestLoadStoreFromFolder_MalformedRecordAbortsLoad(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.CreateBatchFixture(t, dir, threeRecordBatch(t))
	testutil.WriteFile(t, dir, "conv_000.json", []byte("{not json"))

	_, err := LoadStoreFromFolder(dir)
	var malformed *MalformedConversationError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want *MalformedConversationError", err)
	}
}

func TestLoadStoreFromFolder_DuplicateIDRejected(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	record := testutil.ConversationRecord(t, "conv_dup", "seed", nil)
	testutil.CreateBatchFixture(t, dir, map[string][]byte{
		"a_first":  record,
		"b_second": record,
	})

	_, err := LoadStoreFromFolder(dir)
	var malformed *MalformedConversationError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want *MalformedConversationError", err)
	}
	if malformed.ID != "conv_dup" {
		t.Errorf("error names id %q, want conv_dup", malformed.ID)
	}
}

func TestLoadStoreFromFolder_Missing(t *testing.T) {
	if _, err := LoadStoreFromFolder("/nonexistent/batch"); err == nil {
		t.Error("expected error for missing folder")
	}
}

func TestLoadStoreFromArchive(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	dbPath := filepath.Join(dir, "batch.db")
	testutil.CreateArchiveFixture(t, dbPath, threeRecordBatch(t))

	store, err := LoadStoreFromArchive(dbPath)
	if err != nil {
		t.Fatalf("LoadStoreFromArchive() error = %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", store.Len())
	}
	// Keys are read in sorted order, matching the folder loader.
	want := []string{"conv_001", "conv_002", "conv_003"}
	for i, conv := range store.Conversations() {
		if conv.ID != want[i] {
			t.Errorf("conversation %d = %s, want %s", i, conv.ID, want[i])
		}
	}
}

func TestLoadStore_FolderAndArchiveAgree(t *testing.T) {
	records := threeRecordBatch(t)

	folderDir := testutil.CreateTempDir(t)
	testutil.CreateBatchFixture(t, folderDir, records)

	archiveDir := testutil.CreateTempDir(t)
	dbPath := filepath.Join(archiveDir, "batch.db")
	testutil.CreateArchiveFixture(t, dbPath, records)

	fromFolder, err := LoadStore(folderDir)
	if err != nil {
		t.Fatalf("LoadStore(folder) error = %v", err)
	}
	fromArchive, err := LoadStore(dbPath)
	if err != nil {
		t.Fatalf("LoadStore(archive) error = %v", err)
	}

	if fromFolder.Len() != fromArchive.Len() {
		t.Fatalf("batch sizes differ: folder %d, archive %d", fromFolder.Len(), fromArchive.Len())
	}

	// Same source records yield identical target ids either way.
	regFolder := NewTargetRegistry()
	regArchive := NewTargetRegistry()
	for i, conv := range fromFolder.Conversations() {
		setF, err := regFolder.Derive(conv)
		if err != nil {
			t.Fatalf("Derive(folder %s) error = %v", conv.ID, err)
		}
		setA, err := regArchive.Derive(fromArchive.Conversations()[i])
		if err != nil {
			t.Fatalf("Derive(archive %s) error = %v", conv.ID, err)
		}
		fIDs, aIDs := setF.IDs(), setA.IDs()
		if len(fIDs) != len(aIDs) {
			t.Fatalf("target counts differ for %s", conv.ID)
		}
		for j := range fIDs {
			if fIDs[j] != aIDs[j] {
				t.Errorf("target id %d differs for %s: %s vs %s", j, conv.ID, fIDs[j], aIDs[j])
			}
		}
	}
}

func TestDiscoverBatchFolders(t *testing.T) {
	tests := []struct {
		name    string
		layout  []string // subdirectories to create
		num     int
		want    int
		wantDir string // expected first discovered dir, relative to base
	}{
		{name: "underscore layout", layout: []string{"batch_1", "batch_2"}, num: 2, want: 2, wantDir: "batch_1"},
		{name: "compact layout", layout: []string{"batch1"}, num: 1, want: 1, wantDir: "batch1"},
		{name: "folder layout", layout: []string{"folder_1"}, num: 1, want: 1, wantDir: "folder_1"},
		{name: "numeric layout", layout: []string{"1", "2", "3"}, num: 3, want: 3, wantDir: "1"},
		{name: "no subfolders falls back to base", layout: nil, num: 2, want: 1, wantDir: ""},
		{name: "partial layout", layout: []string{"batch_1"}, num: 3, want: 1, wantDir: "batch_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := testutil.CreateTempDir(t)
			for _, sub := range tt.layout {
				if err := os.MkdirAll(filepath.Join(base, sub), 0755); err != nil {
					t.Fatalf("mkdir: %v", err)
				}
			}
			found := DiscoverBatchFolders(base, tt.num)
			if len(found) != tt.want {
				t.Fatalf("found %d folder(s), want %d", len(found), tt.want)
			}
			if found[0] != filepath.Join(base, tt.wantDir) {
				t.Errorf("first folder = %s, want %s", found[0], filepath.Join(base, tt.wantDir))
			}
		})
	}
}
