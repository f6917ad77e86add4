package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	ratingsSheet  = "Ratings"
	metadataSheet = "Metadata"

	// target status columns carry this prefix followed by the target id
	targetColumnPrefix = "target:"
)

// fixedColumns are the leading columns of the Ratings sheet, in order.
// Target status columns follow, one per target known to the saved ledger.
var fixedColumns = []string{
	"conversation_id",
	"annotator_id",
	"timestamp",
	"seed_phrase",
	"dim_" + string(DimInstructionAdherence),
	"dim_" + string(DimContextAmbiguity),
	"dim_" + string(DimPlanCoherence),
	"dim_" + string(DimSafetyCompliance),
	"note",
	"targets_completed",
	"targets_introduced",
	"overall_score",
	"pass_fail",
}

// PersistedRow is one conversation's saved rating as read back from a
// workbook
type PersistedRow struct {
	ConversationID string
	Scores         map[Dimension]int
	Note           string
	TargetStatus   map[string]TargetStatus
	SeedPhrase     string
	UpdatedAt      time.Time
}

// PersistedSnapshot is the parsed contents of a saved workbook
type PersistedSnapshot struct {
	Path        string
	AnnotatorID string
	BatchPath   string
	SavedAt     time.Time
	Rows        []PersistedRow
}

// WorkbookPath returns the workbook location for an (annotator, batch) key:
// ratings_<annotator>.xlsx next to the batch, with the annotator id
// sanitized for use in a filename.
func WorkbookPath(batchPath, annotatorID string) string {
	dir := batchPath
	if info, err := os.Stat(batchPath); err == nil && !info.IsDir() {
		dir = filepath.Dir(batchPath)
	} else if filepath.Base(batchPath) == "conversations" {
		dir = filepath.Dir(batchPath)
	}
	return filepath.Join(dir, "ratings_"+sanitizeAnnotatorID(annotatorID)+".xlsx")
}

func sanitizeAnnotatorID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "anonymous"
	}
	return b.String()
}

// SaveWorkbook writes the ledger's rated entries for one annotator to the
// workbook for (annotator, batch), fully overwriting any previous save. The
// write goes to a temp file first and is renamed into place, so a crash
// mid-write never leaves a workbook that LoadWorkbook cannot parse.
func SaveWorkbook(ledger *RatingLedger, annotatorID, batchPath string, store *ConversationStore, cfg *Config) (string, error) {
	ratings := ledger.Snapshot()

	// One column per target known to the saved ledger, in sorted id order.
	targetIDs := map[string]bool{}
	for _, r := range ratings {
		if r.AnnotatorID != annotatorID {
			continue
		}
		for id := range r.TargetStatus {
			targetIDs[id] = true
		}
	}
	sortedTargets := make([]string, 0, len(targetIDs))
	for id := range targetIDs {
		sortedTargets = append(sortedTargets, id)
	}
	sort.Strings(sortedTargets)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", ratingsSheet); err != nil {
		return "", fmt.Errorf("failed to set up workbook: %w", err)
	}

	header := append(append([]string{}, fixedColumns...), prefixTargets(sortedTargets)...)
	if err := writeRow(f, ratingsSheet, 1, toCells(header)); err != nil {
		return "", err
	}

	rowNum := 2
	rated := 0
	for _, r := range ratings {
		if r.AnnotatorID != annotatorID {
			continue
		}
		seed := ""
		if conv, ok := store.Get(r.ConversationID); ok {
			seed = conv.SeedPhrase
		}
		completed, introduced := r.TargetCounts()
		overall := ComputeOverallScore(r, cfg)

		cells := []interface{}{
			r.ConversationID,
			r.AnnotatorID,
			r.UpdatedAt.Format(time.RFC3339),
			seed,
		}
		for _, dim := range DimensionKeys() {
			if v, ok := r.Scores[dim]; ok {
				cells = append(cells, v)
			} else {
				cells = append(cells, nil)
			}
		}
		cells = append(cells, r.Note, completed, introduced, overall, PassFailLabel(overall, cfg))
		for _, id := range sortedTargets {
			if status, ok := r.TargetStatus[id]; ok {
				cells = append(cells, int(status))
			} else {
				cells = append(cells, nil)
			}
		}
		if err := writeRow(f, ratingsSheet, rowNum, cells); err != nil {
			return "", err
		}
		rowNum++
		rated++
	}

	if err := writeMetadata(f, annotatorID, batchPath, store.Len(), rated, cfg); err != nil {
		return "", err
	}

	path := WorkbookPath(batchPath, annotatorID)
	// excelize refuses to save under a non-xlsx extension, so the temp file
	// keeps the suffix and the rename strips it.
	tmp := path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return "", fmt.Errorf("failed to write workbook %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to replace workbook %s: %w", path, err)
	}

	LogInfo("Saved %d rating(s) to %s", rated, path)
	return path, nil
}

func prefixTargets(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = targetColumnPrefix + id
	}
	return out
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write workbook row %d: %w", row, err)
	}
	return nil
}

func writeMetadata(f *excelize.File, annotatorID, batchPath string, total, rated int, cfg *Config) error {
	if _, err := f.NewSheet(metadataSheet); err != nil {
		return fmt.Errorf("failed to create metadata sheet: %w", err)
	}
	weights, err := json.Marshal(cfg.DimensionWeights)
	if err != nil {
		return fmt.Errorf("failed to encode dimension weights: %w", err)
	}
	header := toCells([]string{
		"saved_at", "annotator_id", "batch_path",
		"total_conversations", "total_rated",
		"pass_threshold", "target_weight", "dimension_weights",
	})
	values := []interface{}{
		time.Now().Format(time.RFC3339),
		annotatorID,
		batchPath,
		total,
		rated,
		cfg.PassThreshold,
		cfg.TargetWeight,
		string(weights),
	}
	if err := writeRow(f, metadataSheet, 1, header); err != nil {
		return err
	}
	return writeRow(f, metadataSheet, 2, values)
}

// LoadWorkbook reads the saved workbook for an (annotator, batch) key.
// Returns ErrSnapshotNotFound when no workbook exists, and a
// *CorruptSnapshotError when one exists but cannot be parsed back into the
// expected schema. The two cases matter to callers: the first means a fresh
// session, the second means saved work is at risk.
func LoadWorkbook(batchPath, annotatorID string) (*PersistedSnapshot, error) {
	path := WorkbookPath(batchPath, annotatorID)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to stat workbook %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &CorruptSnapshotError{Path: path, Reason: "cannot open workbook", Err: err}
	}
	defer f.Close()

	snapshot := &PersistedSnapshot{Path: path}
	if err := readMetadata(f, snapshot); err != nil {
		return nil, err
	}
	if err := readRatings(f, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func readMetadata(f *excelize.File, snapshot *PersistedSnapshot) error {
	rows, err := f.GetRows(metadataSheet)
	if err != nil {
		return &CorruptSnapshotError{Path: snapshot.Path, Reason: "missing metadata sheet", Err: err}
	}
	if len(rows) < 2 {
		return &CorruptSnapshotError{Path: snapshot.Path, Reason: "metadata sheet has no data row"}
	}
	header, values := rows[0], rows[1]
	for i, name := range header {
		if i >= len(values) {
			break
		}
		switch name {
		case "annotator_id":
			snapshot.AnnotatorID = values[i]
		case "batch_path":
			snapshot.BatchPath = values[i]
		case "saved_at":
			if t, err := time.Parse(time.RFC3339, values[i]); err == nil {
				snapshot.SavedAt = t
			}
		}
	}
	if snapshot.AnnotatorID == "" {
		return &CorruptSnapshotError{Path: snapshot.Path, Reason: "metadata sheet missing annotator_id"}
	}
	return nil
}

func readRatings(f *excelize.File, snapshot *PersistedSnapshot) error {
	rows, err := f.GetRows(ratingsSheet)
	if err != nil {
		return &CorruptSnapshotError{Path: snapshot.Path, Reason: "missing ratings sheet", Err: err}
	}
	if len(rows) == 0 {
		return &CorruptSnapshotError{Path: snapshot.Path, Reason: "ratings sheet has no header"}
	}

	header := rows[0]
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}
	for _, required := range []string{"conversation_id", "annotator_id"} {
		if _, ok := colIndex[required]; !ok {
			return &CorruptSnapshotError{Path: snapshot.Path, Reason: "ratings sheet missing column " + required}
		}
	}

	for rowNum, row := range rows[1:] {
		// Free-text cells (note, seed phrase) come back verbatim; only the
		// cells that get parsed are trimmed.
		get := func(name string) string {
			i, ok := colIndex[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		convID := strings.TrimSpace(get("conversation_id"))
		if convID == "" {
			return &CorruptSnapshotError{
				Path:   snapshot.Path,
				Reason: fmt.Sprintf("row %d has no conversation_id", rowNum+2),
			}
		}

		pr := PersistedRow{
			ConversationID: convID,
			Scores:         make(map[Dimension]int),
			Note:           get("note"),
			TargetStatus:   make(map[string]TargetStatus),
			SeedPhrase:     get("seed_phrase"),
		}
		if ts := strings.TrimSpace(get("timestamp")); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				pr.UpdatedAt = t
			}
		}

		for _, dim := range DimensionKeys() {
			raw := strings.TrimSpace(get("dim_" + string(dim)))
			if raw == "" {
				continue
			}
			v, err := strconv.Atoi(raw)
			if err != nil || !ValidScore(v) {
				return &CorruptSnapshotError{
					Path:   snapshot.Path,
					Reason: fmt.Sprintf("conversation %s: bad score %q for %s", convID, raw, dim),
				}
			}
			pr.Scores[dim] = v
		}

		for name, i := range colIndex {
			if !strings.HasPrefix(name, targetColumnPrefix) || i >= len(row) {
				continue
			}
			raw := strings.TrimSpace(row[i])
			if raw == "" {
				continue
			}
			v, err := strconv.Atoi(raw)
			if err != nil || !ValidTargetStatus(v) {
				return &CorruptSnapshotError{
					Path:   snapshot.Path,
					Reason: fmt.Sprintf("conversation %s: bad status %q for %s", convID, raw, name),
				}
			}
			pr.TargetStatus[strings.TrimPrefix(name, targetColumnPrefix)] = TargetStatus(v)
		}

		snapshot.Rows = append(snapshot.Rows, pr)
	}
	return nil
}
