package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/eval-session/internal"
	"gopkg.in/yaml.v3"
)

func sampleReport() *internal.Report {
	return &internal.Report{
		AnnotatorID: "alice",
		BatchPath:   "/data/batch_1",
		GeneratedAt: time.Date(2026, 8, 25, 14, 0, 0, 0, time.UTC),
		Rows: []internal.ReportRow{
			{
				ConversationID: "conv_001",
				SeedPhrase:     "find lunch",
				Scores: map[internal.Dimension]int{
					internal.DimInstructionAdherence: 2,
					internal.DimSafetyCompliance:     1,
				},
				Note:              "clean run",
				TargetStatus:      map[string]internal.TargetStatus{"abc123def456": internal.StatusComplete},
				TargetsCompleted:  1,
				TargetsIntroduced: 1,
				OverallScore:      0.875,
				PassFail:          "PASS",
			},
			{
				ConversationID: "conv_002",
				Scores: map[internal.Dimension]int{
					internal.DimPlanCoherence: 0,
				},
				TargetStatus:      map[string]internal.TargetStatus{"0011aabbccdd": internal.StatusIncomplete},
				TargetsCompleted:  0,
				TargetsIntroduced: 1,
				OverallScore:      0.0,
				PassFail:          "FAIL",
			},
		},
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{format: "json", wantExt: "json"},
		{format: "jsonl", wantExt: "jsonl"},
		{format: "yaml", wantExt: "yaml"},
		{format: "md", wantExt: "md"},
		{format: "markdown", wantExt: "md"},
		{format: "xml", wantErr: true},
		{format: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			e, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewExporter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if e.Extension() != tt.wantExt {
				t.Errorf("Extension() = %s, want %s", e.Extension(), tt.wantExt)
			}
		})
	}
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleReport(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded internal.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.AnnotatorID != "alice" {
		t.Errorf("AnnotatorID = %q", decoded.AnnotatorID)
	}
	if len(decoded.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(decoded.Rows))
	}
	if decoded.Rows[0].PassFail != "PASS" {
		t.Errorf("first row PassFail = %q", decoded.Rows[0].PassFail)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("JSON output is not indented")
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("JSON output does not end with a newline")
	}
}

func TestJSONLExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(sampleReport(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var rows []internal.ReportRow
	for scanner.Scan() {
		var row internal.ReportRow
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		rows = append(rows, row)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d lines, want 2", len(rows))
	}
	if rows[1].ConversationID != "conv_002" {
		t.Errorf("second line conversation = %q", rows[1].ConversationID)
	}
}

func TestYAMLExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleReport(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded internal.Report
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.BatchPath != "/data/batch_1" {
		t.Errorf("BatchPath = %q", decoded.BatchPath)
	}
	if decoded.Rows[0].Note != "clean run" {
		t.Errorf("Note = %q", decoded.Rows[0].Note)
	}
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleReport(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Ratings for /data/batch_1",
		"**Annotator:** alice",
		"| conv_001 |",
		"| conv_002 |",
		"PASS",
		"FAIL",
		"## Notes",
		"**conv_001:** clean run",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
	// Unset dimensions render as a dash, not a zero.
	if !strings.Contains(out, " - |") {
		t.Error("markdown output does not mark unset dimensions with a dash")
	}
}

func TestMarkdownExporter_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	report := &internal.Report{AnnotatorID: "alice", BatchPath: "/data/batch_1"}
	if err := (&MarkdownExporter{}).Export(report, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "|") {
		t.Error("empty report rendered a table")
	}
	if !strings.Contains(out, "**Rated conversations:** 0") {
		t.Error("empty report missing the zero count")
	}
}
