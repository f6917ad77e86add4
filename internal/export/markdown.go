package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/eval-session/internal"
)

// MarkdownExporter exports reports in Markdown format
type MarkdownExporter struct{}

// Export exports a report to Markdown format
func (e *MarkdownExporter) Export(report *internal.Report, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Ratings for %s\n\n", report.BatchPath)
	_, _ = fmt.Fprintf(w, "**Annotator:** %s  \n", report.AnnotatorID)
	_, _ = fmt.Fprintf(w, "**Generated:** %s  \n", report.GeneratedAt.Format("2006-01-02 15:04"))
	_, _ = fmt.Fprintf(w, "**Rated conversations:** %d\n\n", len(report.Rows))

	if len(report.Rows) == 0 {
		return nil
	}

	_, _ = fmt.Fprintf(w, "| Conversation | %s | Targets | Score | Verdict |\n", dimensionHeader())
	_, _ = fmt.Fprintf(w, "|---|%s|---|---|---|\n", strings.Repeat("---|", len(internal.Dimensions)-1)+"---")

	for _, row := range report.Rows {
		var dims []string
		for _, d := range internal.Dimensions {
			if v, ok := row.Scores[d.Key]; ok {
				dims = append(dims, fmt.Sprintf("%d", v))
			} else {
				dims = append(dims, "-")
			}
		}
		_, _ = fmt.Fprintf(w, "| %s | %s | %d/%d | %.3f | %s |\n",
			row.ConversationID,
			strings.Join(dims, " | "),
			row.TargetsCompleted, row.TargetsIntroduced,
			row.OverallScore, row.PassFail)
	}

	// Notes follow the table so they can hold free text of any length.
	wroteHeader := false
	for _, row := range report.Rows {
		if row.Note == "" {
			continue
		}
		if !wroteHeader {
			_, _ = fmt.Fprintf(w, "\n## Notes\n\n")
			wroteHeader = true
		}
		_, _ = fmt.Fprintf(w, "**%s:** %s\n\n", row.ConversationID, row.Note)
	}
	return nil
}

func dimensionHeader() string {
	parts := make([]string, 0, len(internal.Dimensions))
	for _, d := range internal.Dimensions {
		parts = append(parts, shortName(d.Name))
	}
	return strings.Join(parts, " | ")
}

// shortName abbreviates a dimension name to its initials for table headers
func shortName(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r := []rune(word)
		if len(r) > 0 && (r[0] >= 'A' && r[0] <= 'Z') {
			b.WriteRune(r[0])
		}
	}
	if b.Len() == 0 {
		return name
	}
	return b.String()
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
