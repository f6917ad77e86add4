package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/eval-session/internal"
)

// JSONLExporter writes one JSON object per rated conversation, newline
// separated, so downstream tooling can stream rows without parsing the
// whole file.
type JSONLExporter struct{}

func (e *JSONLExporter) Export(report *internal.Report, w io.Writer) error {
	for _, row := range report.Rows {
		line, err := json.Marshal(row)
		if err != nil {
			return err
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
