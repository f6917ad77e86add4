package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/eval-session/internal"
)

// JSONExporter renders the whole report as a single pretty-printed
// JSON document.
type JSONExporter struct{}

func (e *JSONExporter) Export(report *internal.Report, w io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func (e *JSONExporter) Extension() string {
	return "json"
}
