package export

import (
	"io"

	"github.com/iksnae/eval-session/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter renders the report as a YAML document with two-space
// indentation.
type YAMLExporter struct{}

func (e *YAMLExporter) Export(report *internal.Report, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}
