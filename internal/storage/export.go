package storage

import (
	"encoding/json"
	"os"
)

// RunExport is the JSON shape emitted by export commands.
type RunExport struct {
	Meta    RunMetadata `json:"meta"`
	Initial []float64   `json:"initial"`
	Final   []float64   `json:"final"`
}

// ExportJSONStdout streams a full run export to stdout.
func ExportJSONStdout(meta *RunMetadata, initial, final []float64) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(RunExport{Meta: *meta, Initial: initial, Final: final})
}
