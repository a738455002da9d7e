// Package report serializes extraction and reconciliation results into
// downloadable artifacts: a tabular PDF, an XLSX workbook and a CSV.
// Renderers return bytes; writing to disk is a separate, explicit step.
package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// Fixed artifact names. Each run overwrites the previous file of the same
// name; callers must not assume the output survives a concurrent run.
const (
	PDFName  = "extracted_data.pdf"
	XLSXName = "extracted_data.xlsx"
	CSVName  = "reconciliation_results.csv"
)

// WriteArtifact writes an artifact under dir with the given fixed name,
// creating the directory if needed and overwriting any prior output.
func WriteArtifact(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
