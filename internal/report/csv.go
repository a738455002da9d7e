package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/docsift/docsift/internal/reconcile"
)

// RenderCSV produces the downloadable reconciliation result: one row per
// entry with its verdict, plus aggregate rows for numeric runs.
func RenderCSV(res reconcile.Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"entry", "status"}); err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}
	for _, e := range res.Entries {
		if err := w.Write([]string{e.Entry, string(e.Status)}); err != nil {
			return nil, fmt.Errorf("csv write: %w", err)
		}
	}
	if res.Numeric {
		rows := [][]string{
			{"matched_total", strconv.FormatFloat(res.MatchedTotal, 'f', 2, 64)},
			{"grand_total", strconv.FormatFloat(res.GrandTotal, 'f', 2, 64)},
		}
		for _, row := range rows {
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("csv write: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}
	return buf.Bytes(), nil
}
