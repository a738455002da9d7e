// Package reconcile compares two extracted collections entry by entry.
// Matching is unconditional exact equality: no fuzziness, no tolerance
// window, and matched entries are never consumed, so one statement line
// can satisfy any number of slip entries.
package reconcile

import (
	"strconv"
	"strings"

	"github.com/docsift/docsift/internal/fields"
)

// Status is the per-entry verdict.
type Status string

const (
	MatchFound Status = "MatchFound"
	NoMatch    Status = "NoMatch"
)

// Entry is one reconciled item from the source collection.
type Entry struct {
	Entry  string
	Amount float64
	Status Status
}

// Result holds the ordered verdicts plus aggregates for numeric runs.
type Result struct {
	Entries      []Entry
	Numeric      bool
	MatchedCount int
	MatchedTotal float64 // meaningful only when Numeric
	GrandTotal   float64 // meaningful only when Numeric
}

// Lines reconciles raw text lines. Comparison is on trimmed content;
// blank source lines are skipped.
func Lines(src, against []string) Result {
	have := make(map[string]struct{}, len(against))
	for _, ln := range against {
		have[strings.TrimSpace(ln)] = struct{}{}
	}

	var res Result
	for _, ln := range src {
		trimmed := strings.TrimSpace(ln)
		if trimmed == "" {
			continue
		}
		status := NoMatch
		if _, ok := have[trimmed]; ok {
			status = MatchFound
			res.MatchedCount++
		}
		res.Entries = append(res.Entries, Entry{Entry: trimmed, Status: status})
	}
	return res
}

// Amounts reconciles parsed numeric amounts and reports matched and grand
// totals over the source collection.
func Amounts(src, against []float64) Result {
	have := make(map[float64]struct{}, len(against))
	for _, v := range against {
		have[v] = struct{}{}
	}

	res := Result{Numeric: true}
	for _, v := range src {
		status := NoMatch
		if _, ok := have[v]; ok {
			status = MatchFound
			res.MatchedCount++
			res.MatchedTotal += v
		}
		res.GrandTotal += v
		res.Entries = append(res.Entries, Entry{
			Entry:  strconv.FormatFloat(v, 'f', 2, 64),
			Amount: v,
			Status: status,
		})
	}
	return res
}

// FieldSets reconciles two extracted field mappings key by key over the
// first set's declaration order. A field matches when the second set
// renders the identical value for the same key.
func FieldSets(a, b *fields.FieldSet) Result {
	var res Result
	for _, name := range a.Names() {
		status := NoMatch
		if b.Has(name) && a.Get(name).String() == b.Get(name).String() {
			status = MatchFound
			res.MatchedCount++
		}
		res.Entries = append(res.Entries, Entry{
			Entry:  name + ": " + a.Get(name).String(),
			Status: status,
		})
	}
	return res
}
