package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/docsift/docsift/internal/fields"
	"github.com/docsift/docsift/internal/reconcile"
)

func sampleFieldSet() *fields.FieldSet {
	fs := fields.NewFieldSet("Company Name", "Date", "Total", "Items")
	fs.Set("Company Name", fields.Found("Woolworths"))
	fs.Set("Date", fields.FoundDates([]string{"12/05/2023"}))
	fs.Set("Total", fields.FoundAmount(115.00))
	price := 45.50
	fs.Set("Items", fields.FoundItems([]fields.Item{{Name: "Bread and Milk", Price: &price}}))
	return fs
}

func TestRenderPDF_ProducesDocument(t *testing.T) {
	data, err := RenderPDF(sampleFieldSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output does not look like a PDF")
	}
}

func TestRenderPDF_AccentedText(t *testing.T) {
	fs := fields.NewFieldSet("Company Name")
	fs.Set("Company Name", fields.Found("Café Touché"))

	data, err := RenderPDF(fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output does not look like a PDF")
	}
}

func TestRenderXLSX_FieldRowsAndItemsSubTable(t *testing.T) {
	data, err := RenderXLSX(sampleFieldSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Extracted")
	if err != nil {
		t.Fatalf("reading sheet: %v", err)
	}
	if len(rows) == 0 || rows[0][0] != "Field" || rows[0][1] != "Value" {
		t.Fatalf("missing header row: %v", rows)
	}

	flat := make(map[string]string)
	for _, row := range rows {
		if len(row) >= 2 {
			flat[row[0]] = row[1]
		}
	}
	if flat["Company Name"] != "Woolworths" {
		t.Errorf("Company Name = %q", flat["Company Name"])
	}
	if flat["Total"] != "115.00" {
		t.Errorf("Total = %q", flat["Total"])
	}
	if flat["Bread and Milk"] != "45.5" {
		t.Errorf("item price row = %q", flat["Bread and Milk"])
	}
}

func TestRenderCSV_EntriesAndAggregates(t *testing.T) {
	res := reconcile.Amounts([]float64{45.00, 20.00}, []float64{45.00})
	data, err := RenderCSV(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	want := [][]string{
		{"entry", "status"},
		{"45.00", "MatchFound"},
		{"20.00", "NoMatch"},
		{"matched_total", "45.00"},
		{"grand_total", "65.00"},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(records), records)
	}
	for i := range want {
		if records[i][0] != want[i][0] || records[i][1] != want[i][1] {
			t.Errorf("row %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestSanitizeCell(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"smart quotes", "it’s “fine”", `it's "fine"`},
		{"euro sign", "€9.99", "EUR 9.99"},
		{"drops wide runes", "caffè ☕ latte", "caffè  latte"},
	}
	for _, c := range cases {
		if got := sanitizeCell(c.in); got != c.want {
			t.Errorf("%s: sanitizeCell(%q) = %q, want %q", c.name, c.in, got, c.want)
		}
	}

	long := strings.Repeat("x", 150)
	got := sanitizeCell(long)
	if len(got) != maxCellRunes {
		t.Errorf("truncated length = %d, want %d", len(got), maxCellRunes)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated value should end with ellipsis dots")
	}
}

func TestWriteArtifact_OverwritesPriorOutput(t *testing.T) {
	dir := t.TempDir()
	if _, err := WriteArtifact(dir, CSVName, []byte("first")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	path, err := WriteArtifact(dir, CSVName, []byte("second"))
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if filepath.Base(path) != CSVName {
		t.Errorf("unexpected artifact name %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("expected last writer to win, got %q", data)
	}
}
