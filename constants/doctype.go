package constants

import (
	"strings"
)

// DocType is the classification assigned to a scanned document.
type DocType string

const (
	BankStatement DocType = "BankStatement"
	Receipt       DocType = "Receipt"
	Invoice       DocType = "Invoice"
	Unknown       DocType = "Unknown"
)

var allDocTypes = []DocType{
	BankStatement,
	Receipt,
	Invoice,
	Unknown,
}

func DocTypesAsStringSlice() []string {
	result := make([]string, len(allDocTypes))
	for i, dt := range allDocTypes {
		result[i] = string(dt)
	}
	return result
}

// docTypeMarkers are checked in order; the first type with any marker
// present in the text wins. Order matters: bank statements mention totals
// too, so they are checked before receipts.
var docTypeMarkers = []struct {
	docType DocType
	markers []string
}{
	{BankStatement, []string{"account", "balance"}},
	{Receipt, []string{"vat", "total"}},
	{Invoice, []string{"invoice", "due"}},
}

// ClassifyText assigns a DocType by substring membership over the whole
// text. Categories are mutually exclusive by check order, not by evidence
// strength.
func ClassifyText(text string) DocType {
	lower := strings.ToLower(text)
	for _, c := range docTypeMarkers {
		for _, m := range c.markers {
			if strings.Contains(lower, m) {
				return c.docType
			}
		}
	}
	return Unknown
}
