package fields

import (
	"github.com/docsift/docsift/constants"
)

// Grammar names the value shape searched for once a label line is found.
type Grammar string

const (
	GrammarAmount        Grammar = "amount"
	GrammarAccountNumber Grammar = "account-number"
	GrammarInteger       Grammar = "integer"
	GrammarDate          Grammar = "date"
)

// Rule is one labeled matcher: scan lines for any synonym, then search the
// anchor line (or the next one) for a token of the rule's grammar.
type Rule struct {
	Field    string
	Synonyms []string
	Exclude  []string // skip anchor lines containing any of these
	Grammar  Grammar
}

// Profile is the declarative extraction table for one document type.
// Per-field strategies are toggled by leaving the field name empty.
type Profile struct {
	Name         string
	DocType      constants.DocType
	CompanyField string   // letterhead heuristic target
	KnownNames   []string // brand pre-pass before the letterhead heuristic
	DateField    string
	ItemsField   string
	Rules        []Rule

	// ColumnLayout marks documents with tabular text (bank statements);
	// the OCR engine reads those in column mode rather than block mode.
	ColumnLayout bool

	// When the VAT rule finds nothing, VAT can be derived as
	// Total - Subtotal (only when Total > Subtotal).
	DeriveVAT     bool
	VATField      string
	SubtotalField string
	TotalField    string
}

// FieldNames returns every field the profile can populate, in declaration
// order: company, date, rules, items.
func (p Profile) FieldNames() []string {
	var names []string
	add := func(n string) {
		if n == "" {
			return
		}
		for _, have := range names {
			if have == n {
				return
			}
		}
		names = append(names, n)
	}
	add(p.CompanyField)
	add(p.DateField)
	for _, r := range p.Rules {
		add(r.Field)
	}
	add(p.ItemsField)
	return names
}

// Built-in profiles. "excl" is excluded from VAT anchors on purpose:
// "excl. VAT" labels a pre-tax amount, so those lines anchor Subtotal
// instead. See DESIGN.md for the precedence discussion.
var (
	receiptProfile = Profile{
		Name:         "receipt",
		DocType:      constants.Receipt,
		CompanyField: "Company Name",
		KnownNames:   []string{"Woolworths", "Checkers", "Spar", "Shoprite", "Pick n Pay"},
		DateField:    "Date",
		ItemsField:   "Items",
		Rules: []Rule{
			{Field: "Subtotal", Synonyms: []string{"subtotal", "sub total", "excl. vat", "excl vat", "net"}, Grammar: GrammarAmount},
			{Field: "VAT", Synonyms: []string{"vat", "tax", "gst"}, Exclude: []string{"excl"}, Grammar: GrammarAmount},
			{Field: "Total", Synonyms: []string{"total", "grand total", "balance due", "amount due"}, Grammar: GrammarAmount},
		},
		DeriveVAT:     true,
		VATField:      "VAT",
		SubtotalField: "Subtotal",
		TotalField:    "Total",
	}

	bankStatementProfile = Profile{
		Name:         "bank-statement",
		DocType:      constants.BankStatement,
		CompanyField: "Bank Name",
		KnownNames:   []string{"FNB", "Capitec", "Absa", "Standard Bank", "Nedbank"},
		DateField:    "Transaction Date",
		ColumnLayout: true,
		Rules: []Rule{
			{Field: "Account Number", Synonyms: []string{"account number", "account no", "acc no"}, Grammar: GrammarAccountNumber},
			{Field: "Balance", Synonyms: []string{"balance", "closing balance", "available balance"}, Grammar: GrammarAmount},
		},
	}

	invoiceProfile = Profile{
		Name:         "invoice",
		DocType:      constants.Invoice,
		CompanyField: "Company Name",
		DateField:    "Date",
		Rules: []Rule{
			{Field: "Invoice Number", Synonyms: []string{"invoice number", "invoice no", "invoice #"}, Grammar: GrammarInteger},
			{Field: "Due Date", Synonyms: []string{"due date", "payment due"}, Grammar: GrammarDate},
			{Field: "Total Amount", Synonyms: []string{"total", "amount due", "balance due"}, Grammar: GrammarAmount},
		},
	}
)

// ProfileFor returns the built-in profile for a document type. Unknown
// documents get the receipt vocabulary, which covers the generic
// Company Name / Date / Items / Subtotal / VAT / Total field set.
func ProfileFor(dt constants.DocType) Profile {
	switch dt {
	case constants.BankStatement:
		return bankStatementProfile
	case constants.Invoice:
		return invoiceProfile
	default:
		return receiptProfile
	}
}
