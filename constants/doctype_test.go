package constants

import "testing"

func TestClassifyText(t *testing.T) {
	cases := []struct {
		name string
		text string
		want DocType
	}{
		{"bank markers", "Closing balance for account 1234", BankStatement},
		{"receipt markers", "Subtotal 100.00\nVAT 15.00\nTotal 115.00", Receipt},
		{"invoice markers", "Invoice #42 payment due 30 days", Invoice},
		{"no markers", "quarterly newsletter", Unknown},
		{"case insensitive", "TOTAL 99.00", Receipt},
		// "account" outranks "total" even when both appear
		{"priority order", "Account summary\nTotal 99.00", BankStatement},
	}
	for _, c := range cases {
		if got := ClassifyText(c.text); got != c.want {
			t.Errorf("%s: ClassifyText(%q) = %v, want %v", c.name, c.text, got, c.want)
		}
	}
}

func TestMapExtToFormat(t *testing.T) {
	cases := []struct {
		ext  string
		want string
	}{
		{".pdf", PDF},
		{".PDF", PDF},
		{".jpg", IMAGE},
		{".tiff", IMAGE},
		{".docx", ""},
	}
	for _, c := range cases {
		if got := MapExtToFormat(c.ext); got != c.want {
			t.Errorf("MapExtToFormat(%q) = %q, want %q", c.ext, got, c.want)
		}
	}
}
