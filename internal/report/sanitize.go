package report

import "strings"

const maxCellRunes = 100

var transliterations = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "-",
	"…", "...",
	"€", "EUR ",
	" ", " ",
)

// sanitizeCell prepares a value for the PDF renderer, whose core fonts
// only cover latin-1: known punctuation is transliterated, anything else
// outside latin-1 is dropped, and long values are truncated.
func sanitizeCell(s string) string {
	s = transliterations.Replace(s)
	var b strings.Builder
	for _, r := range s {
		if r <= 0xFF {
			b.WriteRune(r)
		}
	}
	out := b.String()
	runes := []rune(out)
	if len(runes) > maxCellRunes {
		out = string(runes[:maxCellRunes-3]) + "..."
	}
	return out
}
