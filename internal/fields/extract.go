package fields

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	companyScanLines  = 5   // letterhead heuristic looks this far down
	companyUpperRatio = 0.3 // fraction of uppercase letters that reads as "shouting"
)

var (
	// currency token: optional symbol, digits with optional thousands
	// grouping (comma, period or space), exactly two fraction digits,
	// optional trailing ISO code.
	reAmountToken = regexp.MustCompile(`(?:[$£€R]\s?)?(\d{1,3}(?:[,. ]\d{3})*\.\d{2}|\d+\.\d{2})(?:\s?(?:USD|EUR|GBP|ZAR))?`)

	reAccountNumber = regexp.MustCompile(`\b(\d{4}[- ]\d{4}[- ]\d{4})\b`)
	reInteger       = regexp.MustCompile(`\b(\d+)\b`)

	// item line: non-empty leading text, a separator, a trailing
	// two-decimal amount at end of line.
	reItemLine = regexp.MustCompile(`^(.+?)[ \-:]\s*(\d+\.\d{2})$`)

	// date-shaped patterns in priority order; matches are not validated
	// as real calendar dates.
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),            // numeric D/M/Y
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),                        // ISO Y-M-D
		regexp.MustCompile(`\b\d{1,2} [A-Za-z]{3,9} \d{4}\b`),              // D Month YYYY
		regexp.MustCompile(`\b[A-Za-z]{3,9} \d{1,2}, \d{4}\b`),             // Month D, YYYY
		regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{2,4}\b`),                // dotted D.M.Y
	}
)

type Extractor struct {
	profile Profile
	logger  *slog.Logger
}

func NewExtractor(profile Profile, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{profile: profile, logger: logger}
}

func (e *Extractor) Profile() Profile { return e.profile }

// Extract runs every per-field strategy over the line sequence. Field
// extractions are independent: a failure degrades that one field and
// never aborts the rest. Every configured field is present in the result.
func (e *Extractor) Extract(lines []string) *FieldSet {
	fs := NewFieldSet(e.profile.FieldNames()...)
	text := strings.Join(lines, "\n")

	if f := e.profile.CompanyField; f != "" {
		fs.Set(f, e.guard(f, func() Value {
			return companyName(lines, e.profile.KnownNames)
		}))
	}
	if f := e.profile.DateField; f != "" {
		fs.Set(f, e.guard(f, func() Value {
			return dateMatches(text)
		}))
	}
	for _, rule := range e.profile.Rules {
		rule := rule
		fs.Set(rule.Field, e.guard(rule.Field, func() Value {
			return anchoredSearch(lines, rule)
		}))
	}
	if f := e.profile.ItemsField; f != "" {
		fs.Set(f, e.guard(f, func() Value {
			return itemLines(lines)
		}))
	}
	e.deriveVAT(fs)
	return fs
}

// guard isolates one field strategy: a panic degrades the field to a
// ParseError value instead of propagating.
func (e *Extractor) guard(field string, fn func() Value) (v Value) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("fields.extract.recovered", "field", field, "cause", fmt.Sprint(r))
			v = ParseErrorValue(fmt.Sprint(r))
		}
	}()
	return fn()
}

// anchoredSearch finds the first line containing any synonym of the rule,
// then searches that line and the very next one for a token of the rule's
// grammar. First anchor wins; there is no backtracking to later anchors.
func anchoredSearch(lines []string, rule Rule) Value {
	matchers := make([]*regexp.Regexp, 0, len(rule.Synonyms))
	for _, syn := range rule.Synonyms {
		matchers = append(matchers, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(syn)+`\b`))
	}

scan:
	for i, line := range lines {
		anchored := false
		for _, m := range matchers {
			if m.MatchString(line) {
				anchored = true
				break
			}
		}
		if !anchored {
			continue
		}
		lower := strings.ToLower(line)
		for _, ex := range rule.Exclude {
			if strings.Contains(lower, strings.ToLower(ex)) {
				continue scan
			}
		}
		if v, ok := grammarSearch(line, rule.Grammar); ok {
			return v
		}
		if i+1 < len(lines) {
			if v, ok := grammarSearch(lines[i+1], rule.Grammar); ok {
				return v
			}
		}
		return NotFoundValue()
	}
	return NotFoundValue()
}

func grammarSearch(line string, g Grammar) (Value, bool) {
	switch g {
	case GrammarAccountNumber:
		if m := reAccountNumber.FindStringSubmatch(line); m != nil {
			return Found(m[1]), true
		}
	case GrammarInteger:
		if m := reInteger.FindStringSubmatch(line); m != nil {
			return Found(m[1]), true
		}
	case GrammarDate:
		for _, p := range datePatterns {
			if m := p.FindString(line); m != "" {
				return Found(m), true
			}
		}
	default: // GrammarAmount
		if v, ok := amountToken(line); ok {
			return FoundAmount(v), true
		}
	}
	return Value{}, false
}

// amountToken returns the first currency-shaped token on the line that
// parses cleanly. Tokens that fail to parse are silently discarded.
func amountToken(line string) (float64, bool) {
	for _, m := range reAmountToken.FindAllStringSubmatch(line, -1) {
		if v, err := parseAmount(m[1]); err == nil {
			return v, true
		}
	}
	return 0, false
}

// AmountsInLines returns the first parseable currency token of each line,
// in line order. Lines without a token contribute nothing.
func AmountsInLines(lines []string) []float64 {
	var out []float64
	for _, line := range lines {
		if v, ok := amountToken(line); ok {
			out = append(out, v)
		}
	}
	return out
}

// parseAmount strips grouping separators and coerces to a float. Periods
// are ambiguous (grouping in some locales): every period except the last
// is treated as grouping.
func parseAmount(token string) (float64, error) {
	s := strings.NewReplacer(",", "", " ", "").Replace(token)
	if n := strings.Count(s, "."); n > 1 {
		last := strings.LastIndex(s, ".")
		s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
	}
	return strconv.ParseFloat(s, 64)
}

// companyName tries a known-brand pre-pass, then the letterhead heuristic:
// among the first few lines, the first non-empty one whose uppercase
// fraction reads as shouting. Falls back to the first non-empty line.
func companyName(lines []string, knownNames []string) Value {
	text := strings.Join(lines, "\n")
	for _, name := range knownNames {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
		if re.MatchString(text) {
			// canonical brand spelling, not the OCR casing
			return Found(name)
		}
	}

	limit := companyScanLines
	if limit > len(lines) {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if upperRatio(trimmed) >= companyUpperRatio {
			return Found(trimmed)
		}
	}
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return Found(trimmed)
		}
	}
	return NotFoundValue()
}

// upperRatio is the fraction of alphabetic characters that are uppercase.
func upperRatio(s string) float64 {
	var letters, upper int
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

// dateMatches applies the date patterns in priority order over the whole
// text and returns every distinct match, first-seen order preserved.
func dateMatches(text string) Value {
	var dates []string
	seen := make(map[string]struct{})
	for _, p := range datePatterns {
		for _, m := range p.FindAllString(text, -1) {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			dates = append(dates, m)
		}
	}
	if len(dates) == 0 {
		return NotFoundValue()
	}
	return FoundDates(dates)
}

// itemLines collects every line shaped like "<name> <sep> <dd.dd>". Lines
// not matching the shape are silently skipped.
func itemLines(lines []string) Value {
	var items []Item
	for _, line := range lines {
		m := reItemLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		name := strings.TrimSpace(strings.TrimRight(m[1], " -:"))
		if name == "" {
			continue
		}
		it := Item{Name: name}
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			it.Price = &v
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return NotFoundValue()
	}
	return FoundItems(items)
}

// deriveVAT fills the VAT field from Total - Subtotal when no VAT label
// was found directly and the difference is positive.
func (e *Extractor) deriveVAT(fs *FieldSet) {
	p := e.profile
	if !p.DeriveVAT || p.VATField == "" {
		return
	}
	if fs.Get(p.VATField).Status == StatusFound {
		return
	}
	sub := fs.Get(p.SubtotalField)
	tot := fs.Get(p.TotalField)
	if sub.Status != StatusFound || tot.Status != StatusFound || !sub.IsAmount || !tot.IsAmount {
		return
	}
	if tot.Amount > sub.Amount {
		diff := math.Round((tot.Amount-sub.Amount)*100) / 100
		fs.Set(p.VATField, FoundAmount(diff))
	}
}
