// Package fields converts an unstructured OCR line sequence into a flat
// field->value mapping, driven by per-document-type rule profiles.
package fields

import (
	"strconv"
	"strings"
)

// Status distinguishes "label absent" from "label matched but value
// malformed" so callers and tests can tell the two apart.
type Status string

const (
	StatusFound      Status = "Found"
	StatusNotFound   Status = "NotFound"
	StatusParseError Status = "ParseError"
)

// NotFoundText is the sentinel rendered for fields that yielded nothing.
const NotFoundText = "Not Found"

// Item is one detected line item. Price is nil when the trailing token
// could not be parsed as a number.
type Item struct {
	Name  string
	Price *float64
}

// Value is the outcome of one field extraction.
type Value struct {
	Status   Status
	Text     string   // matched text for string-shaped fields
	Amount   float64  // parsed value for amount-shaped fields
	IsAmount bool
	Dates    []string // deduplicated date matches, first-seen order
	Items    []Item
}

func Found(text string) Value        { return Value{Status: StatusFound, Text: text} }
func FoundAmount(v float64) Value    { return Value{Status: StatusFound, Amount: v, IsAmount: true} }
func FoundDates(ds []string) Value   { return Value{Status: StatusFound, Dates: ds} }
func FoundItems(items []Item) Value  { return Value{Status: StatusFound, Items: items} }
func NotFoundValue() Value           { return Value{Status: StatusNotFound} }
func ParseErrorValue(raw string) Value {
	return Value{Status: StatusParseError, Text: raw}
}

// String renders the value for reports. Both NotFound and ParseError
// render the sentinel; the distinction stays visible on Status.
func (v Value) String() string {
	if v.Status != StatusFound {
		return NotFoundText
	}
	switch {
	case v.IsAmount:
		return strconv.FormatFloat(v.Amount, 'f', 2, 64)
	case v.Dates != nil:
		return strings.Join(v.Dates, ", ")
	case v.Items != nil:
		parts := make([]string, 0, len(v.Items))
		for _, it := range v.Items {
			if it.Price != nil {
				parts = append(parts, it.Name+" ("+strconv.FormatFloat(*it.Price, 'f', 2, 64)+")")
			} else {
				parts = append(parts, it.Name)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return v.Text
	}
}

// FieldSet maps field names to values, preserving declaration order.
// Every configured field is present even when extraction failed, since
// rendering iterates the full key set.
type FieldSet struct {
	names  []string
	values map[string]Value
}

func NewFieldSet(names ...string) *FieldSet {
	fs := &FieldSet{values: make(map[string]Value, len(names))}
	for _, n := range names {
		fs.names = append(fs.names, n)
		fs.values[n] = NotFoundValue()
	}
	return fs
}

func (fs *FieldSet) Set(name string, v Value) {
	if _, ok := fs.values[name]; !ok {
		fs.names = append(fs.names, name)
	}
	fs.values[name] = v
}

func (fs *FieldSet) Get(name string) Value {
	if v, ok := fs.values[name]; ok {
		return v
	}
	return NotFoundValue()
}

func (fs *FieldSet) Has(name string) bool {
	_, ok := fs.values[name]
	return ok
}

// Names returns the field names in declaration order.
func (fs *FieldSet) Names() []string {
	out := make([]string, len(fs.names))
	copy(out, fs.names)
	return out
}

// Rendered returns name -> rendered string, in declaration order alongside
// Names, for JSON responses and report rows.
func (fs *FieldSet) Rendered() map[string]string {
	out := make(map[string]string, len(fs.names))
	for _, n := range fs.names {
		out[n] = fs.values[n].String()
	}
	return out
}
