package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/docsift/docsift/constants"
)

// profileDoc is the on-disk JSON shape for a custom extraction profile.
// Custom profiles let a deployment tune synonym tables per document
// variant without recompiling.
type profileDoc struct {
	Name         string    `json:"name"`
	DocType      string    `json:"doc_type"`
	CompanyField string    `json:"company_field"`
	KnownNames   []string  `json:"known_names"`
	DateField    string    `json:"date_field"`
	ItemsField   string    `json:"items_field"`
	ColumnLayout bool      `json:"column_layout"`
	Rules        []ruleDoc `json:"rules"`

	DeriveVAT     bool   `json:"derive_vat"`
	VATField      string `json:"vat_field"`
	SubtotalField string `json:"subtotal_field"`
	TotalField    string `json:"total_field"`
}

type ruleDoc struct {
	Field    string   `json:"field"`
	Synonyms []string `json:"synonyms"`
	Exclude  []string `json:"exclude"`
	Grammar  string   `json:"grammar"`
}

// buildProfileJSONSchema returns the JSON-Schema (draft 2020-12 subset)
// for profile documents as a generic map.
func buildProfileJSONSchema() map[string]any {
	ruleProps := map[string]any{
		"field":    map[string]any{"type": "string", "minLength": 1},
		"synonyms": map[string]any{"type": "array", "minItems": 1, "items": map[string]any{"type": "string", "minLength": 1}},
		"exclude":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"grammar": map[string]any{
			"type": "string",
			"enum": []string{string(GrammarAmount), string(GrammarAccountNumber), string(GrammarInteger), string(GrammarDate)},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"name", "rules"},
		"properties": map[string]any{
			"name":          map[string]any{"type": "string", "minLength": 1},
			"doc_type":      map[string]any{"type": "string", "enum": constants.DocTypesAsStringSlice()},
			"company_field": map[string]any{"type": "string"},
			"known_names":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"date_field":    map[string]any{"type": "string"},
			"items_field":   map[string]any{"type": "string"},
			"column_layout": map[string]any{"type": "boolean"},
			"rules": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"field", "synonyms"},
					"properties":           ruleProps,
				},
			},
			"derive_vat":     map[string]any{"type": "boolean"},
			"vat_field":      map[string]any{"type": "string"},
			"subtotal_field": map[string]any{"type": "string"},
			"total_field":    map[string]any{"type": "string"},
		},
	}
}

// validateJSONAgainstSchema validates "data" against "schemaMap".
func validateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("profile.schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("profile.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("profile does not match schema: %w", err)
	}
	return nil
}

// ParseProfile validates and decodes a JSON profile document.
func ParseProfile(data []byte) (Profile, error) {
	if err := validateJSONAgainstSchema(buildProfileJSONSchema(), data); err != nil {
		return Profile{}, err
	}
	var doc profileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}

	p := Profile{
		Name:          doc.Name,
		DocType:       constants.DocType(doc.DocType),
		CompanyField:  doc.CompanyField,
		KnownNames:    doc.KnownNames,
		DateField:     doc.DateField,
		ItemsField:    doc.ItemsField,
		ColumnLayout:  doc.ColumnLayout,
		DeriveVAT:     doc.DeriveVAT,
		VATField:      doc.VATField,
		SubtotalField: doc.SubtotalField,
		TotalField:    doc.TotalField,
	}
	if doc.DocType == "" {
		p.DocType = constants.Unknown
	}
	for _, r := range doc.Rules {
		g := Grammar(r.Grammar)
		if r.Grammar == "" {
			g = GrammarAmount
		}
		p.Rules = append(p.Rules, Rule{
			Field:    r.Field,
			Synonyms: r.Synonyms,
			Exclude:  r.Exclude,
			Grammar:  g,
		})
	}
	return p, nil
}

// LoadProfile reads and parses a JSON profile file.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data)
}
