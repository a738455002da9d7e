package fields

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docsift/docsift/constants"
)

var _ = Describe("ParseProfile", func() {
	When("parsing a valid profile document", func() {
		doc := []byte(`{
			"name": "tillslip-za",
			"doc_type": "Receipt",
			"company_field": "Company Name",
			"known_names": ["Woolworths", "Checkers"],
			"date_field": "Date",
			"items_field": "Items",
			"rules": [
				{"field": "Total", "synonyms": ["total", "amount due"]},
				{"field": "VAT", "synonyms": ["vat"], "exclude": ["excl"], "grammar": "amount"}
			],
			"derive_vat": true,
			"vat_field": "VAT",
			"subtotal_field": "Subtotal",
			"total_field": "Total"
		}`)

		It("maps every field", func() {
			p, err := ParseProfile(doc)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name).To(Equal("tillslip-za"))
			Expect(p.DocType).To(Equal(constants.Receipt))
			Expect(p.KnownNames).To(HaveLen(2))
			Expect(p.Rules).To(HaveLen(2))
			Expect(p.DeriveVAT).To(BeTrue())
		})

		It("accepts a column layout toggle", func() {
			p, err := ParseProfile([]byte(`{"name": "statement", "column_layout": true,
				"rules": [{"field": "Balance", "synonyms": ["balance"]}]}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ColumnLayout).To(BeTrue())
		})

		It("defaults a missing grammar to amount", func() {
			p, err := ParseProfile(doc)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Rules[0].Grammar).To(Equal(GrammarAmount))
		})
	})

	When("the document omits required keys", func() {
		It("rejects a profile without rules", func() {
			_, err := ParseProfile([]byte(`{"name": "broken"}`))
			Expect(err).To(HaveOccurred())
		})

		It("rejects a rule without synonyms", func() {
			_, err := ParseProfile([]byte(`{"name": "x", "rules": [{"field": "Total"}]}`))
			Expect(err).To(HaveOccurred())
		})
	})

	When("the document carries an unknown grammar", func() {
		It("rejects it", func() {
			_, err := ParseProfile([]byte(`{"name": "x", "rules": [{"field": "Total", "synonyms": ["total"], "grammar": "fuzzy"}]}`))
			Expect(err).To(HaveOccurred())
		})
	})

	When("the document carries an unknown doc_type", func() {
		It("rejects it", func() {
			_, err := ParseProfile([]byte(`{"name": "x", "doc_type": "Menu", "rules": [{"field": "Total", "synonyms": ["total"]}]}`))
			Expect(err).To(HaveOccurred())
		})
	})
})
