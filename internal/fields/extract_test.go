package fields

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docsift/docsift/constants"
)

func TestFields(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fields Suite")
}

var _ = Describe("anchoredSearch", func() {
	rule := Rule{
		Field:    "Total",
		Synonyms: []string{"total", "grand total", "balance due", "amount due"},
		Grammar:  GrammarAmount,
	}

	When("the amount sits on the label line", func() {
		It("returns that amount", func() {
			v := anchoredSearch([]string{"Grand Total: R1,234.50"}, rule)
			Expect(v.Status).To(Equal(StatusFound))
			Expect(v.Amount).To(Equal(1234.50))
		})
	})

	When("the amount sits on the following line", func() {
		It("returns the same value", func() {
			v := anchoredSearch([]string{"Amount Due", "$1,234.50"}, rule)
			Expect(v.Status).To(Equal(StatusFound))
			Expect(v.Amount).To(Equal(1234.50))
		})
	})

	When("no line matches any synonym", func() {
		It("reports NotFound", func() {
			v := anchoredSearch([]string{"Thanks for shopping", "See you soon"}, rule)
			Expect(v.Status).To(Equal(StatusNotFound))
		})
	})

	When("the label appears inside a longer word", func() {
		It("does not anchor on it", func() {
			v := anchoredSearch([]string{"Subtotal 100.00", "Total 115.00"}, rule)
			Expect(v.Amount).To(Equal(115.00))
		})
	})

	When("the anchor line hits an exclusion", func() {
		It("keeps scanning for a later anchor", func() {
			excl := Rule{Field: "VAT", Synonyms: []string{"vat"}, Exclude: []string{"excl"}, Grammar: GrammarAmount}
			v := anchoredSearch([]string{"Excl. VAT 100.00", "VAT 15.00"}, excl)
			Expect(v.Amount).To(Equal(15.00))
		})
	})

	When("the anchor and the next line carry no token", func() {
		It("does not backtrack to later anchors", func() {
			v := anchoredSearch([]string{"Total", "(see below)", "Total 99.00"}, rule)
			Expect(v.Status).To(Equal(StatusNotFound))
		})
	})
})

var _ = Describe("parseAmount", func() {
	It("strips comma grouping", func() {
		Expect(parseAmount("1,234.50")).To(Equal(1234.50))
	})

	It("strips space grouping", func() {
		Expect(parseAmount("1 234.50")).To(Equal(1234.50))
	})

	It("treats all periods but the last as grouping", func() {
		Expect(parseAmount("1.234.50")).To(Equal(1234.50))
	})

	It("parses a plain two-decimal token", func() {
		Expect(parseAmount("250.00")).To(Equal(250.00))
	})
})

var _ = Describe("amountToken", func() {
	It("accepts the rand symbol prefix", func() {
		v, ok := amountToken("R250.00")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(250.00))
	})

	It("accepts a trailing ISO code", func() {
		v, ok := amountToken("250.00 ZAR")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(250.00))
	})

	It("ignores lines with no currency-shaped token", func() {
		_, ok := amountToken("no numbers here")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("dateMatches", func() {
	It("deduplicates repeated dates", func() {
		v := dateMatches("Issued 12/05/2023\nPaid 12/05/2023")
		Expect(v.Status).To(Equal(StatusFound))
		Expect(v.Dates).To(Equal([]string{"12/05/2023"}))
	})

	It("finds every distinct date shape", func() {
		v := dateMatches("from 2023-05-12 until 13 May 2023, then 14.05.2023")
		Expect(v.Dates).To(ConsistOf("2023-05-12", "13 May 2023", "14.05.2023"))
	})

	It("reports NotFound for dateless text", func() {
		v := dateMatches("nothing here")
		Expect(v.Status).To(Equal(StatusNotFound))
	})
})

var _ = Describe("itemLines", func() {
	It("splits a dash-separated item into name and price", func() {
		v := itemLines([]string{"Bread and Milk - 45.50"})
		Expect(v.Items).To(HaveLen(1))
		Expect(v.Items[0].Name).To(Equal("Bread and Milk"))
		Expect(*v.Items[0].Price).To(Equal(45.50))
	})

	It("skips lines without a trailing decimal", func() {
		v := itemLines([]string{"Not an item line"})
		Expect(v.Status).To(Equal(StatusNotFound))
	})

	It("handles space and colon separators", func() {
		v := itemLines([]string{"Coffee 45.00", "Tea: 20.00"})
		Expect(v.Items).To(HaveLen(2))
		Expect(v.Items[0].Name).To(Equal("Coffee"))
		Expect(v.Items[1].Name).To(Equal("Tea"))
	})
})

var _ = Describe("companyName", func() {
	It("prefers a known brand anywhere in the text", func() {
		v := companyName([]string{"till slip", "woolworths food"}, []string{"Woolworths"})
		Expect(v.Text).To(Equal("Woolworths"))
	})

	It("reports the canonical brand spelling for shouting OCR text", func() {
		v := companyName([]string{"WOOLWORTHS", "Total 115.00"}, []string{"Woolworths"})
		Expect(v.Text).To(Equal("Woolworths"))
	})

	It("falls back to the letterhead heuristic", func() {
		v := companyName([]string{"", "ACME TRADING", "something lower"}, nil)
		Expect(v.Text).To(Equal("ACME TRADING"))
	})

	It("falls back to the first non-empty line when nothing shouts", func() {
		v := companyName([]string{"", "quiet header", "more text"}, nil)
		Expect(v.Text).To(Equal("quiet header"))
	})
})

var _ = Describe("Extractor", func() {
	var (
		lines []string
		fs    *FieldSet
	)

	JustBeforeEach(func() {
		e := NewExtractor(ProfileFor(constants.Receipt), nil)
		fs = e.Extract(lines)
	})

	When("extracting a complete receipt", func() {
		BeforeEach(func() {
			lines = []string{
				"Woolworths",
				"12/05/2023",
				"Subtotal 100.00",
				"VAT 15.00",
				"Total 115.00",
			}
		})

		It("finds the company name", func() {
			Expect(fs.Get("Company Name").Text).To(Equal("Woolworths"))
		})

		It("finds the date", func() {
			Expect(fs.Get("Date").Dates).To(Equal([]string{"12/05/2023"}))
		})

		It("finds subtotal, VAT and total", func() {
			Expect(fs.Get("Subtotal").Amount).To(Equal(100.00))
			Expect(fs.Get("VAT").Amount).To(Equal(15.00))
			Expect(fs.Get("Total").Amount).To(Equal(115.00))
		})
	})

	When("the VAT label is missing", func() {
		BeforeEach(func() {
			lines = []string{"Subtotal 100.00", "Total 115.00"}
		})

		It("derives VAT as Total minus Subtotal", func() {
			v := fs.Get("VAT")
			Expect(v.Status).To(Equal(StatusFound))
			Expect(v.Amount).To(Equal(15.00))
		})
	})

	When("the total does not exceed the subtotal", func() {
		BeforeEach(func() {
			lines = []string{"Subtotal 115.00", "Total 115.00"}
		})

		It("leaves VAT as NotFound", func() {
			Expect(fs.Get("VAT").Status).To(Equal(StatusNotFound))
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			lines = nil
		})

		It("still reports every configured field", func() {
			names := fs.Names()
			Expect(names).To(Equal([]string{"Company Name", "Date", "Subtotal", "VAT", "Total", "Items"}))
			for _, n := range names {
				Expect(fs.Get(n).String()).To(Equal(NotFoundText))
			}
		})
	})
})

var _ = Describe("AmountsInLines", func() {
	It("takes the first parseable token of each line", func() {
		amounts := AmountsInLines([]string{
			"Coffee 45.00",
			"Discount -", // no token
			"Split 10.00 or 12.00",
			"Total R1,234.56",
		})
		Expect(amounts).To(Equal([]float64{45.00, 10.00, 1234.56}))
	})

	It("returns nothing for prose", func() {
		Expect(AmountsInLines([]string{"thanks for shopping"})).To(BeEmpty())
	})
})
