package coin

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractHints", func() {
	var (
		frontText string
		backText  string
		hints     Hints
	)

	BeforeEach(func() {
		frontText = ""
		backText = ""
	})

	JustBeforeEach(func() {
		hints = ExtractHints(frontText, backText)
	})

	When("both texts are absent", func() {
		It("yields all-absent hints", func() {
			Expect(hints).To(Equal(Hints{}))
		})
	})

	When("a Polish coin is transcribed across both faces", func() {
		BeforeEach(func() {
			frontText = "RZECZPOSPOLITA POLSKA 2015"
			backText = "50 GROSZY"
		})

		It("extracts the year", func() {
			Expect(hints.Year).To(Equal("2015"))
		})

		It("extracts the denomination", func() {
			Expect(hints.Denomination).To(Equal("groszy"))
		})

		It("extracts the country", func() {
			Expect(hints.Country).To(Equal("poland"))
		})
	})

	When("the text holds a Mexican coin", func() {
		BeforeEach(func() {
			frontText = "ESTADOS UNIDOS MEXICANOS"
			backText = "10 CENTAVOS 1998"
		})

		It("reports centavos, not the shorter cent", func() {
			Expect(hints.Denomination).To(Equal("centavos"))
		})

		It("identifies mexico", func() {
			Expect(hints.Country).To(Equal("mexico"))
		})
	})

	When("the text holds a US coin", func() {
		BeforeEach(func() {
			frontText = "LIBERTY IN GOD WE TRUST 2001"
			backText = "ONE CENT UNITED STATES OF AMERICA"
		})

		It("identifies usa", func() {
			Expect(hints.Country).To(Equal("usa"))
		})

		It("extracts the denomination", func() {
			Expect(hints.Denomination).To(Equal("cent"))
		})
	})

	When("indicators for several countries appear", func() {
		BeforeEach(func() {
			frontText = "POLSKA LIBERTY 2010"
		})

		It("keeps the first match and never overrides it", func() {
			Expect(hints.Country).To(Equal("poland"))
		})
	})

	When("a 4-digit token falls outside the coin year ranges", func() {
		BeforeEach(func() {
			frontText = "1776 COMMEMORATIVE 3500"
		})

		It("leaves the year absent", func() {
			Expect(hints.Year).To(BeEmpty())
		})
	})

	When("several plausible years appear", func() {
		BeforeEach(func() {
			frontText = "1923 restrike 1999"
		})

		It("keeps the first one", func() {
			Expect(hints.Year).To(Equal("1923"))
		})
	})
})

var _ = Describe("WithYearOverride", func() {
	It("replaces the year when the override is a 4-digit string", func() {
		h := Hints{Year: "2015"}.WithYearOverride("1999")
		Expect(h.Year).To(Equal("1999"))
	})

	It("ignores overrides that are not 4-digit strings", func() {
		Expect(Hints{Year: "2015"}.WithYearOverride("99").Year).To(Equal("2015"))
		Expect(Hints{Year: "2015"}.WithYearOverride("twenty").Year).To(Equal("2015"))
		Expect(Hints{Year: "2015"}.WithYearOverride("").Year).To(Equal("2015"))
	})
})
