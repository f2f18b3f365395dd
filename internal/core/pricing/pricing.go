// Package pricing derives VAT-inclusive totals from catalog prices.
// This is part of the Functional Core - no I/O, only pure functions.
//
// Amounts are carried at full float precision and only rounded to the
// currency's minor unit when charged or displayed.
package pricing

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MinorUnitsPerPound is the number of pence in one pound sterling.
const MinorUnitsPerPound = 100

// Quote is the price breakdown shown to the customer for a single skip.
type Quote struct {
	PriceBeforeVAT float64
	VATPercent     float64
	VATAmount      float64
	Total          float64
}

// VATAmount returns the VAT due on a pre-tax price.
func VATAmount(priceBeforeVAT, vatPercent float64) float64 {
	return priceBeforeVAT * vatPercent / 100
}

// Total returns the VAT-inclusive price.
func Total(priceBeforeVAT, vatPercent float64) float64 {
	return priceBeforeVAT + VATAmount(priceBeforeVAT, vatPercent)
}

// NewQuote builds the full breakdown for a pre-tax price and VAT rate.
func NewQuote(priceBeforeVAT, vatPercent float64) Quote {
	return Quote{
		PriceBeforeVAT: priceBeforeVAT,
		VATPercent:     vatPercent,
		VATAmount:      VATAmount(priceBeforeVAT, vatPercent),
		Total:          Total(priceBeforeVAT, vatPercent),
	}
}

// ToMinorUnits rounds an amount to whole pence, half away from zero.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * MinorUnitsPerPound))
}

// Round rounds an amount to two decimal places for presentation.
func Round(amount float64) float64 {
	return float64(ToMinorUnits(amount)) / MinorUnitsPerPound
}

var gbPrinter = message.NewPrinter(language.BritishEnglish)

// FormatGBP renders an amount as pounds sterling, e.g. "£1,190.40".
func FormatGBP(amount float64) string {
	return gbPrinter.Sprintf("£%.2f", Round(amount))
}
