// Package calculator derives the money figures of a quotation.
//
// Every function takes the raw line item sum as its amount base. The same
// raw sum means different things depending on the tax mode: under
// "excluded" it is the pre-tax figure, under "included" it already contains
// the tax. Passing a partially adjusted value breaks the identities between
// the derived figures.
package calculator

import "github.com/mmynk/quotation/internal/models"

// Totals holds every figure displayed for a quotation.
type Totals struct {
	// Subtotal is the raw sum of the line item subtotals.
	Subtotal float64
	// AfterTaxSubtotal is the pre-tax amount regardless of mode.
	AfterTaxSubtotal float64
	Tax              float64
	Total            float64
	// Mode is the effective tax mode the figures were computed with.
	Mode models.TaxMode
}

// Subtotal sums the subtotal of each item, left to right.
// Negative quantities are permitted and simply reduce the sum.
func Subtotal(items []models.LineItem) float64 {
	sum := 0.0
	for _, item := range items {
		sum += item.Subtotal
	}
	return sum
}

// Tax computes the tax amount for amountBase.
//
//	none:     0
//	included: base × rate / (100 + rate)
//	excluded: base × rate / 100
func Tax(amountBase float64, cfg models.TaxConfig) float64 {
	switch cfg.Mode.OrDefault() {
	case models.TaxModeNone:
		return 0
	case models.TaxModeIncluded:
		return amountBase * (cfg.Rate / (100 + cfg.Rate))
	default:
		return amountBase * (cfg.Rate / 100)
	}
}

// AfterTaxSubtotal returns the pre-tax amount. Only the included mode
// backs the tax out of the base; the others return it unchanged.
func AfterTaxSubtotal(amountBase float64, cfg models.TaxConfig) float64 {
	if cfg.Mode.OrDefault() == models.TaxModeIncluded {
		return amountBase / (1 + cfg.Rate/100)
	}
	return amountBase
}

// Total returns the amount payable. Under the included mode the base is
// already tax-inclusive.
func Total(amountBase float64, cfg models.TaxConfig) float64 {
	switch cfg.Mode.OrDefault() {
	case models.TaxModeNone, models.TaxModeIncluded:
		return amountBase
	default:
		return amountBase + Tax(amountBase, cfg)
	}
}

// Compute derives all figures for items under cfg.
func Compute(items []models.LineItem, cfg models.TaxConfig) Totals {
	subtotal := Subtotal(items)
	return Totals{
		Subtotal:         subtotal,
		AfterTaxSubtotal: AfterTaxSubtotal(subtotal, cfg),
		Tax:              Tax(subtotal, cfg),
		Total:            Total(subtotal, cfg),
		Mode:             cfg.Mode.OrDefault(),
	}
}

// ForQuotation computes the totals of q from its current items.
func ForQuotation(q *models.Quotation) Totals {
	return Compute(q.Items, q.TaxConfig)
}
