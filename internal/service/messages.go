package service

import (
	"github.com/mmynk/quotation/internal/calculator"
	"github.com/mmynk/quotation/internal/models"
	"github.com/mmynk/quotation/internal/money"
)

// Empty is the request and response of procedures without payload.
type Empty struct{}

// QuotationResponse carries the current quotation and its totals. Both
// are nil when there is no current quotation.
type QuotationResponse struct {
	Quotation *models.Quotation `json:"quotation"`
	Totals    *Totals           `json:"totals,omitempty"`
}

// Totals are the tax engine figures, rounded for display.
type Totals struct {
	Subtotal         float64        `json:"subtotal"`
	AfterTaxSubtotal float64        `json:"afterTaxSubtotal"`
	Tax              float64        `json:"tax"`
	Total            float64        `json:"total"`
	Mode             models.TaxMode `json:"mode"`
	Label            string         `json:"label"`
}

func totalsOf(q *models.Quotation) *Totals {
	if q == nil {
		return nil
	}
	t := calculator.ForQuotation(q)
	return &Totals{
		Subtotal:         money.Round(t.Subtotal),
		AfterTaxSubtotal: money.Round(t.AfterTaxSubtotal),
		Tax:              money.Round(t.Tax),
		Total:            money.Round(t.Total),
		Mode:             t.Mode,
		Label:            q.TaxConfig.Name + " (" + money.FormatRate(q.TaxConfig.Rate) + "%)",
	}
}

// HistoryResponse lists history snapshots, most recently updated first.
type HistoryResponse struct {
	Quotations []*models.Quotation `json:"quotations"`
}

// IDRequest addresses a history entry or line item.
type IDRequest struct {
	ID string `json:"id" validate:"required"`
}

// UpdateNotesRequest replaces the notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// AddLineItemResponse returns the new item id with the updated quotation.
type AddLineItemResponse struct {
	ID string `json:"id"`
	QuotationResponse
}

// UpdateLineItemRequest merges fields into one line item.
type UpdateLineItemRequest struct {
	ID    string               `json:"id" validate:"required"`
	Patch models.LineItemPatch `json:"patch"`
}

// ReorderItemsRequest moves the item at From to To.
type ReorderItemsRequest struct {
	From int `json:"from" validate:"gte=0"`
	To   int `json:"to" validate:"gte=0"`
}

// ExportRequest selects an output kind: image, pdf or xlsx.
type ExportRequest struct {
	Kind string `json:"kind" validate:"required"`
}

// ExportResponse carries the finished file. Data is base64 on the wire.
type ExportResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// ProfileResponse carries the saved profile, nil when none exists.
type ProfileResponse struct {
	Profile *models.Profile `json:"profile"`
}

// ImportProfileRequest carries a profile JSON document as text.
type ImportProfileRequest struct {
	Document string `json:"document" validate:"required"`
}

// ExportProfileResponse carries the profile as an indented JSON document.
type ExportProfileResponse struct {
	Filename string `json:"filename"`
	Document string `json:"document"`
}
