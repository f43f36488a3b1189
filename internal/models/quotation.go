package models

import "time"

// DateLayout is the storage format of QuotationDate and ValidUntil.
const DateLayout = "2006-01-02"

// TaxMode selects how the tax rate relates to the line item sum.
type TaxMode string

const (
	// TaxModeNone applies no tax at all.
	TaxModeNone TaxMode = "none"
	// TaxModeIncluded means the line item sum already contains the tax.
	TaxModeIncluded TaxMode = "included"
	// TaxModeExcluded means the tax is added on top of the line item sum.
	TaxModeExcluded TaxMode = "excluded"
)

// OrDefault returns the effective mode. An absent or unknown mode is
// treated as TaxModeExcluded.
func (m TaxMode) OrDefault() TaxMode {
	switch m {
	case TaxModeNone, TaxModeIncluded:
		return m
	default:
		return TaxModeExcluded
	}
}

// Valid reports whether m is one of the three known modes.
func (m TaxMode) Valid() bool {
	return m == TaxModeNone || m == TaxModeIncluded || m == TaxModeExcluded
}

// Quotation is the aggregate root: the full editable document.
type Quotation struct {
	// ID is assigned at creation and never changes (UUID format).
	ID string `json:"id"`

	Title           string `json:"title"`
	Subtitle        string `json:"subtitle,omitempty"`
	QuotationNumber string `json:"quotationNumber"`

	// QuotationDate and ValidUntil are ISO dates (YYYY-MM-DD).
	QuotationDate string `json:"quotationDate"`
	ValidUntil    string `json:"validUntil"`

	Client   ClientInfo   `json:"client"`
	Provider ProviderInfo `json:"provider"`

	// Items are kept in presentation order.
	Items []LineItem `json:"items"`

	TaxConfig TaxConfig `json:"taxConfig"`
	Notes     string    `json:"notes"`

	// ShowSignatureSection is tri-state on disk: nil means true.
	ShowSignatureSection *bool `json:"showSignatureSection,omitempty"`

	// CreatedAt is immutable after creation.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is refreshed by every mutating operation.
	UpdatedAt time.Time `json:"updatedAt"`
}

// LineItem is a single priced row of a quotation.
type LineItem struct {
	// ID is unique within the quotation and stable across reorders.
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`

	// Subtotal is always Quantity × UnitPrice.
	Subtotal float64 `json:"subtotal"`
}

// ClientInfo identifies the receiving party.
type ClientInfo struct {
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	// Logo is an inline data URL (png, jpeg or gif).
	Logo string `json:"logo,omitempty"`
}

// ProviderInfo identifies the issuing party.
type ProviderInfo struct {
	CompanyName   string `json:"companyName"`
	BrandName     string `json:"brandName,omitempty"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	TaxID         string `json:"taxId,omitempty"`
	Logo          string `json:"logo,omitempty"`
	// Stamp is the company seal shown in the signature section.
	Stamp string `json:"stamp,omitempty"`
}

// TaxConfig holds the tax label, rate (percent) and calculation mode.
type TaxConfig struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
	// Mode may be empty on legacy records; see TaxMode.OrDefault.
	Mode TaxMode `json:"mode,omitempty"`
}

// SignatureVisible resolves the tri-state ShowSignatureSection flag.
func (q *Quotation) SignatureVisible() bool {
	return q.ShowSignatureSection == nil || *q.ShowSignatureSection
}

// Normalize backfills fields that legacy records may lack and recomputes
// every line item subtotal.
// It is idempotent.
func Normalize(q *Quotation) {
	if q == nil {
		return
	}
	q.TaxConfig.Mode = q.TaxConfig.Mode.OrDefault()
	if q.ShowSignatureSection == nil {
		show := true
		q.ShowSignatureSection = &show
	}
	if q.Items == nil {
		q.Items = []LineItem{}
	}
	for i := range q.Items {
		q.Items[i].Subtotal = q.Items[i].Quantity * q.Items[i].UnitPrice
	}
}

// Clone returns a deep copy of q.
func (q *Quotation) Clone() *Quotation {
	if q == nil {
		return nil
	}
	c := *q
	if q.Items != nil {
		c.Items = make([]LineItem, len(q.Items))
		copy(c.Items, q.Items)
	}
	if q.ShowSignatureSection != nil {
		show := *q.ShowSignatureSection
		c.ShowSignatureSection = &show
	}
	return &c
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
