package models

// FieldsPatch carries top-level quotation fields to merge.
type FieldsPatch struct {
	Title                *string `json:"title,omitempty"`
	Subtitle             *string `json:"subtitle,omitempty"`
	QuotationNumber      *string `json:"quotationNumber,omitempty"`
	QuotationDate        *string `json:"quotationDate,omitempty"`
	ValidUntil           *string `json:"validUntil,omitempty"`
	Notes                *string `json:"notes,omitempty"`
	ShowSignatureSection *bool   `json:"showSignatureSection,omitempty"`
}

// ApplyTo merges the supplied fields into q.
func (p FieldsPatch) ApplyTo(q *Quotation) {
	setString(&q.Title, p.Title)
	setString(&q.Subtitle, p.Subtitle)
	setString(&q.QuotationNumber, p.QuotationNumber)
	setString(&q.QuotationDate, p.QuotationDate)
	setString(&q.ValidUntil, p.ValidUntil)
	setString(&q.Notes, p.Notes)
	if p.ShowSignatureSection != nil {
		q.ShowSignatureSection = BoolPtr(*p.ShowSignatureSection)
	}
}

// ClientPatch carries ClientInfo fields to merge.
type ClientPatch struct {
	CompanyName   *string `json:"companyName,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
	Logo          *string `json:"logo,omitempty"`
}

// ApplyTo merges the supplied fields into c.
func (p ClientPatch) ApplyTo(c *ClientInfo) {
	setString(&c.CompanyName, p.CompanyName)
	setString(&c.ContactPerson, p.ContactPerson)
	setString(&c.Phone, p.Phone)
	setString(&c.Email, p.Email)
	setString(&c.Address, p.Address)
	setString(&c.Logo, p.Logo)
}

// Images returns the inline images carried by the patch.
func (p ClientPatch) Images() []string {
	return nonEmpty(p.Logo)
}

// ProviderPatch carries ProviderInfo fields to merge.
type ProviderPatch struct {
	CompanyName   *string `json:"companyName,omitempty"`
	BrandName     *string `json:"brandName,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
	TaxID         *string `json:"taxId,omitempty"`
	Logo          *string `json:"logo,omitempty"`
	Stamp         *string `json:"stamp,omitempty"`
}

// ApplyTo merges the supplied fields into pi.
func (p ProviderPatch) ApplyTo(pi *ProviderInfo) {
	setString(&pi.CompanyName, p.CompanyName)
	setString(&pi.BrandName, p.BrandName)
	setString(&pi.ContactPerson, p.ContactPerson)
	setString(&pi.Phone, p.Phone)
	setString(&pi.Email, p.Email)
	setString(&pi.Address, p.Address)
	setString(&pi.TaxID, p.TaxID)
	setString(&pi.Logo, p.Logo)
	setString(&pi.Stamp, p.Stamp)
}

// Images returns the inline images carried by the patch.
func (p ProviderPatch) Images() []string {
	return nonEmpty(p.Logo, p.Stamp)
}

// TaxPatch carries TaxConfig fields to merge.
type TaxPatch struct {
	Name *string  `json:"name,omitempty"`
	Rate *float64 `json:"rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Mode *TaxMode `json:"mode,omitempty" validate:"omitempty,oneof=none included excluded"`
}

// ApplyTo merges the supplied fields into t.
func (p TaxPatch) ApplyTo(t *TaxConfig) {
	setString(&t.Name, p.Name)
	if p.Rate != nil {
		t.Rate = *p.Rate
	}
	if p.Mode != nil {
		t.Mode = *p.Mode
	}
}

// LineItemPatch carries LineItem fields to merge. There is no Subtotal
// field; ApplyTo recomputes it.
type LineItemPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unitPrice,omitempty"`
}

// ApplyTo merges the supplied fields into it and recomputes the subtotal.
func (p LineItemPatch) ApplyTo(it *LineItem) {
	setString(&it.Name, p.Name)
	setString(&it.Description, p.Description)
	if p.Quantity != nil {
		it.Quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		it.UnitPrice = *p.UnitPrice
	}
	it.Subtotal = it.Quantity * it.UnitPrice
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func nonEmpty(vs ...*string) []string {
	var out []string
	for _, v := range vs {
		if v != nil && *v != "" {
			out = append(out, *v)
		}
	}
	return out
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }

// TaxModePtr returns a pointer to m.
func TaxModePtr(m TaxMode) *TaxMode { return &m }
