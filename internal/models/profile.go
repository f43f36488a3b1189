package models

// Profile holds reusable default values for new quotations.
// Every field is optional; absent fields fall back to built-in defaults.
type Profile struct {
	Title                string        `json:"title,omitempty"`
	Subtitle             string        `json:"subtitle,omitempty"`
	Client               ClientPatch   `json:"client,omitempty"`
	Provider             ProviderPatch `json:"provider,omitempty"`
	TaxConfig            TaxPatch      `json:"taxConfig,omitempty"`
	Notes                string        `json:"notes,omitempty"`
	ShowSignatureSection *bool         `json:"showSignatureSection,omitempty"`
}
