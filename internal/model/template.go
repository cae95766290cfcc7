package model

const (
	SectionHeader   = "header"
	SectionGreeting = "greeting"
	SectionQR       = "qr"
	SectionItems    = "items"
	SectionTotal    = "total"
	SectionFooter   = "footer"
)

type TemplateSection struct {
	Kind    string `json:"kind"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
	Order   int    `json:"order"`
}

type InvoiceTemplate struct {
	Sections     []TemplateSection `json:"sections"`
	HeaderText   string            `json:"header_text"`
	FooterText   string            `json:"footer_text"`
	PrimaryColor string            `json:"primary_color"`
	AccentColor  string            `json:"accent_color"`
	// Banner is either a remote URL or a base64 data URI.
	Banner string `json:"banner,omitempty"`
}
