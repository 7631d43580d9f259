package schemas

// -- Browser Persona Schemas --

// Persona is the fingerprint presented by the automated browser: viewport,
// user agent, and locale.
type Persona struct {
	UserAgent string   `json:"userAgent" mapstructure:"user_agent"`
	Languages []string `json:"languages" mapstructure:"languages"`
	Width     int      `json:"width" mapstructure:"width"`
	Height    int      `json:"height" mapstructure:"height"`
	Locale    string   `json:"locale" mapstructure:"locale"`
}

// DefaultPersona provides a fallback persona if none is specified. The values
// describe an ordinary desktop Chrome so the storefront serves its full layout.
var DefaultPersona = Persona{
	UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	Languages: []string{"en-US", "en"},
	Width:     1920,
	Height:    1080,
	Locale:    "en-US",
}

// WithDefaults fills any zero fields from DefaultPersona.
func (p Persona) WithDefaults() Persona {
	if p.UserAgent == "" {
		p.UserAgent = DefaultPersona.UserAgent
	}
	if len(p.Languages) == 0 {
		p.Languages = append([]string(nil), DefaultPersona.Languages...)
	}
	if p.Width <= 0 {
		p.Width = DefaultPersona.Width
	}
	if p.Height <= 0 {
		p.Height = DefaultPersona.Height
	}
	if p.Locale == "" {
		p.Locale = DefaultPersona.Locale
	}
	return p
}
