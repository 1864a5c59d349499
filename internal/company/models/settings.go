package models

// Locale is the UI language of the application.
type Locale string

const (
	LocaleID Locale = "id"
	LocaleEN Locale = "en"
)

// Valid reports whether l is one of the supported locales.
func (l Locale) Valid() bool {
	return l == LocaleID || l == LocaleEN
}

// CompanySettings is the company identity shown by the presentation layer.
type CompanySettings struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	BaseURL    string `json:"baseUrl"`
	AdminPhone string `json:"adminPhone"`
	Logo       string `json:"logo,omitempty"`
}

// CompanySettingsPatch carries the fields of a partial update.
// Pointer types are used so that nil means "keep the current value".
type CompanySettingsPatch struct {
	Name       *string
	Email      *string
	Phone      *string
	Address    *string
	BaseURL    *string
	AdminPhone *string
	Logo       *string
}

// IsEmpty reports whether the patch changes nothing.
func (p CompanySettingsPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Address == nil &&
		p.BaseURL == nil && p.AdminPhone == nil && p.Logo == nil
}

// Merge returns a copy of c with every non-nil field of p applied.
func (c CompanySettings) Merge(p CompanySettingsPatch) CompanySettings {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.BaseURL != nil {
		c.BaseURL = *p.BaseURL
	}
	if p.AdminPhone != nil {
		c.AdminPhone = *p.AdminPhone
	}
	if p.Logo != nil {
		c.Logo = *p.Logo
	}
	return c
}

// AppState is the full persisted settings state.
type AppState struct {
	Locale  Locale          `json:"locale"`
	Company CompanySettings `json:"company"`
}

// DefaultAppState returns the state a fresh installation starts with.
func DefaultAppState() AppState {
	return AppState{
		Locale: LocaleID,
		Company: CompanySettings{
			Name:       DefaultCompanyName,
			Email:      "admin@olt.com",
			Phone:      "+62 812-3456-7890",
			Address:    "Jakarta, Indonesia",
			BaseURL:    "",
			AdminPhone: "+62 812-3456-7890",
		},
	}
}
