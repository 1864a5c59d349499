// Package models defines the core domain models: the stored company record
// exposed by the info provider, and the persisted application settings.
package models

import (
	"time"
)

// DefaultCompanyName is shown whenever no usable company record is available.
const DefaultCompanyName = "OLT RADIUS"

// CompanyInfo is the company record as read from the company store.
// Every field is optional; a synthesized fallback only carries Name and BaseURL.
type CompanyInfo struct {
	// ID is the identifier of the stored record, empty for a fallback.
	ID string `json:"id,omitempty"`
	// Name is the company’s display name.
	Name string `json:"name"`
	// Email is the public contact address.
	Email string `json:"email,omitempty"`
	// Phone is the public contact number.
	Phone string `json:"phone,omitempty"`
	// Address is the postal address.
	Address string `json:"address,omitempty"`
	// BaseURL is the public URL the application is served from.
	BaseURL string `json:"baseUrl"`
	// AdminPhone is the number of the operator on duty.
	AdminPhone string `json:"adminPhone,omitempty"`
	// Logo is a URI or identifier of the company logo.
	Logo string `json:"logo,omitempty"`
	// CreatedAt records when the record was created.
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	// UpdatedAt records when the record was last updated.
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// FallbackCompanyInfo returns the minimal identity used when the store
// has no company record or cannot be queried.
func FallbackCompanyInfo(baseURL string) *CompanyInfo {
	return &CompanyInfo{
		Name:    DefaultCompanyName,
		BaseURL: baseURL,
	}
}
