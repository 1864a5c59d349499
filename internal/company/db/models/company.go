// Package models contains the persistence models, configured to work
// using GORM as the ORM.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the row maintained by the administration tooling.
// This service only ever reads it.
type Company struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"size:255"`
	Email      string    `gorm:"size:255"`
	Phone      string    `gorm:"size:64"`
	Address    string    `gorm:"size:1000"`
	BaseURL    string    `gorm:"column:base_url;size:1000"`
	AdminPhone string    `gorm:"column:admin_phone;size:64"`
	Logo       string    `gorm:"size:1000"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}
