package models

import "time"

// SettingsSnapshot stores one serialized settings state per namespace.
type SettingsSnapshot struct {
	Namespace string `gorm:"primaryKey;size:64"`
	Payload   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
