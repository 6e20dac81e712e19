package storage

import (
	"gorm.io/gorm"
)

// Preference is the persisted unit preference of one display client.
type Preference struct {
	gorm.Model
	ClientID   string `gorm:"uniqueIndex;not null" json:"client_id"`
	UseCelsius bool   `json:"use_celsius"`
}
