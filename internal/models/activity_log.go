package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is one mutating API request, recorded after the response is written.
type ActivityLog struct {
	ID        uint   `gorm:"primaryKey"`
	RequestID string `gorm:"size:64;index"`
	UserID    *uint  `gorm:"index"`
	Method    string `gorm:"size:10;not null"`
	Path      string `gorm:"size:512;not null"`
	Status    int    `gorm:"not null"`
	Details   datatypes.JSON
	CreatedAt time.Time `gorm:"index"`
}
