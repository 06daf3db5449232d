package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Source represents an external feed that raw candidates are collected from
type Source struct {
	gorm.Model
	Name          string         `gorm:"uniqueIndex;not null;size:100"`
	Type          string         `gorm:"not null;size:50"`
	URL           string         `gorm:"size:500"`
	Config        datatypes.JSON `gorm:"type:jsonb"`
	Active        bool           `gorm:"not null;default:true"`
	LastScrapedAt *time.Time     `gorm:"column:last_scraped_at"`
}
