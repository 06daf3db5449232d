package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportDateLayout is the calendar date format used for DailyReport.ReportDate
const ReportDateLayout = "2006-01-02"

// DailyReport is the per-date record of one run's ranked opportunities
type DailyReport struct {
	gorm.Model
	ReportDate           string                    `gorm:"uniqueIndex;not null;size:10"`
	TopOpportunities     datatypes.JSONSlice[uint] `gorm:"type:jsonb;not null"`
	ReportJSON           datatypes.JSON            `gorm:"type:jsonb"`
	ReportHTML           string                    `gorm:"type:text"`
	SourcesConsulted     int
	TotalAnalyzed        int
	ExecutionTimeMinutes float64
}
