package model

import "time"

// ReportMetrics are the headline numbers printed in the PDF report.
type ReportMetrics struct {
	TotalAccidents  int     `json:"total_accidents"`
	TotalBusinesses int     `json:"total_businesses"`
	AvgSafetyIndex  float64 `json:"avg_safety_index"`
	SafetyAvailable bool    `json:"safety_available"`
}

// ReportRecord is one generated report kept in the history store.
type ReportRecord struct {
	ID        string        `json:"id"`
	Filename  string        `json:"filename"`
	Metrics   ReportMetrics `json:"metrics"`
	Insights  []string      `json:"insights,omitempty"`
	SizeBytes int           `json:"size_bytes"`
	CreatedAt time.Time     `json:"created_at"`
}
