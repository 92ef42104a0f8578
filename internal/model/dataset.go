package model

// AllWards is the ward selector sentinel that disables ward filtering.
const AllWards = "All"

// WardKeyed is implemented by every dataset row. The ward is the common
// join key across datasets; no referential integrity is enforced.
type WardKeyed interface {
	WardOf() string
}

// TrafficAccident is one accident event from traffic_accidents.csv.
type TrafficAccident struct {
	Ward        string  `json:"ward"`
	Hour        int     `json:"hour"`
	VehicleType string  `json:"vehicle_type"`
	Severity    int     `json:"severity"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// WardOf implements WardKeyed.
func (t TrafficAccident) WardOf() string { return t.Ward }

// PublicService is one ward-level row from public_services.csv.
type PublicService struct {
	Ward        string `json:"ward"`
	WaterIssues int    `json:"water_issues"`
}

// WardOf implements WardKeyed.
func (p PublicService) WardOf() string { return p.Ward }

// Business is one (ward, business_type) row from businesses.csv.
type Business struct {
	Ward         string `json:"ward"`
	BusinessType string `json:"business_type"`
	Count        int    `json:"count"`
}

// WardOf implements WardKeyed.
func (b Business) WardOf() string { return b.Ward }

// SocialIndicator is one ward-level row from social_indicators.csv.
type SocialIndicator struct {
	Ward        string  `json:"ward"`
	SafetyIndex float64 `json:"safety_index"`
}

// WardOf implements WardKeyed.
func (s SocialIndicator) WardOf() string { return s.Ward }

// Datasets holds the four datasets loaded at startup. A Datasets value is
// treated as read-only once loaded; filtering produces a new value.
type Datasets struct {
	Traffic  []TrafficAccident `json:"traffic"`
	Services []PublicService   `json:"services"`
	Business []Business        `json:"business"`
	Social   []SocialIndicator `json:"social"`
}

// Empty reports whether all four datasets have zero rows.
func (d *Datasets) Empty() bool {
	return len(d.Traffic) == 0 && len(d.Services) == 0 && len(d.Business) == 0 && len(d.Social) == 0
}
