package analytics

import (
	"strconv"

	"github.com/karad-smartcity/cityanalytics/internal/model"
)

// NotAvailable is displayed for a KPI that cannot be computed, such as the
// mean of an empty ward subset.
const NotAvailable = "n/a"

// KPI is one headline number.
type KPI struct {
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Display   string  `json:"display"`
	Available bool    `json:"available"`
}

// KPIs are the four cards of the city overview.
type KPIs struct {
	TotalAccidents  KPI `json:"total_accidents"`
	TotalBusinesses KPI `json:"total_businesses"`
	WaterIssues     KPI `json:"water_issues"`
	AvgSafetyIndex  KPI `json:"avg_safety_index"`
}

// Cards returns the KPIs in display order.
func (k KPIs) Cards() []KPI {
	return []KPI{k.TotalAccidents, k.TotalBusinesses, k.WaterIssues, k.AvgSafetyIndex}
}

// ComputeKPIs reduces a (possibly ward-filtered) dataset snapshot to KPI
// cards. Counts and sums over empty input are 0; the safety mean is marked
// unavailable.
func ComputeKPIs(ds *model.Datasets) KPIs {
	accidents := Count(ds.Traffic)
	businesses := SumInt(ds.Business, func(b model.Business) int { return b.Count })
	water := SumInt(ds.Services, func(s model.PublicService) int { return s.WaterIssues })

	k := KPIs{
		TotalAccidents:  intKPI("Total Accidents", accidents),
		TotalBusinesses: intKPI("Total Businesses", businesses),
		WaterIssues:     intKPI("Water Issues", water),
		AvgSafetyIndex:  KPI{Label: "Avg Safety Index", Display: NotAvailable},
	}
	if mean, ok := AvgSafetyIndex(ds.Social); ok {
		k.AvgSafetyIndex.Value = mean
		k.AvgSafetyIndex.Display = strconv.FormatFloat(mean, 'f', 1, 64)
		k.AvgSafetyIndex.Available = true
	}
	return k
}

// AvgSafetyIndex is the one-decimal mean safety index.
func AvgSafetyIndex(rows []model.SocialIndicator) (float64, bool) {
	mean, ok := Mean(rows, func(s model.SocialIndicator) float64 { return s.SafetyIndex })
	if !ok {
		return 0, false
	}
	return Round1(mean), true
}

func intKPI(label string, v int) KPI {
	return KPI{Label: label, Value: float64(v), Display: strconv.Itoa(v), Available: true}
}
