package analytics

import (
	"sort"
	"strconv"

	"github.com/karad-smartcity/cityanalytics/internal/model"
)

// Series is one named line of a multi-series chart.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// StackedSeries is a categorical x-axis with one value per series per category.
type StackedSeries struct {
	Categories []string `json:"categories"`
	Series     []Series `json:"series"`
}

// AccidentsByWard counts accidents per ward.
func AccidentsByWard(rows []model.TrafficAccident) []Bucket {
	return GroupCount(rows, func(t model.TrafficAccident) string { return t.Ward })
}

// AccidentsByHour counts accidents per hour of day, in hour order. Hours
// with no accidents are omitted.
func AccidentsByHour(rows []model.TrafficAccident) []Bucket {
	return GroupCount(rows, func(t model.TrafficAccident) string { return strconv.Itoa(t.Hour) })
}

// VehicleTypeShares counts accidents per vehicle type with percentage shares.
func VehicleTypeShares(rows []model.TrafficAccident) []Bucket {
	return WithShares(GroupCount(rows, func(t model.TrafficAccident) string { return t.VehicleType }))
}

// AccidentsBySeverity counts accidents per severity level.
func AccidentsBySeverity(rows []model.TrafficAccident) []Bucket {
	return GroupCount(rows, func(t model.TrafficAccident) string { return strconv.Itoa(t.Severity) })
}

// WaterIssuesByWard totals water issues per ward.
func WaterIssuesByWard(rows []model.PublicService) []Bucket {
	return GroupSum(rows,
		func(s model.PublicService) string { return s.Ward },
		func(s model.PublicService) float64 { return float64(s.WaterIssues) },
	)
}

// SafetyByWard averages the safety index per ward.
func SafetyByWard(rows []model.SocialIndicator) []Bucket {
	out := GroupMean(rows,
		func(s model.SocialIndicator) string { return s.Ward },
		func(s model.SocialIndicator) float64 { return s.SafetyIndex },
	)
	for i := range out {
		out[i].Value = Round1(out[i].Value)
	}
	return out
}

// BusinessTypes returns the sorted distinct business types.
func BusinessTypes(rows []model.Business) []string {
	seen := make(map[string]bool)
	for _, b := range rows {
		seen[b.BusinessType] = true
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// BusinessesByType totals business count per business type.
func BusinessesByType(rows []model.Business) []Bucket {
	return GroupSum(rows,
		func(b model.Business) string { return b.BusinessType },
		func(b model.Business) float64 { return float64(b.Count) },
	)
}

// BusinessDistribution totals business count per ward, stacked by business
// type. Wards and types are sorted; missing combinations are 0.
func BusinessDistribution(rows []model.Business) StackedSeries {
	wardSet := make(map[string]bool)
	for _, b := range rows {
		wardSet[b.Ward] = true
	}
	wards := make([]string, 0, len(wardSet))
	for w := range wardSet {
		wards = append(wards, w)
	}
	sort.Strings(wards)

	index := make(map[string]int, len(wards))
	for i, w := range wards {
		index[w] = i
	}

	types := BusinessTypes(rows)
	byType := make(map[string][]float64, len(types))
	for _, t := range types {
		byType[t] = make([]float64, len(wards))
	}
	for _, b := range rows {
		byType[b.BusinessType][index[b.Ward]] += float64(b.Count)
	}

	out := StackedSeries{Categories: wards, Series: make([]Series, 0, len(types))}
	for _, t := range types {
		out.Series = append(out.Series, Series{Name: t, Values: byType[t]})
	}
	return out
}

// FilterBusinessType keeps rows of one business type. An empty type keeps all.
func FilterBusinessType(rows []model.Business, businessType string) []model.Business {
	if businessType == "" {
		return rows
	}
	out := make([]model.Business, 0)
	for _, b := range rows {
		if b.BusinessType == businessType {
			out = append(out, b)
		}
	}
	return out
}
