package model

import "strings"

// View identifies one dashboard module.
type View string

const (
	ViewOverview  View = "City Overview"
	ViewTraffic   View = "Traffic & Accident Analysis"
	ViewServices  View = "Public Services"
	ViewBusiness  View = "Business Intelligence"
	ViewSocial    View = "Social Impact"
	ViewSimulator View = "What-If Simulator"
)

// Views lists the dashboard modules in menu order.
var Views = []View{
	ViewOverview,
	ViewTraffic,
	ViewServices,
	ViewBusiness,
	ViewSocial,
	ViewSimulator,
}

// viewSlugs maps short URL-friendly names to views.
var viewSlugs = map[string]View{
	"overview":  ViewOverview,
	"traffic":   ViewTraffic,
	"services":  ViewServices,
	"business":  ViewBusiness,
	"social":    ViewSocial,
	"simulator": ViewSimulator,
}

// ParseView accepts either the display name or the short slug of a view.
// An empty string selects the overview.
func ParseView(s string) (View, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ViewOverview, true
	}
	if v, ok := viewSlugs[strings.ToLower(s)]; ok {
		return v, true
	}
	for _, v := range Views {
		if strings.EqualFold(string(v), s) {
			return v, true
		}
	}
	return "", false
}

// Slug returns the short name of the view.
func (v View) Slug() string {
	for slug, view := range viewSlugs {
		if view == v {
			return slug
		}
	}
	return ""
}

// ChartType selects how a categorical series is drawn.
type ChartType string

const (
	ChartBar ChartType = "bar"
	ChartPie ChartType = "pie"
)

// ParseChartType parses a chart toggle value. Empty selects bar.
func ParseChartType(s string) (ChartType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bar":
		return ChartBar, true
	case "pie":
		return ChartPie, true
	default:
		return "", false
	}
}
