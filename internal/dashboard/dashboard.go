// Package dashboard renders dashboard pages as data: each call takes the
// loaded datasets and a State and runs filter, then aggregate.
package dashboard

import (
	"github.com/rotisserie/eris"

	"github.com/karad-smartcity/cityanalytics/internal/analytics"
	"github.com/karad-smartcity/cityanalytics/internal/dataset"
	"github.com/karad-smartcity/cityanalytics/internal/geo"
	"github.com/karad-smartcity/cityanalytics/internal/model"
	"github.com/karad-smartcity/cityanalytics/internal/risk"
	"github.com/karad-smartcity/cityanalytics/internal/ward"
)

// NoDataMessage is shown when the selected ward has no rows for a view.
const NoDataMessage = "No data available for this ward."

// KPI scopes.
const (
	ScopeWard = "ward"
	ScopeCity = "city"
)

// Options configures page computation.
type Options struct {
	KPIScope  string // ScopeWard or ScopeCity
	MapCenter geo.LatLon
	MapZoom   int
}

// Dashboard serves pages over a read-only dataset snapshot.
type Dashboard struct {
	ds       *model.Datasets
	selector []string // ward selector options, without "All"
	known    []string // every ward present in any dataset
	opts     Options
}

// New wraps a loaded dataset snapshot.
func New(ds *model.Datasets, opts Options) *Dashboard {
	if opts.KPIScope == "" {
		opts.KPIScope = ScopeWard
	}
	if opts.MapCenter == (geo.LatLon{}) {
		opts.MapCenter = geo.KaradCenter
	}
	if opts.MapZoom == 0 {
		opts.MapZoom = 11
	}
	return &Dashboard{
		ds:       ds,
		selector: dataset.Wards(ds),
		known:    dataset.AllWards(ds),
		opts:     opts,
	}
}

// Datasets returns the underlying snapshot.
func (d *Dashboard) Datasets() *model.Datasets { return d.ds }

// WardOptions returns the ward selector: "All" followed by the sorted wards.
func (d *Dashboard) WardOptions() []string {
	return append([]string{model.AllWards}, d.selector...)
}

// Page is the data behind one rendered dashboard view.
type Page struct {
	State     State          `json:"state"`
	Wards     []string       `json:"wards"`
	Views     []model.View   `json:"views"`
	Empty     bool           `json:"empty"`
	Message   string         `json:"message,omitempty"`
	Overview  *OverviewData  `json:"overview,omitempty"`
	Traffic   *TrafficData   `json:"traffic,omitempty"`
	Services  *ServicesData  `json:"services,omitempty"`
	Business  *BusinessData  `json:"business,omitempty"`
	Social    *SocialData    `json:"social,omitempty"`
	Simulator *SimulatorData `json:"simulator,omitempty"`
}

// OverviewData backs the city overview.
type OverviewData struct {
	KPIs            analytics.KPIs     `json:"kpis"`
	KPIScope        string             `json:"kpi_scope"`
	AccidentsByWard []analytics.Bucket `json:"accidents_by_ward"`
}

// TrafficData backs the traffic and accident analysis view.
type TrafficData struct {
	ByHour        []analytics.Bucket `json:"by_hour"`
	ByVehicleType []analytics.Bucket `json:"by_vehicle_type"`
	BySeverity    []analytics.Bucket `json:"by_severity"`
	Map           *geo.Map           `json:"map"`
}

// ServicesData backs the public services view.
type ServicesData struct {
	WaterIssuesByWard []analytics.Bucket `json:"water_issues_by_ward"`
}

// BusinessData backs the business intelligence view. Distribution is set
// for bar charts, ByType for pie charts.
type BusinessData struct {
	Types        []string                 `json:"types"`
	Chart        model.ChartType          `json:"chart"`
	Distribution *analytics.StackedSeries `json:"distribution,omitempty"`
	ByType       []analytics.Bucket       `json:"by_type,omitempty"`
}

// SocialData backs the social impact view.
type SocialData struct {
	SafetyByWard []analytics.Bucket `json:"safety_by_ward"`
}

// SimulatorData describes the what-if form and its default result.
type SimulatorData struct {
	MinControl int            `json:"min_control"`
	MaxControl int            `json:"max_control"`
	Weathers   []risk.Weather `json:"weathers"`
	Default    risk.Result    `json:"default"`
}

// Validate checks a state against the loaded wards.
func (d *Dashboard) Validate(s State) error {
	if !ward.Valid(s.Ward, d.known) {
		return eris.Wrapf(ErrInvalidState, "unknown ward %q", s.Ward)
	}
	known := false
	for _, v := range model.Views {
		if v == s.View {
			known = true
			break
		}
	}
	if !known {
		return eris.Wrapf(ErrInvalidState, "unknown view %q", s.View)
	}
	if _, ok := model.ParseChartType(string(s.Chart)); !ok {
		return eris.Wrapf(ErrInvalidState, "unknown chart type %q", s.Chart)
	}
	if s.BusinessType != "" {
		found := false
		for _, t := range analytics.BusinessTypes(d.ds.Business) {
			if t == s.BusinessType {
				found = true
				break
			}
		}
		if !found {
			return eris.Wrapf(ErrInvalidState, "unknown business type %q", s.BusinessType)
		}
	}
	return nil
}

// Handle computes the page for a state.
func (d *Dashboard) Handle(s State) (*Page, error) {
	if s.Chart == "" {
		s.Chart = model.ChartBar
	}
	if err := d.Validate(s); err != nil {
		return nil, err
	}

	filtered := ward.FilterAll(d.ds, s.Ward)
	page := &Page{State: s, Wards: d.WardOptions(), Views: model.Views}

	switch s.View {
	case model.ViewOverview:
		page.Overview = &OverviewData{
			KPIs:            d.kpis(filtered),
			KPIScope:        d.opts.KPIScope,
			AccidentsByWard: analytics.AccidentsByWard(d.ds.Traffic),
		}
	case model.ViewTraffic:
		if len(filtered.Traffic) == 0 {
			page.markEmpty()
			break
		}
		m, err := geo.BuildMap(filtered.Traffic, d.opts.MapCenter, d.opts.MapZoom)
		if err != nil {
			return nil, err
		}
		page.Traffic = &TrafficData{
			ByHour:        analytics.AccidentsByHour(filtered.Traffic),
			ByVehicleType: analytics.VehicleTypeShares(filtered.Traffic),
			BySeverity:    analytics.AccidentsBySeverity(filtered.Traffic),
			Map:           m,
		}
	case model.ViewServices:
		page.Services = &ServicesData{WaterIssuesByWard: analytics.WaterIssuesByWard(filtered.Services)}
		if len(filtered.Services) == 0 {
			page.markEmpty()
		}
	case model.ViewBusiness:
		rows := analytics.FilterBusinessType(filtered.Business, s.BusinessType)
		bd := &BusinessData{Types: analytics.BusinessTypes(filtered.Business), Chart: s.Chart}
		if s.Chart == model.ChartPie {
			bd.ByType = analytics.WithShares(analytics.BusinessesByType(rows))
		} else {
			dist := analytics.BusinessDistribution(rows)
			bd.Distribution = &dist
		}
		page.Business = bd
		if len(rows) == 0 {
			page.markEmpty()
		}
	case model.ViewSocial:
		page.Social = &SocialData{SafetyByWard: analytics.SafetyByWard(filtered.Social)}
		if len(filtered.Social) == 0 {
			page.markEmpty()
		}
	case model.ViewSimulator:
		def, err := risk.Simulate(DefaultRiskInput())
		if err != nil {
			return nil, err
		}
		page.Simulator = &SimulatorData{
			MinControl: risk.MinControl,
			MaxControl: risk.MaxControl,
			Weathers:   risk.Weathers,
			Default:    def,
		}
	}
	return page, nil
}

// KPIs returns the overview cards for a ward under the configured scope.
func (d *Dashboard) KPIs(selected string) (analytics.KPIs, error) {
	if !ward.Valid(selected, d.known) {
		return analytics.KPIs{}, eris.Wrapf(ErrInvalidState, "unknown ward %q", selected)
	}
	return d.kpis(ward.FilterAll(d.ds, selected)), nil
}

func (d *Dashboard) kpis(filtered *model.Datasets) analytics.KPIs {
	if d.opts.KPIScope == ScopeCity {
		return analytics.ComputeKPIs(d.ds)
	}
	return analytics.ComputeKPIs(filtered)
}

// Map returns the accident map for a ward.
func (d *Dashboard) Map(selected string) (*geo.Map, error) {
	if !ward.Valid(selected, d.known) {
		return nil, eris.Wrapf(ErrInvalidState, "unknown ward %q", selected)
	}
	return geo.BuildMap(ward.Filter(d.ds.Traffic, selected), d.opts.MapCenter, d.opts.MapZoom)
}

// DefaultRiskInput is the initial position of the simulator controls.
func DefaultRiskInput() risk.Input {
	return risk.Input{TrafficDensity: 5, Weather: risk.Clear, PolicePresence: 5}
}

func (p *Page) markEmpty() {
	p.Empty = true
	p.Message = NoDataMessage
}
