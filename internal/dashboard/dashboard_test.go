package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karad-smartcity/cityanalytics/internal/analytics"
	"github.com/karad-smartcity/cityanalytics/internal/model"
	"github.com/karad-smartcity/cityanalytics/internal/risk"
)

func fixture() *model.Datasets {
	return &model.Datasets{
		Traffic: []model.TrafficAccident{
			{Ward: "Ward 1", Hour: 8, VehicleType: "Car", Severity: 3, Latitude: 17.27, Longitude: 74.18},
			{Ward: "Ward 2", Hour: 17, VehicleType: "Bike", Severity: 2, Latitude: 17.28, Longitude: 74.19},
			{Ward: "Ward 1", Hour: 8, VehicleType: "Bike", Severity: 4, Latitude: 17.26, Longitude: 74.17},
		},
		Services: []model.PublicService{{Ward: "Ward 1", WaterIssues: 12}, {Ward: "Ward 2", WaterIssues: 7}},
		Business: []model.Business{
			{Ward: "Ward 1", BusinessType: "Retail", Count: 40},
			{Ward: "Ward 1", BusinessType: "Food", Count: 15},
			{Ward: "Ward 3", BusinessType: "Retail", Count: 22},
		},
		Social: []model.SocialIndicator{{Ward: "Ward 1", SafetyIndex: 6.5}, {Ward: "Ward 2", SafetyIndex: 7.25}},
	}
}

func newDashboard(scope string) *Dashboard {
	return New(fixture(), Options{KPIScope: scope})
}

func TestParseState_Defaults(t *testing.T) {
	s, err := ParseState("", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultState(), s)
}

func TestParseState_Values(t *testing.T) {
	s, err := ParseState(" Ward 1 ", "business", "pie", "Retail")
	require.NoError(t, err)
	assert.Equal(t, State{Ward: "Ward 1", View: model.ViewBusiness, Chart: model.ChartPie, BusinessType: "Retail"}, s)
}

func TestParseState_Invalid(t *testing.T) {
	_, err := ParseState("", "weather", "", "")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = ParseState("", "", "radar", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestState_WithReturnsCopies(t *testing.T) {
	base := DefaultState()
	next := base.WithWard("Ward 2").WithView(model.ViewSocial).WithChart(model.ChartPie).WithBusinessType("Food")

	assert.Equal(t, DefaultState(), base)
	assert.Equal(t, "Ward 2", next.Ward)
	assert.Equal(t, model.ViewSocial, next.View)
	assert.Equal(t, model.ChartPie, next.Chart)
	assert.Equal(t, "Food", next.BusinessType)
}

func TestWardOptions(t *testing.T) {
	assert.Equal(t, []string{"All", "Ward 1", "Ward 2"}, newDashboard(ScopeWard).WardOptions())
}

func TestHandle_OverviewWardScope(t *testing.T) {
	d := newDashboard(ScopeWard)
	page, err := d.Handle(DefaultState().WithWard("Ward 1"))
	require.NoError(t, err)
	require.NotNil(t, page.Overview)

	assert.InDelta(t, 2, page.Overview.KPIs.TotalAccidents.Value, 1e-9)
	assert.InDelta(t, 55, page.Overview.KPIs.TotalBusinesses.Value, 1e-9)
	assert.Equal(t, ScopeWard, page.Overview.KPIScope)
	// The ward chart always covers the whole city.
	assert.Equal(t, []analytics.Bucket{
		{Category: "Ward 1", Value: 2},
		{Category: "Ward 2", Value: 1},
	}, page.Overview.AccidentsByWard)
	assert.Nil(t, page.Traffic)
	assert.Equal(t, model.Views, page.Views)
}

func TestHandle_OverviewCityScope(t *testing.T) {
	d := newDashboard(ScopeCity)
	page, err := d.Handle(DefaultState().WithWard("Ward 1"))
	require.NoError(t, err)
	assert.InDelta(t, 3, page.Overview.KPIs.TotalAccidents.Value, 1e-9)
	assert.InDelta(t, 77, page.Overview.KPIs.TotalBusinesses.Value, 1e-9)
}

func TestHandle_OverviewUnfilteredCountMatchesRows(t *testing.T) {
	d := newDashboard(ScopeWard)
	page, err := d.Handle(DefaultState())
	require.NoError(t, err)
	assert.InDelta(t, float64(len(d.Datasets().Traffic)), page.Overview.KPIs.TotalAccidents.Value, 1e-9)
}

func TestHandle_Traffic(t *testing.T) {
	d := newDashboard(ScopeWard)
	page, err := d.Handle(DefaultState().WithView(model.ViewTraffic).WithWard("Ward 1"))
	require.NoError(t, err)
	require.NotNil(t, page.Traffic)
	assert.False(t, page.Empty)

	assert.Equal(t, []analytics.Bucket{{Category: "8", Value: 2}}, page.Traffic.ByHour)
	assert.Len(t, page.Traffic.ByVehicleType, 2)
	require.NotNil(t, page.Traffic.Map)
	assert.Equal(t, 11, page.Traffic.Map.Zoom)

	var fc struct {
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal(page.Traffic.Map.Features, &fc))
	assert.Len(t, fc.Features, 2)
}

func TestHandle_TrafficEmptyWard(t *testing.T) {
	d := newDashboard(ScopeWard)
	// Ward 3 only has businesses.
	page, err := d.Handle(DefaultState().WithView(model.ViewTraffic).WithWard("Ward 3"))
	require.NoError(t, err)
	assert.True(t, page.Empty)
	assert.Equal(t, NoDataMessage, page.Message)
	assert.Nil(t, page.Traffic)
}

func TestHandle_Services(t *testing.T) {
	page, err := newDashboard(ScopeWard).Handle(DefaultState().WithView(model.ViewServices))
	require.NoError(t, err)
	assert.Len(t, page.Services.WaterIssuesByWard, 2)
	assert.False(t, page.Empty)

	page, err = newDashboard(ScopeWard).Handle(DefaultState().WithView(model.ViewServices).WithWard("Ward 3"))
	require.NoError(t, err)
	assert.True(t, page.Empty)
	assert.Empty(t, page.Services.WaterIssuesByWard)
}

func TestHandle_BusinessBar(t *testing.T) {
	page, err := newDashboard(ScopeWard).Handle(DefaultState().WithView(model.ViewBusiness))
	require.NoError(t, err)
	require.NotNil(t, page.Business.Distribution)
	assert.Nil(t, page.Business.ByType)
	assert.Equal(t, []string{"Food", "Retail"}, page.Business.Types)
	assert.Equal(t, []string{"Ward 1", "Ward 3"}, page.Business.Distribution.Categories)
}

func TestHandle_BusinessPieWithTypeFilter(t *testing.T) {
	s := DefaultState().WithView(model.ViewBusiness).WithChart(model.ChartPie).WithBusinessType("Retail")
	page, err := newDashboard(ScopeWard).Handle(s)
	require.NoError(t, err)
	assert.Nil(t, page.Business.Distribution)
	assert.Equal(t, []analytics.Bucket{{Category: "Retail", Value: 62, Share: 100}}, page.Business.ByType)
}

func TestHandle_BusinessFilterEmptyForWard(t *testing.T) {
	s := DefaultState().WithView(model.ViewBusiness).WithWard("Ward 3").WithBusinessType("Food")
	page, err := newDashboard(ScopeWard).Handle(s)
	require.NoError(t, err)
	assert.True(t, page.Empty)
	assert.Equal(t, []string{"Retail"}, page.Business.Types)
}

func TestHandle_Social(t *testing.T) {
	page, err := newDashboard(ScopeWard).Handle(DefaultState().WithView(model.ViewSocial).WithWard("Ward 2"))
	require.NoError(t, err)
	assert.Equal(t, []analytics.Bucket{{Category: "Ward 2", Value: 7.3}}, page.Social.SafetyByWard)
}

func TestHandle_Simulator(t *testing.T) {
	page, err := newDashboard(ScopeWard).Handle(DefaultState().WithView(model.ViewSimulator))
	require.NoError(t, err)
	require.NotNil(t, page.Simulator)
	assert.Equal(t, 1, page.Simulator.MinControl)
	assert.Equal(t, 10, page.Simulator.MaxControl)
	assert.Equal(t, risk.Weathers, page.Simulator.Weathers)
	assert.Equal(t, 5, page.Simulator.Default.Score)
	assert.Equal(t, risk.Low, page.Simulator.Default.Level)
}

func TestHandle_InvalidStates(t *testing.T) {
	d := newDashboard(ScopeWard)
	tests := []struct {
		name  string
		state State
	}{
		{"unknown ward", DefaultState().WithWard("Ward 99")},
		{"unknown view", DefaultState().WithView("Weather")},
		{"unknown chart", DefaultState().WithChart("radar")},
		{"unknown business type", DefaultState().WithView(model.ViewBusiness).WithBusinessType("Mining")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Handle(tt.state)
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}

func TestHandle_DoesNotMutateDatasets(t *testing.T) {
	d := newDashboard(ScopeWard)
	before := *fixture()
	for _, v := range model.Views {
		_, err := d.Handle(DefaultState().WithView(v).WithWard("Ward 1"))
		require.NoError(t, err)
	}
	assert.Equal(t, before, *d.Datasets())
}

func TestKPIs(t *testing.T) {
	d := newDashboard(ScopeWard)
	k, err := d.KPIs("Ward 2")
	require.NoError(t, err)
	assert.InDelta(t, 1, k.TotalAccidents.Value, 1e-9)
	assert.Equal(t, "7.3", k.AvgSafetyIndex.Display)

	_, err = d.KPIs("nowhere")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestMap(t *testing.T) {
	d := newDashboard(ScopeWard)
	m, err := d.Map(model.AllWards)
	require.NoError(t, err)
	assert.Contains(t, string(m.Features), "accident-3")

	_, err = d.Map("nowhere")
	assert.ErrorIs(t, err, ErrInvalidState)
}
