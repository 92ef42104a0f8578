package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/karad-smartcity/cityanalytics/internal/dashboard"
	"github.com/karad-smartcity/cityanalytics/internal/model"
	"github.com/karad-smartcity/cityanalytics/internal/risk"
	"github.com/karad-smartcity/cityanalytics/internal/store"
)

func fixture() *model.Datasets {
	return &model.Datasets{
		Traffic: []model.TrafficAccident{
			{Ward: "Ward 1", Hour: 8, VehicleType: "Car", Severity: 3, Latitude: 17.27, Longitude: 74.18},
			{Ward: "Ward 2", Hour: 17, VehicleType: "Bike", Severity: 2, Latitude: 17.28, Longitude: 74.19},
		},
		Services: []model.PublicService{{Ward: "Ward 1", WaterIssues: 12}},
		Business: []model.Business{{Ward: "Ward 1", BusinessType: "Retail", Count: 1200}},
		Social:   []model.SocialIndicator{{Ward: "Ward 1", SafetyIndex: 6.5}},
	}
}

func newTestServer(t *testing.T, st store.Store, opts Options) *httptest.Server {
	t.Helper()
	srv := New(dashboard.New(fixture(), dashboard.Options{}), st, opts)
	srv.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, Options{})
	var body map[string]string
	resp := getJSON(t, ts.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestWardsAndViews(t *testing.T) {
	ts := newTestServer(t, nil, Options{})

	var wards []string
	getJSON(t, ts.URL+"/api/wards", &wards)
	assert.Equal(t, []string{"All", "Ward 1", "Ward 2"}, wards)

	var views []viewInfo
	getJSON(t, ts.URL+"/api/views", &views)
	require.Len(t, views, len(model.Views))
	assert.Equal(t, "overview", views[0].Slug)
	assert.Equal(t, model.ViewSimulator, views[5].Name)
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t, nil, Options{})

	var page dashboard.Page
	resp := getJSON(t, ts.URL+"/api/dashboard?ward=Ward+1&view=traffic", &page)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.ViewTraffic, page.State.View)
	require.NotNil(t, page.Traffic)
	assert.Len(t, page.Traffic.ByHour, 1)
}

func TestDashboard_InvalidState(t *testing.T) {
	ts := newTestServer(t, nil, Options{})

	var body map[string]string
	resp := getJSON(t, ts.URL+"/api/dashboard?view=weather", &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "unknown view")

	resp = getJSON(t, ts.URL+"/api/dashboard?ward=Ward+9", &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "unknown ward")
}

func TestKPIs(t *testing.T) {
	ts := newTestServer(t, nil, Options{})

	var body map[string]map[string]any
	resp := getJSON(t, ts.URL+"/api/kpis?ward=Ward+2", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", body["total_accidents"]["display"])
	assert.Equal(t, "n/a", body["avg_safety_index"]["display"])
}

func TestTrafficMap(t *testing.T) {
	ts := newTestServer(t, nil, Options{})

	var body struct {
		Zoom     int `json:"zoom"`
		Features struct {
			Type     string            `json:"type"`
			Features []json.RawMessage `json:"features"`
		} `json:"features"`
	}
	resp := getJSON(t, ts.URL+"/api/traffic/map", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 11, body.Zoom)
	assert.Equal(t, "FeatureCollection", body.Features.Type)
	assert.Len(t, body.Features.Features, 2)
}

func TestSimulate_Query(t *testing.T) {
	ts := newTestServer(t, nil, Options{})

	var res risk.Result
	resp := getJSON(t, ts.URL+"/api/simulate?traffic=9&weather=foggy&police=1", &res)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 24, res.Score)
	assert.Equal(t, risk.High, res.Level)

	resp = getJSON(t, ts.URL+"/api/simulate", &res)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, risk.Low, res.Level)
}

func TestSimulate_QueryInvalid(t *testing.T) {
	ts := newTestServer(t, nil, Options{})

	for _, q := range []string{"traffic=11", "traffic=abc", "weather=Snowy", "police=0"} {
		var body map[string]string
		resp := getJSON(t, ts.URL+"/api/simulate?"+q, &body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.NotEmpty(t, body["error"], q)
	}
}

func TestSimulate_JSON(t *testing.T) {
	ts := newTestServer(t, nil, Options{})

	body := strings.NewReader(`{"traffic_density":5,"weather":"rainy","police_presence":3}`)
	resp, err := http.Post(ts.URL+"/api/simulate", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	var res risk.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 12, res.Score)
	assert.Equal(t, risk.Medium, res.Level)
	assert.Equal(t, risk.Rainy, res.Input.Weather)
}

func TestSimulate_JSONBadBody(t *testing.T) {
	ts := newTestServer(t, nil, Options{})

	resp, err := http.Post(ts.URL+"/api/simulate", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReport_RecordsHistory(t *testing.T) {
	st := newSQLiteStore(t)
	ts := newTestServer(t, st, Options{})

	resp, err := http.Get(ts.URL + "/api/report.pdf")
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Karad_Smart_City_Report.pdf"`, resp.Header.Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	id := resp.Header.Get("X-Report-ID")
	require.NotEmpty(t, id)

	var list []model.ReportRecord
	getJSON(t, ts.URL+"/api/reports", &list)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, 2, list[0].Metrics.TotalAccidents)
	assert.Equal(t, 1200, list[0].Metrics.TotalBusinesses)
	assert.Equal(t, buf.Len(), list[0].SizeBytes)

	var rec model.ReportRecord
	resp = getJSON(t, ts.URL+"/api/reports/"+id, &rec)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, rec.Insights)
}

type failingStore struct{ store.Noop }

func (failingStore) RecordReport(context.Context, *model.ReportRecord) error {
	return errors.New("disk full")
}

func TestReport_StoreFailureStillServes(t *testing.T) {
	ts := newTestServer(t, failingStore{}, Options{Filename: "custom.pdf"})

	resp, err := http.Get(ts.URL + "/api/report.pdf")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Report-ID"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "custom.pdf")
}

func TestReports_NotFoundAndBadLimit(t *testing.T) {
	ts := newTestServer(t, newSQLiteStore(t), Options{})

	var body map[string]string
	resp := getJSON(t, ts.URL+"/api/reports/missing", &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = getJSON(t, ts.URL+"/api/reports?limit=abc", &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t, nil, Options{})

	resp, err := http.Get(ts.URL + "/api/export.xlsx?ward=Ward+1")
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Karad_Smart_City_Ward_1.xlsx")
	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 7)

	var body map[string]string
	resp = getJSON(t, ts.URL+"/api/export.xlsx?ward=Nowhere", &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, nil, Options{RateLimit: 0.001, RateBurst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(ts.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, nil, Options{CORSOrigins: []string{"https://karad.gov.in"}})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/wards", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://karad.gov.in")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://karad.gov.in", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t, nil, Options{})
	var body map[string]string
	resp := getJSON(t, ts.URL+"/api/nothing", &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", body["error"])
}
