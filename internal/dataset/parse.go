package dataset

import (
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/karad-smartcity/cityanalytics/internal/fetcher"
	"github.com/karad-smartcity/cityanalytics/internal/model"
)

func parseTraffic(rec fetcher.Record) (model.TrafficAccident, error) {
	var (
		t   model.TrafficAccident
		err error
	)
	if t.Ward, err = requireWard(rec); err != nil {
		return t, err
	}
	t.VehicleType = rec.Get("vehicle_type")
	if t.Hour, err = parseInt(rec, "hour"); err != nil {
		return t, err
	}
	if t.Hour < 0 || t.Hour > 23 {
		return t, eris.Errorf("hour %d out of range 0-23", t.Hour)
	}
	if t.Severity, err = parseInt(rec, "severity"); err != nil {
		return t, err
	}
	if t.Latitude, err = parseFloat(rec, "latitude"); err != nil {
		return t, err
	}
	if t.Longitude, err = parseFloat(rec, "longitude"); err != nil {
		return t, err
	}
	return t, nil
}

func parseService(rec fetcher.Record) (model.PublicService, error) {
	var (
		s   model.PublicService
		err error
	)
	if s.Ward, err = requireWard(rec); err != nil {
		return s, err
	}
	s.WaterIssues, err = parseInt(rec, "water_issues")
	return s, err
}

func parseBusiness(rec fetcher.Record) (model.Business, error) {
	var (
		b   model.Business
		err error
	)
	if b.Ward, err = requireWard(rec); err != nil {
		return b, err
	}
	b.BusinessType = rec.Get("business_type")
	b.Count, err = parseInt(rec, "count")
	return b, err
}

func parseSocial(rec fetcher.Record) (model.SocialIndicator, error) {
	var (
		s   model.SocialIndicator
		err error
	)
	if s.Ward, err = requireWard(rec); err != nil {
		return s, err
	}
	s.SafetyIndex, err = parseFloat(rec, "safety_index")
	return s, err
}

func requireWard(rec fetcher.Record) (string, error) {
	w := rec.Get("ward")
	if w == "" {
		return "", eris.New("ward is empty")
	}
	return w, nil
}

// parseInt accepts plain integers and integral floats such as "3.0", which
// spreadsheet exports tend to produce.
func parseInt(rec fetcher.Record, col string) (int, error) {
	raw := rec.Get(col)
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, eris.Errorf("%s: %q is not an integer", col, raw)
	}
	return int(f), nil
}

func parseFloat(rec fetcher.Record, col string) (float64, error) {
	raw := rec.Get(col)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, eris.Errorf("%s: %q is not a number", col, raw)
	}
	return f, nil
}
