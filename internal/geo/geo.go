// Package geo turns accident rows into map geometry.
package geo

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/karad-smartcity/cityanalytics/internal/model"
)

// SRID is WGS 84; coordinates are (longitude, latitude).
const SRID = 4326

// LatLon is a map position.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// KaradCenter is the default map centre.
var KaradCenter = LatLon{Lat: 17.274, Lon: 74.182}

// Point converts one accident to a go-geom point.
func Point(t model.TrafficAccident) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{t.Longitude, t.Latitude}).SetSRID(SRID)
}

// Points converts accidents to a multipoint, preserving order.
func Points(rows []model.TrafficAccident) *geom.MultiPoint {
	flat := make([]float64, 0, 2*len(rows))
	for _, t := range rows {
		flat = append(flat, t.Longitude, t.Latitude)
	}
	return geom.NewMultiPointFlat(geom.XY, flat).SetSRID(SRID)
}

// Bounds returns the bounding box of the accidents. ok is false for no rows.
func Bounds(rows []model.TrafficAccident) (*geom.Bounds, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	return Points(rows).Bounds(), true
}

// Center is the centre of the accidents' bounding box, or fallback when
// there are none.
func Center(rows []model.TrafficAccident, fallback LatLon) LatLon {
	b, ok := Bounds(rows)
	if !ok {
		return fallback
	}
	return LatLon{
		Lat: (b.Min(1) + b.Max(1)) / 2,
		Lon: (b.Min(0) + b.Max(0)) / 2,
	}
}

// FeatureCollection renders accidents as GeoJSON point features. Severity
// drives marker size and colour on the client.
func FeatureCollection(rows []model.TrafficAccident) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(rows))}
	for i, t := range rows {
		m := MarkerFor(t.Severity)
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       fmt.Sprintf("accident-%d", i+1),
			Geometry: Point(t),
			Properties: map[string]interface{}{
				"ward":         t.Ward,
				"hour":         t.Hour,
				"vehicle_type": t.VehicleType,
				"severity":     t.Severity,
				"class":        m.Class,
				"radius":       m.Radius,
				"color":        m.Color,
			},
		})
	}
	if b, ok := Bounds(rows); ok {
		fc.BBox = b
	}
	return fc
}

// Map is the accident map payload: GeoJSON plus the initial viewport.
type Map struct {
	Center   LatLon          `json:"center"`
	Zoom     int             `json:"zoom"`
	Features json.RawMessage `json:"features"`
}

// BuildMap renders the accident map for the given rows. The viewport is the
// configured centre, so the map does not jump between ward selections.
func BuildMap(rows []model.TrafficAccident, center LatLon, zoom int) (*Map, error) {
	raw, err := json.Marshal(FeatureCollection(rows))
	if err != nil {
		return nil, eris.Wrap(err, "geo: marshal features")
	}
	return &Map{Center: center, Zoom: zoom, Features: raw}, nil
}
