// Package export writes the dashboard series of one ward as an XLSX workbook.
package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/karad-smartcity/cityanalytics/internal/analytics"
	"github.com/karad-smartcity/cityanalytics/internal/model"
	"github.com/karad-smartcity/cityanalytics/internal/ward"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names, in workbook order.
const (
	SheetKPIs            = "KPIs"
	SheetAccidentsByWard = "Accidents by Ward"
	SheetAccidentsByHour = "Accidents by Hour"
	SheetVehicleTypes    = "Vehicle Types"
	SheetWaterIssues     = "Water Issues"
	SheetBusinesses      = "Businesses"
	SheetSafetyIndex     = "Safety Index"
)

// Filename returns the download name for a ward's workbook.
func Filename(selected string) string {
	if selected == "" || selected == model.AllWards {
		return "Karad_Smart_City_All_Wards.xlsx"
	}
	return "Karad_Smart_City_" + sanitize(selected) + ".xlsx"
}

// Workbook builds the workbook for the selected ward. The accidents-by-ward
// sheet always covers the whole city, like the overview chart.
func Workbook(ds *model.Datasets, selected string) (*xlsx.File, error) {
	filtered := ward.FilterAll(ds, selected)
	f := xlsx.NewFile()

	kpis := analytics.ComputeKPIs(filtered)
	sheet, err := f.AddSheet(SheetKPIs)
	if err != nil {
		return nil, eris.Wrapf(err, "export: add sheet %s", SheetKPIs)
	}
	addHeader(sheet, "Ward", "KPI", "Value")
	for _, k := range kpis.Cards() {
		row := sheet.AddRow()
		row.AddCell().SetString(wardLabel(selected))
		row.AddCell().SetString(k.Label)
		if k.Available {
			row.AddCell().SetFloat(k.Value)
		} else {
			row.AddCell().SetString(analytics.NotAvailable)
		}
	}

	series := []struct {
		name    string
		columns [2]string
		buckets []analytics.Bucket
	}{
		{SheetAccidentsByWard, [2]string{"Ward", "Accidents"}, analytics.AccidentsByWard(ds.Traffic)},
		{SheetAccidentsByHour, [2]string{"Hour", "Accidents"}, analytics.AccidentsByHour(filtered.Traffic)},
		{SheetVehicleTypes, [2]string{"Vehicle Type", "Accidents"}, analytics.VehicleTypeShares(filtered.Traffic)},
		{SheetWaterIssues, [2]string{"Ward", "Water Issues"}, analytics.WaterIssuesByWard(filtered.Services)},
		{SheetBusinesses, [2]string{"Business Type", "Count"}, analytics.BusinessesByType(filtered.Business)},
		{SheetSafetyIndex, [2]string{"Ward", "Safety Index"}, analytics.SafetyByWard(filtered.Social)},
	}
	for _, s := range series {
		if err := addSeries(f, s.name, s.columns, s.buckets); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Write streams the workbook for the selected ward to w.
func Write(w io.Writer, ds *model.Datasets, selected string) error {
	f, err := Workbook(ds, selected)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write workbook")
}

func addSeries(f *xlsx.File, name string, columns [2]string, buckets []analytics.Bucket) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", name)
	}
	withShare := false
	for _, b := range buckets {
		if b.Share != 0 {
			withShare = true
			break
		}
	}
	if withShare {
		addHeader(sheet, columns[0], columns[1], "Share %")
	} else {
		addHeader(sheet, columns[0], columns[1])
	}
	for _, b := range buckets {
		row := sheet.AddRow()
		row.AddCell().SetString(b.Category)
		row.AddCell().SetFloat(b.Value)
		if withShare {
			row.AddCell().SetFloat(b.Share)
		}
	}
	return nil
}

func addHeader(sheet *xlsx.Sheet, names ...string) {
	row := sheet.AddRow()
	for _, n := range names {
		row.AddCell().SetString(n)
	}
}

func wardLabel(selected string) string {
	if selected == "" {
		return model.AllWards
	}
	return selected
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
