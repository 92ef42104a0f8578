// Package report composes the downloadable city analytics PDF.
package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/karad-smartcity/cityanalytics/internal/analytics"
	"github.com/karad-smartcity/cityanalytics/internal/model"
)

// ContentType is the MIME type of a rendered report.
const ContentType = "application/pdf"

// DefaultFilename is the download name of the report.
const DefaultFilename = "Karad_Smart_City_Report.pdf"

// Metric is one printed metric line.
type Metric struct {
	Label string
	Value string
}

// Document is a composed report, ready to render.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Values      model.ReportMetrics
	Metrics     []Metric
	Insights    []string
}

// Options configures Compose.
type Options struct {
	Title  string
	Locale string // BCP 47 tag for number formatting, e.g. en-IN
	Now    time.Time
}

// Metrics computes the report's headline values from the full datasets.
func Metrics(ds *model.Datasets) model.ReportMetrics {
	m := model.ReportMetrics{
		TotalAccidents:  analytics.Count(ds.Traffic),
		TotalBusinesses: analytics.SumInt(ds.Business, func(b model.Business) int { return b.Count }),
	}
	m.AvgSafetyIndex, m.SafetyAvailable = analytics.AvgSafetyIndex(ds.Social)
	return m
}

// Compose builds a report from the dataset snapshot. Values are recomputed
// on every call.
func Compose(ds *model.Datasets, insights []string, opts Options) *Document {
	if opts.Title == "" {
		opts.Title = "Karad Smart City Analytics Report"
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	p := printer(opts.Locale)
	values := Metrics(ds)

	safety := analytics.NotAvailable
	if values.SafetyAvailable {
		safety = p.Sprintf("%.1f", values.AvgSafetyIndex)
	}

	return &Document{
		Title:       opts.Title,
		GeneratedAt: opts.Now,
		Values:      values,
		Metrics: []Metric{
			{Label: "Total Accidents", Value: p.Sprintf("%d", values.TotalAccidents)},
			{Label: "Total Businesses", Value: p.Sprintf("%d", values.TotalBusinesses)},
			{Label: "Average Safety Index", Value: safety},
		},
		Insights: append([]string(nil), insights...),
	}
}

func printer(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.MustParse("en-IN")
	}
	return message.NewPrinter(tag)
}

// Render writes the document as an A4 PDF. Layout failures are returned,
// not recovered.
func (d *Document) Render(w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(d.Title, true)
	pdf.SetCreator("cityanalytics", true)
	pdf.SetCreationDate(d.GeneratedAt)
	pdf.SetModificationDate(d.GeneratedAt)
	pdf.SetCompression(false)
	pdf.SetMargins(20, 20, 20)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Karad Smart City Analytics | Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(20, 40, 80)
	pdf.CellFormat(0, 12, tr(d.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, "Generated "+d.GeneratedAt.Format("02 Jan 2006 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	section(pdf, "Key Metrics")
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	for _, m := range d.Metrics {
		pdf.CellFormat(0, 8, tr(m.Label+": "+m.Value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	section(pdf, "Key Insights")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	for _, s := range d.Insights {
		pdf.CellFormat(6, 6, tr("•"), "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 6, tr(s), "", "L", false)
		pdf.Ln(1)
	}

	if err := pdf.Output(w); err != nil {
		return eris.Wrap(err, "report: render pdf")
	}
	return nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(20, 40, 80)
	pdf.CellFormat(0, 9, title, "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

// Bytes renders the document into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
