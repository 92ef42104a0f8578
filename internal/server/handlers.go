package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/karad-smartcity/cityanalytics/internal/dashboard"
	"github.com/karad-smartcity/cityanalytics/internal/export"
	"github.com/karad-smartcity/cityanalytics/internal/model"
	"github.com/karad-smartcity/cityanalytics/internal/report"
	"github.com/karad-smartcity/cityanalytics/internal/risk"
	"github.com/karad-smartcity/cityanalytics/internal/store"
)

type viewInfo struct {
	Name model.View `json:"name"`
	Slug string     `json:"slug"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.WardOptions())
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	out := make([]viewInfo, 0, len(model.Views))
	for _, v := range model.Views {
		out = append(out, viewInfo{Name: v, Slug: v.Slug()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st, err := dashboard.ParseState(q.Get("ward"), q.Get("view"), q.Get("chart"), q.Get("business_type"))
	if err != nil {
		writeErr(w, err)
		return
	}
	page, err := s.dash.Handle(st)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	k, err := s.dash.KPIs(wardParam(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, k)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	m, err := s.dash.Map(wardParam(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleSimulateQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := dashboard.DefaultRiskInput()
	var err error
	if v := q.Get("traffic"); v != "" {
		if in.TrafficDensity, err = strconv.Atoi(v); err != nil {
			writeErr(w, eris.Wrapf(risk.ErrInvalidInput, "traffic %q is not an integer", v))
			return
		}
	}
	if v := q.Get("police"); v != "" {
		if in.PolicePresence, err = strconv.Atoi(v); err != nil {
			writeErr(w, eris.Wrapf(risk.ErrInvalidInput, "police %q is not an integer", v))
			return
		}
	}
	if v := q.Get("weather"); v != "" {
		if in.Weather, err = risk.ParseWeather(v); err != nil {
			writeErr(w, err)
			return
		}
	}
	s.simulate(w, in)
}

func (s *Server) handleSimulateJSON(w http.ResponseWriter, r *http.Request) {
	var in risk.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	weather, err := risk.ParseWeather(string(in.Weather))
	if err != nil {
		writeErr(w, err)
		return
	}
	in.Weather = weather
	s.simulate(w, in)
}

func (s *Server) simulate(w http.ResponseWriter, in risk.Input) {
	res, err := risk.Simulate(in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	opts := s.opts.Report
	opts.Now = s.now()
	doc := report.Compose(s.dash.Datasets(), s.opts.Insights, opts)
	data, err := doc.Bytes()
	if err != nil {
		writeErr(w, err)
		return
	}

	rec := &model.ReportRecord{
		Filename:  s.opts.Filename,
		Metrics:   doc.Values,
		Insights:  doc.Insights,
		SizeBytes: len(data),
		CreatedAt: opts.Now.UTC(),
	}
	if err := s.store.RecordReport(r.Context(), rec); err != nil {
		// A failed history write does not fail the download.
		zap.L().Warn("record report failed", zap.Error(err))
	} else {
		w.Header().Set("X-Report-ID", rec.ID)
	}

	writeAttachment(w, report.ContentType, s.opts.Filename, data)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}
	list, err := s.store.ListReports(r.Context(), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	selected := wardParam(r)
	if err := s.dash.Validate(dashboard.DefaultState().WithWard(selected)); err != nil {
		writeErr(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, s.dash.Datasets(), selected); err != nil {
		writeErr(w, err)
		return
	}
	writeAttachment(w, export.ContentType, export.Filename(selected), buf.Bytes())
}

func wardParam(r *http.Request) string {
	if v := r.URL.Query().Get("ward"); v != "" {
		return v
	}
	return model.AllWards
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps domain errors to status codes.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrInvalidState), errors.Is(err, risk.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		zap.L().Debug("write attachment", zap.Error(err))
	}
}
