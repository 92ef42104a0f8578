package dashboard

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/karad-smartcity/cityanalytics/internal/model"
)

// ErrInvalidState is returned for a selection the dashboard cannot render.
var ErrInvalidState = eris.New("dashboard: invalid state")

// State is one immutable snapshot of the user's selections. Handlers take a
// State and return a Page; nothing is remembered between calls.
type State struct {
	Ward         string          `json:"ward"`
	View         model.View      `json:"view"`
	Chart        model.ChartType `json:"chart"`
	BusinessType string          `json:"business_type,omitempty"`
}

// DefaultState is the landing selection: all wards, city overview.
func DefaultState() State {
	return State{Ward: model.AllWards, View: model.ViewOverview, Chart: model.ChartBar}
}

// WithWard returns a copy with the ward changed.
func (s State) WithWard(w string) State {
	s.Ward = w
	return s
}

// WithView returns a copy with the view changed.
func (s State) WithView(v model.View) State {
	s.View = v
	return s
}

// WithChart returns a copy with the chart type changed.
func (s State) WithChart(c model.ChartType) State {
	s.Chart = c
	return s
}

// WithBusinessType returns a copy with the business-type filter changed.
func (s State) WithBusinessType(t string) State {
	s.BusinessType = t
	return s
}

// ParseState builds a State from raw selector values. Empty values fall
// back to DefaultState.
func ParseState(ward, view, chart, businessType string) (State, error) {
	s := DefaultState()
	if w := strings.TrimSpace(ward); w != "" {
		s.Ward = w
	}
	v, ok := model.ParseView(view)
	if !ok {
		return State{}, eris.Wrapf(ErrInvalidState, "unknown view %q", view)
	}
	s.View = v
	c, ok := model.ParseChartType(chart)
	if !ok {
		return State{}, eris.Wrapf(ErrInvalidState, "unknown chart type %q", chart)
	}
	s.Chart = c
	s.BusinessType = strings.TrimSpace(businessType)
	return s, nil
}
