// Package ward narrows datasets to a single administrative ward.
package ward

import "github.com/karad-smartcity/cityanalytics/internal/model"

// Filter returns the rows whose ward equals selected, in their original
// order. Selecting model.AllWards returns rows itself, without copying.
// No match yields an empty, non-nil slice.
func Filter[T model.WardKeyed](rows []T, selected string) []T {
	if selected == model.AllWards {
		return rows
	}
	out := make([]T, 0)
	for _, r := range rows {
		if r.WardOf() == selected {
			out = append(out, r)
		}
	}
	return out
}

// FilterAll applies Filter to each of the four datasets.
func FilterAll(ds *model.Datasets, selected string) *model.Datasets {
	if selected == model.AllWards {
		return ds
	}
	return &model.Datasets{
		Traffic:  Filter(ds.Traffic, selected),
		Services: Filter(ds.Services, selected),
		Business: Filter(ds.Business, selected),
		Social:   Filter(ds.Social, selected),
	}
}

// Valid reports whether selected is the all-wards sentinel or one of wards.
func Valid(selected string, wards []string) bool {
	if selected == model.AllWards {
		return true
	}
	for _, w := range wards {
		if w == selected {
			return true
		}
	}
	return false
}
