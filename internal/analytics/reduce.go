// Package analytics computes KPI values and chart series from ward datasets.
// Every function is a pure reduction over its input; nothing is cached.
package analytics

import (
	"math"
	"sort"
	"strconv"
)

// Bucket is one (category, value) pair of a grouped series.
type Bucket struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Share    float64 `json:"share,omitempty"` // percentage of the series total, pie charts only
}

// Count returns the number of rows.
func Count[T any](rows []T) int {
	return len(rows)
}

// Sum totals a numeric column. The sum of no rows is 0.
func Sum[T any](rows []T, val func(T) float64) float64 {
	var total float64
	for _, r := range rows {
		total += val(r)
	}
	return total
}

// SumInt totals an integer column.
func SumInt[T any](rows []T, val func(T) int) int {
	var total int
	for _, r := range rows {
		total += val(r)
	}
	return total
}

// Mean returns the arithmetic mean of a numeric column. ok is false when
// rows is empty; the mean of nothing is undefined, not zero.
func Mean[T any](rows []T, val func(T) float64) (mean float64, ok bool) {
	if len(rows) == 0 {
		return 0, false
	}
	return Sum(rows, val) / float64(len(rows)), true
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// GroupCount counts rows per distinct key, ordered by key.
func GroupCount[T any](rows []T, key func(T) string) []Bucket {
	return GroupSum(rows, key, func(T) float64 { return 1 })
}

// GroupSum totals val per distinct key, ordered by key.
func GroupSum[T any](rows []T, key func(T) string, val func(T) float64) []Bucket {
	totals := make(map[string]float64)
	for _, r := range rows {
		totals[key(r)] += val(r)
	}
	return buckets(totals)
}

// GroupMean averages val per distinct key, ordered by key.
func GroupMean[T any](rows []T, key func(T) string, val func(T) float64) []Bucket {
	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range rows {
		k := key(r)
		totals[k] += val(r)
		counts[k]++
	}
	for k, n := range counts {
		totals[k] /= float64(n)
	}
	return buckets(totals)
}

// WithShares fills in each bucket's percentage of the total. A zero total
// leaves all shares at zero.
func WithShares(in []Bucket) []Bucket {
	var total float64
	for _, b := range in {
		total += b.Value
	}
	out := make([]Bucket, len(in))
	for i, b := range in {
		out[i] = b
		if total != 0 {
			out[i].Share = Round1(b.Value / total * 100)
		}
	}
	return out
}

func buckets(m map[string]float64) []Bucket {
	out := make([]Bucket, 0, len(m))
	for k, v := range m {
		out = append(out, Bucket{Category: k, Value: v})
	}
	SortCategories(out)
	return out
}

// SortCategories orders buckets by category: numerically when every
// category is an integer (hours), lexically otherwise.
func SortCategories(b []Bucket) {
	numeric := true
	nums := make(map[string]int, len(b))
	for _, x := range b {
		n, err := strconv.Atoi(x.Category)
		if err != nil {
			numeric = false
			break
		}
		nums[x.Category] = n
	}
	sort.SliceStable(b, func(i, j int) bool {
		if numeric {
			return nums[b[i].Category] < nums[b[j].Category]
		}
		return b[i].Category < b[j].Category
	})
}
