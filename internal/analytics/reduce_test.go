package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	k string
	v float64
}

func key(r row) string { return r.k }
func val(r row) float64 { return r.v }

func TestCount(t *testing.T) {
	assert.Equal(t, 0, Count([]row(nil)))
	assert.Equal(t, 3, Count([]row{{}, {}, {}}))
}

func TestSum(t *testing.T) {
	assert.InDelta(t, 0, Sum([]row{}, val), 1e-9)
	assert.InDelta(t, 6.5, Sum([]row{{v: 1.5}, {v: 5}}, val), 1e-9)
	assert.Equal(t, 7, SumInt([]row{{v: 3}, {v: 4}}, func(r row) int { return int(r.v) }))
}

func TestMean(t *testing.T) {
	_, ok := Mean([]row{}, val)
	assert.False(t, ok)

	m, ok := Mean([]row{{v: 1}, {v: 2}, {v: 4}}, val)
	require.True(t, ok)
	assert.InDelta(t, 7.0/3.0, m, 1e-9)
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{6.875, 6.9},
		{6.25, 6.3},
		{6.24, 6.2},
		{7.0, 7.0},
		{-1.25, -1.3},
		{0.05, 0.1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round1(tt.in), 1e-9, "Round1(%v)", tt.in)
	}
}

func TestGroupCount_LexicalOrder(t *testing.T) {
	got := GroupCount([]row{{k: "Ward 2"}, {k: "Ward 1"}, {k: "Ward 2"}, {k: "Ward 10"}}, key)
	assert.Equal(t, []Bucket{
		{Category: "Ward 1", Value: 1},
		{Category: "Ward 10", Value: 1},
		{Category: "Ward 2", Value: 2},
	}, got)
}

func TestGroupCount_NumericOrder(t *testing.T) {
	got := GroupCount([]row{{k: "17"}, {k: "8"}, {k: "23"}, {k: "8"}}, key)
	require.Len(t, got, 3)
	assert.Equal(t, "8", got[0].Category)
	assert.InDelta(t, 2, got[0].Value, 1e-9)
	assert.Equal(t, "17", got[1].Category)
	assert.Equal(t, "23", got[2].Category)
}

func TestGroupCount_TotalEqualsRowCount(t *testing.T) {
	rows := []row{{k: "a"}, {k: "b"}, {k: "a"}, {k: "c"}, {k: "a"}}
	var total float64
	for _, b := range GroupCount(rows, key) {
		total += b.Value
	}
	assert.InDelta(t, float64(len(rows)), total, 1e-9)
}

func TestGroupCount_Empty(t *testing.T) {
	got := GroupCount([]row{}, key)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGroupSumAndMean(t *testing.T) {
	rows := []row{{"a", 2}, {"b", 3}, {"a", 4}}
	assert.Equal(t, []Bucket{{Category: "a", Value: 6}, {Category: "b", Value: 3}}, GroupSum(rows, key, val))
	assert.Equal(t, []Bucket{{Category: "a", Value: 3}, {Category: "b", Value: 3}}, GroupMean(rows, key, val))
}

func TestWithShares(t *testing.T) {
	got := WithShares([]Bucket{{Category: "Car", Value: 1}, {Category: "Bike", Value: 2}})
	assert.InDelta(t, 33.3, got[0].Share, 1e-9)
	assert.InDelta(t, 66.7, got[1].Share, 1e-9)

	zero := WithShares([]Bucket{{Category: "Car"}})
	assert.Zero(t, zero[0].Share)
}
