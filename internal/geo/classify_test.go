package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		severity int
		expected string
	}{
		{name: "minor: zero", severity: 0, expected: ClassMinor},
		{name: "minor: at threshold", severity: 1, expected: ClassMinor},
		{name: "moderate", severity: 2, expected: ClassModerate},
		{name: "serious", severity: 3, expected: ClassSerious},
		{name: "severe: at threshold", severity: 4, expected: ClassSevere},
		{name: "severe: above scale", severity: 9, expected: ClassSevere},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.severity))
		})
	}
}

func TestMarkerFor_GrowsWithSeverity(t *testing.T) {
	prev := 0
	for sev := 1; sev <= 5; sev++ {
		m := MarkerFor(sev)
		assert.GreaterOrEqual(t, m.Radius, prev, "severity %d", sev)
		assert.NotEmpty(t, m.Color)
		prev = m.Radius
	}
	assert.Equal(t, ClassSevere, MarkerFor(5).Class)
}
