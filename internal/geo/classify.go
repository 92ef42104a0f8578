package geo

// Severity classes of an accident marker.
const (
	ClassMinor    = "minor"
	ClassModerate = "moderate"
	ClassSerious  = "serious"
	ClassSevere   = "severe"
)

// Severity thresholds for classification (inclusive upper bounds).
const (
	minorMax    = 1
	moderateMax = 2
	seriousMax  = 3
)

// Marker is how one accident is drawn on the map.
type Marker struct {
	Class  string
	Radius int    // pixels
	Color  string // hex RGB
}

var markers = map[string]Marker{
	ClassMinor:    {Class: ClassMinor, Radius: 4, Color: "#f6c342"},
	ClassModerate: {Class: ClassModerate, Radius: 6, Color: "#f08a24"},
	ClassSerious:  {Class: ClassSerious, Radius: 8, Color: "#e0452b"},
	ClassSevere:   {Class: ClassSevere, Radius: 10, Color: "#8b0f1a"},
}

// Classify returns the marker class for a severity.
// Rules:
//   - minor: severity <= 1
//   - moderate: severity 2
//   - serious: severity 3
//   - severe: severity >= 4
func Classify(severity int) string {
	switch {
	case severity <= minorMax:
		return ClassMinor
	case severity <= moderateMax:
		return ClassModerate
	case severity <= seriousMax:
		return ClassSerious
	default:
		return ClassSevere
	}
}

// MarkerFor sizes and colours a marker by severity.
func MarkerFor(severity int) Marker {
	return markers[Classify(severity)]
}
