// Package risk implements the what-if accident risk calculator. It does not
// depend on any dataset.
package risk

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalidInput is returned for inputs outside the simulator's controls.
var ErrInvalidInput = eris.New("risk: invalid input")

// Weather is the weather condition selector.
type Weather string

const (
	Clear Weather = "Clear"
	Rainy Weather = "Rainy"
	Foggy Weather = "Foggy"
)

// Weathers lists the selectable conditions, mildest first.
var Weathers = []Weather{Clear, Rainy, Foggy}

// ParseWeather parses a weather name case-insensitively.
func ParseWeather(s string) (Weather, error) {
	for _, w := range Weathers {
		if strings.EqualFold(strings.TrimSpace(s), string(w)) {
			return w, nil
		}
	}
	return "", eris.Wrapf(ErrInvalidInput, "unknown weather %q", s)
}

// adjustment is the score added for a weather condition.
func (w Weather) adjustment() int {
	switch w {
	case Rainy:
		return 5
	case Foggy:
		return 7
	default:
		return 0
	}
}

// Level is the qualitative risk bucket.
type Level string

const (
	Low    Level = "Low"
	Medium Level = "Medium"
	High   Level = "High"
)

const (
	// MinControl and MaxControl bound the traffic and police sliders.
	MinControl = 1
	MaxControl = 10

	highAbove   = 15
	mediumAbove = 8
)

// Input holds the three simulator controls.
type Input struct {
	TrafficDensity int     `json:"traffic_density"`
	Weather        Weather `json:"weather"`
	PolicePresence int     `json:"police_presence"`
}

// Result is the simulator output.
type Result struct {
	Input   Input  `json:"input"`
	Score   int    `json:"score"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Validate checks that the sliders are within range and the weather is known.
func (in Input) Validate() error {
	var problems []string
	if in.TrafficDensity < MinControl || in.TrafficDensity > MaxControl {
		problems = append(problems, fmt.Sprintf("traffic_density %d not in [%d,%d]", in.TrafficDensity, MinControl, MaxControl))
	}
	if in.PolicePresence < MinControl || in.PolicePresence > MaxControl {
		problems = append(problems, fmt.Sprintf("police_presence %d not in [%d,%d]", in.PolicePresence, MinControl, MaxControl))
	}
	switch in.Weather {
	case Clear, Rainy, Foggy:
	default:
		problems = append(problems, fmt.Sprintf("unknown weather %q", in.Weather))
	}
	if len(problems) > 0 {
		return eris.Wrap(ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// Score computes traffic*2 + weather adjustment - police. It is unbounded
// and may be negative.
func Score(in Input) int {
	return in.TrafficDensity*2 + in.Weather.adjustment() - in.PolicePresence
}

// Classify maps a score to a level: above 15 is High, above 8 is Medium,
// anything else is Low.
func Classify(score int) Level {
	switch {
	case score > highAbove:
		return High
	case score > mediumAbove:
		return Medium
	default:
		return Low
	}
}

var messages = map[Level]string{
	High:   "High accident risk: deploy additional traffic police and issue public advisories.",
	Medium: "Moderate accident risk: monitor junctions and increase patrol frequency.",
	Low:    "Low accident risk: normal operations.",
}

// Simulate validates the input and returns its score and level.
func Simulate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	score := Score(in)
	level := Classify(score)
	return Result{Input: in, Score: score, Level: level, Message: messages[level]}, nil
}
