package report

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed insights.yaml
var defaultInsightsYAML []byte

type insightsFile struct {
	Insights []string `yaml:"insights"`
}

// DefaultInsights returns the built-in narrative block.
func DefaultInsights() []string {
	out, err := parseInsights(defaultInsightsYAML)
	if err != nil {
		panic(err) // embedded file is validated by tests
	}
	return out
}

// LoadInsights reads a narrative block from a YAML file with a top-level
// "insights" list. An empty path selects the built-in block.
func LoadInsights(path string) ([]string, error) {
	if path == "" {
		return DefaultInsights(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: read insights %s", path)
	}
	out, err := parseInsights(data)
	if err != nil {
		return nil, eris.Wrapf(err, "report: insights %s", path)
	}
	return out, nil
}

func parseInsights(data []byte) ([]string, error) {
	var f insightsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "parse yaml")
	}
	out := make([]string, 0, len(f.Insights))
	for _, s := range f.Insights {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, eris.New("no insights listed")
	}
	return out, nil
}
