package returns

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type historicalFile struct {
	Series []HistoricalSeries `yaml:"series"`
}

// LoadHistoricalSeries reads the bundled annual stock/bond return series
// used by historical-replay mode.
func LoadHistoricalSeries(path string) ([]HistoricalSeries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read historical return data %s: %w", path, err)
	}
	var f historicalFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse historical return data: %w", err)
	}
	return f.Series, nil
}
