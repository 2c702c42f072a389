package fallback

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed mock.yaml
var defaultDataset []byte

// Loader reads the fallback dataset from a file, or from the built-in one
// when no file is configured.
type Loader struct {
	filePath string
}

// NewLoader creates a loader. An empty path selects the built-in dataset.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the dataset.
func (l *Loader) Load() (Dataset, error) {
	data := defaultDataset
	if l.filePath != "" {
		var err error
		data, err = os.ReadFile(l.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read fallback file: %w", err)
		}
	}

	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse fallback yaml: %w", err)
	}

	return ds, nil
}
