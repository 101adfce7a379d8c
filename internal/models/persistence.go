package models

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadScenarios reads a YAML list of scenarios from path.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scenarios, err := parseScenarios(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenarios, nil
}

// SaveScenarios writes scenarios to path as YAML, creating parent
// directories as needed.
func SaveScenarios(path string, scenarios []Scenario) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := yaml.Marshal(scenarios)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func parseScenarios(data []byte) ([]Scenario, error) {
	var scenarios []Scenario
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(scenarios))
	for i, sc := range scenarios {
		if err := sc.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %d: %w", i, err)
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("scenario %d: duplicate name %q", i, sc.Name)
		}
		seen[sc.Name] = true
	}
	return scenarios, nil
}
