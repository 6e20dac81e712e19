package catalog

import (
	"fmt"

	"conversational-weather/assets"
)

// DefaultConditions loads the condition catalog bundled with the binary.
func DefaultConditions() (*ConditionCatalog, error) {
	f, err := assets.FS.Open(assets.ConditionsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadConditions(f, FormatJSON)
}

// DefaultTemperatures loads the temperature band catalog bundled with the binary.
func DefaultTemperatures() (*TemperatureBandCatalog, error) {
	f, err := assets.FS.Open(assets.TemperaturesFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadTemperatures(f, FormatJSON)
}

// Load returns both catalogs, reading from the given paths or falling back
// to the bundled defaults when a path is empty.
func Load(conditionsPath, temperaturesPath string) (*ConditionCatalog, *TemperatureBandCatalog, error) {
	var (
		conditions   *ConditionCatalog
		temperatures *TemperatureBandCatalog
		err          error
	)

	if conditionsPath != "" {
		conditions, err = LoadConditionsFile(conditionsPath)
	} else {
		conditions, err = DefaultConditions()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("conditions: %w", err)
	}

	if temperaturesPath != "" {
		temperatures, err = LoadTemperaturesFile(temperaturesPath)
	} else {
		temperatures, err = DefaultTemperatures()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("temperatures: %w", err)
	}

	return conditions, temperatures, nil
}
