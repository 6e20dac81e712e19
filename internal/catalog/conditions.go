package catalog

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// FallbackConditionHint is shown when a condition code is not in the catalog.
const FallbackConditionHint = "The weather seems strange."

// ErrConditionNotFound is returned when a code has no catalog entry.
var ErrConditionNotFound = errors.New("weather condition not found")

// WeatherCondition is one entry of the condition catalog.
type WeatherCondition struct {
	Code          int    `json:"code" yaml:"code" validate:"required,min=1"`
	Hint          string `json:"hint" yaml:"hint" validate:"required"`
	Meaning       string `json:"meaning,omitempty" yaml:"meaning"`
	Icon          string `json:"icon" yaml:"icon" validate:"required"`
	HeroIcon      string `json:"heroIcon" yaml:"heroIcon" validate:"required"`
	HasDayVariant bool   `json:"hasDayVariant" yaml:"hasDayVariant"`
}

type conditionList struct {
	WeatherConditions []WeatherCondition `json:"WeatherConditions" yaml:"WeatherConditions"`
}

// ConditionCatalog indexes weather conditions by provider code.
// It is read-only after loading and safe for concurrent use.
type ConditionCatalog struct {
	byCode map[int]WeatherCondition
	codes  []int
}

// NewConditionCatalog builds a catalog from already decoded entries.
func NewConditionCatalog(entries []WeatherCondition) (*ConditionCatalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no weather conditions defined", ErrCatalogLoad)
	}

	c := &ConditionCatalog{
		byCode: make(map[int]WeatherCondition, len(entries)),
		codes:  make([]int, 0, len(entries)),
	}
	for i, entry := range entries {
		if err := validate.Struct(entry); err != nil {
			return nil, fmt.Errorf("%w: condition #%d: %v", ErrCatalogLoad, i, err)
		}
		if _, dup := c.byCode[entry.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate condition code %d", ErrCatalogLoad, entry.Code)
		}
		c.byCode[entry.Code] = entry
		c.codes = append(c.codes, entry.Code)
	}
	sort.Ints(c.codes)

	return c, nil
}

// LoadConditions decodes a condition catalog from r.
func LoadConditions(r io.Reader, format Format) (*ConditionCatalog, error) {
	var list conditionList
	if err := decode(r, format, &list); err != nil {
		return nil, err
	}
	return NewConditionCatalog(list.WeatherConditions)
}

// LoadConditionsFile loads a condition catalog from a JSON or YAML file.
func LoadConditionsFile(path string) (*ConditionCatalog, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadConditions(f, FormatFromPath(path))
}

// Find returns the entry for code. Unknown codes report false.
func (c *ConditionCatalog) Find(code int) (WeatherCondition, bool) {
	entry, ok := c.byCode[code]
	return entry, ok
}

// Hint returns the hint text for code or FallbackConditionHint.
func (c *ConditionCatalog) Hint(code int) string {
	if entry, ok := c.byCode[code]; ok {
		return entry.Hint
	}
	return FallbackConditionHint
}

// Codes returns all known codes in ascending order.
func (c *ConditionCatalog) Codes() []int {
	out := make([]int, len(c.codes))
	copy(out, c.codes)
	return out
}

// Len returns the number of entries.
func (c *ConditionCatalog) Len() int {
	return len(c.codes)
}

// ConditionGroup is the provider's coarse category for a condition code.
type ConditionGroup string

const (
	GroupUnknown      ConditionGroup = "unknown"
	GroupThunderstorm ConditionGroup = "thunderstorm"
	GroupDrizzle      ConditionGroup = "drizzle"
	GroupRain         ConditionGroup = "rain"
	GroupSnow         ConditionGroup = "snow"
	GroupAtmosphere   ConditionGroup = "atmosphere"
	GroupClear        ConditionGroup = "clear"
	GroupClouds       ConditionGroup = "clouds"
	GroupExtreme      ConditionGroup = "extreme"
)

// GroupOf classifies a code by its hundreds. 600 counts as snow.
func GroupOf(code int) ConditionGroup {
	switch {
	case code >= 200 && code <= 299:
		return GroupThunderstorm
	case code >= 300 && code <= 399:
		return GroupDrizzle
	case code >= 500 && code <= 599:
		return GroupRain
	case code >= 600 && code <= 699:
		return GroupSnow
	case code >= 700 && code <= 799:
		return GroupAtmosphere
	case code == 800:
		return GroupClear
	case code >= 801 && code <= 899:
		return GroupClouds
	case code >= 900 && code <= 999:
		return GroupExtreme
	default:
		return GroupUnknown
	}
}
