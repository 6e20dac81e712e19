package catalog

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
)

// ErrNoTemperatureBand is returned for input no band can match (NaN).
var ErrNoTemperatureBand = errors.New("no temperature band matches")

// TemperatureCondition is a Celsius range [Min, Max) with its hint.
// Unbounded ends are -Inf and +Inf.
type TemperatureCondition struct {
	Min  float64
	Max  float64
	Hint string
}

type rawTemperatureCondition struct {
	Min  *float64 `json:"min" yaml:"min"`
	Max  *float64 `json:"max" yaml:"max"`
	Hint string   `json:"hint" yaml:"hint" validate:"required"`
}

type temperatureList struct {
	TemperatureConditions []rawTemperatureCondition `json:"TemperatureConditions" yaml:"TemperatureConditions"`
}

// TemperatureBandCatalog holds an exhaustive, non-overlapping set of bands.
type TemperatureBandCatalog struct {
	bands []TemperatureCondition
}

// NewTemperatureBandCatalog sorts and validates bands. The bands must cover
// (-Inf, +Inf) without gaps or overlaps.
func NewTemperatureBandCatalog(bands []TemperatureCondition) (*TemperatureBandCatalog, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: no temperature conditions defined", ErrCatalogLoad)
	}

	sorted := make([]TemperatureCondition, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	for i, b := range sorted {
		if b.Hint == "" {
			return nil, fmt.Errorf("%w: temperature band [%v, %v) has no hint", ErrCatalogLoad, b.Min, b.Max)
		}
		if !(b.Min < b.Max) {
			return nil, fmt.Errorf("%w: temperature band [%v, %v) is empty", ErrCatalogLoad, b.Min, b.Max)
		}
		if i > 0 && sorted[i-1].Max != b.Min {
			return nil, fmt.Errorf("%w: temperature bands [%v, %v) and [%v, %v) are not contiguous",
				ErrCatalogLoad, sorted[i-1].Min, sorted[i-1].Max, b.Min, b.Max)
		}
	}
	if !math.IsInf(sorted[0].Min, -1) {
		return nil, fmt.Errorf("%w: lowest temperature band starts at %v, want unbounded", ErrCatalogLoad, sorted[0].Min)
	}
	if last := sorted[len(sorted)-1]; !math.IsInf(last.Max, 1) {
		return nil, fmt.Errorf("%w: highest temperature band ends at %v, want unbounded", ErrCatalogLoad, last.Max)
	}

	return &TemperatureBandCatalog{bands: sorted}, nil
}

// LoadTemperatures decodes a temperature band catalog from r. A missing
// min or max means the band is unbounded on that side.
func LoadTemperatures(r io.Reader, format Format) (*TemperatureBandCatalog, error) {
	var list temperatureList
	if err := decode(r, format, &list); err != nil {
		return nil, err
	}

	bands := make([]TemperatureCondition, 0, len(list.TemperatureConditions))
	for i, raw := range list.TemperatureConditions {
		if err := validate.Struct(raw); err != nil {
			return nil, fmt.Errorf("%w: temperature condition #%d: %v", ErrCatalogLoad, i, err)
		}
		b := TemperatureCondition{Min: math.Inf(-1), Max: math.Inf(1), Hint: raw.Hint}
		if raw.Min != nil {
			b.Min = *raw.Min
		}
		if raw.Max != nil {
			b.Max = *raw.Max
		}
		bands = append(bands, b)
	}

	return NewTemperatureBandCatalog(bands)
}

// LoadTemperaturesFile loads a temperature band catalog from a JSON or YAML file.
func LoadTemperaturesFile(path string) (*TemperatureBandCatalog, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadTemperatures(f, FormatFromPath(path))
}

// Find returns the band containing celsius.
func (c *TemperatureBandCatalog) Find(celsius float64) (TemperatureCondition, error) {
	i := sort.Search(len(c.bands), func(i int) bool { return c.bands[i].Max > celsius })
	if i < len(c.bands) && c.bands[i].Min <= celsius {
		return c.bands[i], nil
	}
	return TemperatureCondition{}, fmt.Errorf("%w: %v°C", ErrNoTemperatureBand, celsius)
}

// Bands returns a copy of the bands in ascending order.
func (c *TemperatureBandCatalog) Bands() []TemperatureCondition {
	out := make([]TemperatureCondition, len(c.bands))
	copy(out, c.bands)
	return out
}
