package forecast

import (
	"fmt"
	"strings"
	"time"
)

// Unit is the temperature unit a forecast was delivered in.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
)

// UnitFor maps a use-Celsius preference to a Unit.
func UnitFor(useCelsius bool) Unit {
	if useCelsius {
		return Celsius
	}
	return Fahrenheit
}

// ParseUnit accepts celsius/fahrenheit, metric/imperial and c/f.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "celsius", "metric", "c":
		return Celsius, nil
	case "fahrenheit", "imperial", "f":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q", s)
	}
}

// IsCelsius reports whether u is Celsius.
func (u Unit) IsCelsius() bool {
	return u == Celsius
}

// Condition is one provider weather condition of a forecast point.
type Condition struct {
	Code        int    `json:"id"`
	Description string `json:"description"`
}

// Point is one forecast entry.
type Point struct {
	Time       time.Time   `json:"time"`
	Temp       float64     `json:"temp"`
	TempMin    float64     `json:"temp_min"`
	TempMax    float64     `json:"temp_max"`
	Conditions []Condition `json:"conditions"`
}

// Primary returns the first condition of the point.
func (p Point) Primary() (Condition, bool) {
	if len(p.Conditions) == 0 {
		return Condition{}, false
	}
	return p.Conditions[0], true
}

// Forecast is a chronological list of points for one location.
// A fetched forecast replaces the previous one wholesale.
type Forecast struct {
	Location  string    `json:"location"`
	Unit      Unit      `json:"unit"`
	Points    []Point   `json:"points"`
	FetchedAt time.Time `json:"fetched_at"`

	// UTCOffset is the location's offset from UTC in seconds. Nil when the
	// provider did not report one.
	UTCOffset *int `json:"utc_offset,omitempty"`
}

// LocalTime returns t on the location's clock. Without a known offset t is
// returned unchanged.
func (f *Forecast) LocalTime(t time.Time) time.Time {
	if f == nil || f.UTCOffset == nil {
		return t
	}
	return t.In(time.FixedZone("", *f.UTCOffset))
}

// IsEmpty reports whether the forecast has no points.
func (f *Forecast) IsEmpty() bool {
	return f == nil || len(f.Points) == 0
}

// In returns a copy of f with all temperatures expressed in unit.
func (f *Forecast) In(unit Unit) *Forecast {
	out := *f
	out.Unit = unit
	out.Points = make([]Point, len(f.Points))
	copy(out.Points, f.Points)

	if f.Unit == unit || f.Unit == "" {
		return &out
	}

	convert := CelsiusToFahrenheit
	if unit == Celsius {
		convert = FahrenheitToCelsius
	}
	for i := range out.Points {
		out.Points[i].Temp = convert(out.Points[i].Temp)
		out.Points[i].TempMin = convert(out.Points[i].TempMin)
		out.Points[i].TempMax = convert(out.Points[i].TempMax)
	}

	return &out
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}
