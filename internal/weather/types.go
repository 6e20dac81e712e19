package weather

import (
	"context"
	"fmt"

	"conversational-weather/internal/forecast"
)

// Provider fetches a complete forecast. Each successful call supersedes the
// previous forecast.
type Provider interface {
	Name() string
	Forecast(ctx context.Context) (*forecast.Forecast, error)
}

// Location selects where to fetch the forecast for. Coordinates win over the
// city name when both are set.
type Location struct {
	City      string
	Country   string
	Latitude  float64
	Longitude float64
}

func (l Location) hasCoordinates() bool {
	return l.Latitude != 0 || l.Longitude != 0
}

func (l Location) query() string {
	if l.Country != "" {
		return fmt.Sprintf("%s,%s", l.City, l.Country)
	}
	return l.City
}

// unitsFor maps a configured unit name onto the provider "units" parameter.
func unitsFor(units string) (string, forecast.Unit) {
	unit, err := forecast.ParseUnit(units)
	if err != nil || unit == forecast.Celsius {
		return "metric", forecast.Celsius
	}
	return "imperial", forecast.Fahrenheit
}
