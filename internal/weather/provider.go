package weather

import (
	"fmt"
	"strings"

	"conversational-weather/config"
)

// Options configures NewProvider.
type Options struct {
	Provider  string
	APIKey    string
	Location  Location
	Units     string
	RateLimit float64
	Burst     int
}

// OptionsFrom maps the forecast config section onto provider options.
func OptionsFrom(cfg config.ForecastConfig) Options {
	return Options{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		Location: Location{
			City:      cfg.City,
			Country:   cfg.Country,
			Latitude:  cfg.Latitude,
			Longitude: cfg.Longitude,
		},
		Units:     cfg.Units,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
	}
}

// NewProvider builds the named provider wrapped with rate limiting and
// fetch metrics. An empty name selects OpenWeather when an API key is set
// and Open-Meteo otherwise.
func NewProvider(opts Options) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Provider))
	if name == "" {
		name = "openmeteo"
		if opts.APIKey != "" {
			name = "openweather"
		}
	}

	var p Provider
	switch name {
	case "openweather":
		p = NewOpenWeatherClient(opts.APIKey, opts.Location, opts.Units)
	case "openmeteo", "open-meteo":
		p = NewOpenMeteoClient(opts.Location, opts.Units)
	default:
		return nil, fmt.Errorf("unknown forecast provider %q", opts.Provider)
	}

	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		p = NewRateLimitedProvider(p, opts.RateLimit, burst)
	}

	return InstrumentedProvider{Provider: p}, nil
}
