package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"conversational-weather/internal/forecast"
)

const (
	openMeteoForecastURL  = "https://api.open-meteo.com"
	openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com"

	// openMeteoStep groups hourly values into the 3 hour points other
	// providers deliver.
	openMeteoStep = 3
)

// OpenMeteoClient fetches an hourly forecast and reduces it to 3 hour points
// with OpenWeather condition codes.
type OpenMeteoClient struct {
	location     Location
	unit         forecast.Unit
	days         int
	forecastURL  string
	geocodingURL string
	http         HTTPClientConfig
	breaker      *gobreaker.CircuitBreaker

	mu           sync.Mutex
	resolvedName string
}

func NewOpenMeteoClient(location Location, units string) *OpenMeteoClient {
	_, unit := unitsFor(units)
	return &OpenMeteoClient{
		location:     location,
		unit:         unit,
		days:         5,
		forecastURL:  openMeteoForecastURL,
		geocodingURL: openMeteoGeocodingURL,
		http:         DefaultHTTPClientConfig(),
		breaker:      newBreaker("openmeteo"),
	}
}

// WithBaseURLs points the client at other hosts, e.g. test servers.
func (c *OpenMeteoClient) WithBaseURLs(forecastURL, geocodingURL string) *OpenMeteoClient {
	c.forecastURL = strings.TrimRight(forecastURL, "/")
	c.geocodingURL = strings.TrimRight(geocodingURL, "/")
	return c
}

// WithHTTPConfig replaces the HTTP client and retry policy.
func (c *OpenMeteoClient) WithHTTPConfig(cfg HTTPClientConfig) *OpenMeteoClient {
	c.http = cfg
	return c
}

func (c *OpenMeteoClient) Name() string {
	return "openmeteo"
}

type openMeteoResponse struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds *int   `json:"utc_offset_seconds"`
	Hourly           struct {
		Time          []string  `json:"time"`
		Temperature2m []float64 `json:"temperature_2m"`
		WeatherCode   []int     `json:"weather_code"`
	} `json:"hourly"`
}

type openMeteoGeoResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

func (c *OpenMeteoClient) Forecast(ctx context.Context) (*forecast.Forecast, error) {
	lat, lon, err := c.resolveLocation(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.6f", lat))
	query.Set("longitude", fmt.Sprintf("%.6f", lon))
	query.Set("hourly", "temperature_2m,weather_code")
	query.Set("timezone", "auto")
	query.Set("forecast_days", fmt.Sprintf("%d", c.days))
	if c.unit == forecast.Fahrenheit {
		query.Set("temperature_unit", "fahrenheit")
	}

	var payload openMeteoResponse
	if err := c.getJSON(ctx, c.forecastURL+"/v1/forecast?"+query.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("open-meteo: %w", err)
	}

	hourly := payload.Hourly
	if len(hourly.Time) == 0 {
		return nil, fmt.Errorf("open-meteo hourly data missing")
	}
	if len(hourly.Temperature2m) != len(hourly.Time) || len(hourly.WeatherCode) != len(hourly.Time) {
		return nil, fmt.Errorf("open-meteo hourly series have different lengths")
	}

	loc := time.UTC
	if tz := strings.TrimSpace(payload.Timezone); tz != "" {
		if parsed, err := time.LoadLocation(tz); err == nil {
			loc = parsed
		}
	}

	c.mu.Lock()
	name := c.locationName(lat, lon)
	c.mu.Unlock()

	f := &forecast.Forecast{
		Location:  name,
		Unit:      c.unit,
		FetchedAt: time.Now().UTC(),
		UTCOffset: payload.UTCOffsetSeconds,
	}

	for i := 0; i < len(hourly.Time); i += openMeteoStep {
		end := i + openMeteoStep
		if end > len(hourly.Time) {
			end = len(hourly.Time)
		}

		at, err := time.ParseInLocation("2006-01-02T15:04", hourly.Time[i], loc)
		if err != nil {
			continue
		}

		min, max := hourly.Temperature2m[i], hourly.Temperature2m[i]
		for _, t := range hourly.Temperature2m[i:end] {
			if t < min {
				min = t
			}
			if t > max {
				max = t
			}
		}

		code, description := openMeteoCondition(hourly.WeatherCode[i])
		f.Points = append(f.Points, forecast.Point{
			Time:       at,
			Temp:       hourly.Temperature2m[i],
			TempMin:    min,
			TempMax:    max,
			Conditions: []forecast.Condition{{Code: code, Description: description}},
		})
	}

	return f, nil
}

func (c *OpenMeteoClient) getJSON(ctx context.Context, endpoint string, v interface{}) error {
	resp, err := doRequestWithResilience(ctx, c.http, c.breaker, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// resolveLocation geocodes the city once and caches the coordinates.
func (c *OpenMeteoClient) resolveLocation(ctx context.Context) (float64, float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.location.hasCoordinates() {
		return c.location.Latitude, c.location.Longitude, nil
	}

	if strings.TrimSpace(c.location.City) == "" {
		return 0, 0, fmt.Errorf("open-meteo location is empty")
	}

	query := url.Values{}
	query.Set("name", c.location.City)
	query.Set("count", "1")
	query.Set("language", "en")
	query.Set("format", "json")
	if strings.TrimSpace(c.location.Country) != "" {
		query.Set("country", c.location.Country)
	}

	var payload openMeteoGeoResponse
	if err := c.getJSON(ctx, c.geocodingURL+"/v1/search?"+query.Encode(), &payload); err != nil {
		return 0, 0, fmt.Errorf("open-meteo geocoding: %w", err)
	}

	if len(payload.Results) == 0 {
		return 0, 0, fmt.Errorf("open-meteo geocoding found no results")
	}

	result := payload.Results[0]
	c.location.Latitude = result.Latitude
	c.location.Longitude = result.Longitude
	c.resolvedName = result.Name

	return c.location.Latitude, c.location.Longitude, nil
}

func (c *OpenMeteoClient) locationName(lat, lon float64) string {
	switch {
	case c.resolvedName != "":
		return c.resolvedName
	case c.location.City != "":
		return c.location.City
	default:
		return fmt.Sprintf("%.2f, %.2f", lat, lon)
	}
}

// openMeteoCondition maps a WMO weather code onto an OpenWeather condition
// code and description. Unknown codes map to 0.
func openMeteoCondition(code int) (int, string) {
	switch code {
	case 0:
		return 800, "clear sky"
	case 1:
		return 801, "few clouds"
	case 2:
		return 802, "scattered clouds"
	case 3:
		return 804, "overcast clouds"
	case 45, 48:
		return 741, "fog"
	case 51:
		return 300, "light intensity drizzle"
	case 53:
		return 301, "drizzle"
	case 55:
		return 302, "heavy intensity drizzle"
	case 56, 57, 66, 67:
		return 511, "freezing rain"
	case 61:
		return 500, "light rain"
	case 63:
		return 501, "moderate rain"
	case 65:
		return 502, "heavy intensity rain"
	case 71, 77:
		return 600, "light snow"
	case 73:
		return 601, "snow"
	case 75:
		return 602, "heavy snow"
	case 80:
		return 520, "light intensity shower rain"
	case 81:
		return 521, "shower rain"
	case 82:
		return 522, "heavy intensity shower rain"
	case 85:
		return 620, "light shower snow"
	case 86:
		return 621, "shower snow"
	case 95:
		return 211, "thunderstorm"
	case 96:
		return 201, "thunderstorm with rain"
	case 99:
		return 202, "thunderstorm with heavy rain"
	default:
		return 0, "unknown conditions"
	}
}
