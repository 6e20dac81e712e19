package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"conversational-weather/internal/forecast"
)

const openWeatherBaseURL = "https://api.openweathermap.org"

// OpenWeatherClient fetches the 5 day / 3 hour forecast.
type OpenWeatherClient struct {
	apiKey   string
	location Location
	units    string
	unit     forecast.Unit
	baseURL  string
	http     HTTPClientConfig
	breaker  *gobreaker.CircuitBreaker
}

func NewOpenWeatherClient(apiKey string, location Location, units string) *OpenWeatherClient {
	param, unit := unitsFor(units)
	return &OpenWeatherClient{
		apiKey:   apiKey,
		location: location,
		units:    param,
		unit:     unit,
		baseURL:  openWeatherBaseURL,
		http:     DefaultHTTPClientConfig(),
		breaker:  newBreaker("openweather"),
	}
}

// WithBaseURL points the client at another host, e.g. a test server.
func (c *OpenWeatherClient) WithBaseURL(baseURL string) *OpenWeatherClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// WithHTTPConfig replaces the HTTP client and retry policy.
func (c *OpenWeatherClient) WithHTTPConfig(cfg HTTPClientConfig) *OpenWeatherClient {
	c.http = cfg
	return c
}

func (c *OpenWeatherClient) Name() string {
	return "openweather"
}

func (c *OpenWeatherClient) Forecast(ctx context.Context) (*forecast.Forecast, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is empty")
	}

	query := url.Values{}
	query.Set("appid", c.apiKey)
	query.Set("units", c.units)

	if c.location.hasCoordinates() {
		query.Set("lat", fmt.Sprintf("%.6f", c.location.Latitude))
		query.Set("lon", fmt.Sprintf("%.6f", c.location.Longitude))
	} else if c.location.City != "" {
		query.Set("q", c.location.query())
	} else {
		return nil, fmt.Errorf("openweather location is empty")
	}

	endpoint := c.baseURL + "/data/2.5/forecast?" + query.Encode()

	resp, err := doRequestWithResilience(ctx, c.http, c.breaker, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("openweather request failed: %w", err)
	}
	defer resp.Body.Close()

	var feed forecast.Feed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("openweather decode: %w", err)
	}

	f := feed.Forecast(c.unit)
	if f.Location == "" {
		f.Location = c.location.City
	}
	return f, nil
}
