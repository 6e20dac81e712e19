package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"conversational-weather/internal/forecast"
	"conversational-weather/internal/mqtt"
	"conversational-weather/internal/report"
	"conversational-weather/internal/weather"
)

const fetchTimeout = 30 * time.Second

// Collector periodically fetches the forecast, narrates it in the default
// unit and publishes the live tile. The latest forecast replaces the
// previous one wholesale.
type Collector struct {
	provider   weather.Provider
	builder    *report.Builder
	publisher  *mqtt.Publisher
	interval   time.Duration
	enabled    bool
	useCelsius bool
	now        func() time.Time

	mu           sync.RWMutex
	latest       *forecast.Forecast
	latestReport *report.Report
	lastFetch    time.Time
	lastError    error
	isCollecting bool
}

type CollectorConfig struct {
	Provider   weather.Provider
	Builder    *report.Builder
	Publisher  *mqtt.Publisher
	Interval   time.Duration
	Enabled    bool
	UseCelsius bool
}

// Status summarizes the collector state for the API.
type Status struct {
	Collecting    bool      `json:"collecting"`
	Provider      string    `json:"provider"`
	Interval      string    `json:"interval"`
	LastFetch     time.Time `json:"last_fetch,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	Points        int       `json:"points"`
	MQTTConnected bool      `json:"mqtt_connected"`
}

func NewCollector(cfg CollectorConfig) *Collector {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Collector{
		provider:   cfg.Provider,
		builder:    cfg.Builder,
		publisher:  cfg.Publisher,
		interval:   interval,
		enabled:    cfg.Enabled,
		useCelsius: cfg.UseCelsius,
		now:        time.Now,
	}
}

// Start runs the refresh job until ctx is done. The first fetch happens
// immediately.
func (c *Collector) Start(ctx context.Context) error {
	if !c.enabled {
		log.Println("Collector is disabled")
		return nil
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if _, err := s.Every(c.interval).Do(c.collect); err != nil {
		return fmt.Errorf("failed to schedule forecast refresh: %w", err)
	}

	c.mu.Lock()
	c.isCollecting = true
	c.mu.Unlock()

	log.Printf("Starting collector with interval %s", c.interval)
	s.StartAsync()

	<-ctx.Done()
	s.Stop()

	c.mu.Lock()
	c.isCollecting = false
	c.mu.Unlock()

	log.Println("Collector stopped")
	return nil
}

func (c *Collector) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	r, err := c.CollectOnce(ctx)
	if err != nil {
		log.Printf("Error fetching forecast: %v", err)
		return
	}

	log.Printf("Collected: %s %s %s", r.Location, r.Tile.Temperature, r.ForecastText)
}

// CollectOnce fetches, stores, narrates and publishes one forecast.
func (c *Collector) CollectOnce(ctx context.Context) (*report.Report, error) {
	c.mu.RLock()
	provider := c.provider
	c.mu.RUnlock()

	if provider == nil {
		return nil, fmt.Errorf("collector has no forecast provider")
	}

	f, err := provider.Forecast(ctx)

	c.mu.Lock()
	c.lastError = err
	if err == nil {
		c.latest = f
		c.lastFetch = c.now().UTC()
	}
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	useCelsius := c.useCelsius
	c.mu.RUnlock()

	r := c.builder.Build(f, useCelsius, c.now())

	c.mu.Lock()
	c.latestReport = r
	c.mu.Unlock()

	if c.publisher != nil {
		if err := c.publisher.Publish(r); err != nil {
			log.Printf("Error publishing to MQTT: %v", err)
		}
	}

	return r, nil
}

// GetLatestForecast returns the last fetched forecast or nil.
func (c *Collector) GetLatestForecast() *forecast.Forecast {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

// GetLatestReport returns the report built for the last fetched forecast.
func (c *Collector) GetLatestReport() *report.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latestReport
}

func (c *Collector) IsCollecting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isCollecting
}

func (c *Collector) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Status{
		Collecting: c.isCollecting,
		Interval:   c.interval.String(),
		LastFetch:  c.lastFetch,
	}
	if c.provider != nil {
		s.Provider = c.provider.Name()
	}
	if c.lastError != nil {
		s.LastError = c.lastError.Error()
	}
	if c.latest != nil {
		s.Points = len(c.latest.Points)
	}
	if c.publisher != nil {
		s.MQTTConnected = c.publisher.IsConnected()
	}
	return s
}

// SetProvider replaces the forecast provider used by later fetches.
func (c *Collector) SetProvider(p weather.Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = p
}

// SetUseCelsius changes the unit of the reports built by later fetches.
func (c *Collector) SetUseCelsius(useCelsius bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.useCelsius = useCelsius
}

// UseCelsius reports the unit the collector narrates in.
func (c *Collector) UseCelsius() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.useCelsius
}

func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publisher != nil {
		c.publisher.Close()
	}
}
