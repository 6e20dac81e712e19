package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "CWEATHER"

type Config struct {
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Icons     IconsConfig     `mapstructure:"icons"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	Collector CollectorConfig `mapstructure:"collector"`
	API       APIConfig       `mapstructure:"api"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

// CatalogConfig points at catalog files. Empty paths use the bundled tables.
type CatalogConfig struct {
	Conditions   string `mapstructure:"conditions"`
	Temperatures string `mapstructure:"temperatures"`
}

type IconsConfig struct {
	Dir string `mapstructure:"dir"`
}

type ForecastConfig struct {
	Provider  string  `mapstructure:"provider"`
	APIKey    string  `mapstructure:"api_key"`
	City      string  `mapstructure:"city"`
	Country   string  `mapstructure:"country"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	Units     string  `mapstructure:"units"`
	Lookahead int     `mapstructure:"lookahead"`
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

// UseCelsius reports whether the configured units are metric.
func (f ForecastConfig) UseCelsius() bool {
	switch strings.ToLower(strings.TrimSpace(f.Units)) {
	case "imperial", "fahrenheit", "f":
		return false
	default:
		return true
	}
}

type CollectorConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Enabled  bool          `mapstructure:"enabled"`
}

type APIConfig struct {
	Port    int  `mapstructure:"port"`
	Enabled bool `mapstructure:"enabled"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.conditions", "")
	v.SetDefault("catalog.temperatures", "")
	v.SetDefault("icons.dir", "./assets/icons")
	v.SetDefault("forecast.provider", "")
	v.SetDefault("forecast.api_key", "")
	v.SetDefault("forecast.city", "")
	v.SetDefault("forecast.country", "")
	v.SetDefault("forecast.latitude", 0)
	v.SetDefault("forecast.longitude", 0)
	v.SetDefault("forecast.units", "metric")
	v.SetDefault("forecast.lookahead", 5)
	v.SetDefault("forecast.rate_limit", 1)
	v.SetDefault("forecast.burst", 1)
	v.SetDefault("collector.interval", "30m")
	v.SetDefault("collector.enabled", true)
	v.SetDefault("api.port", 8046)
	v.SetDefault("api.enabled", true)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "conversational-weather")
	v.SetDefault("mqtt.client_id", "conversational-weather")
	v.SetDefault("database.path", "./conversational-weather.db")
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/conversational-weather")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads .env, the YAML config file and CWEATHER_* environment
// variables, in increasing order of precedence. A missing config file is
// not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

// SaveForecast writes the forecast section back to the config file,
// keeping the other sections as they are on disk.
func SaveForecast(configPath string, f ForecastConfig) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read config: %w", err)
	}

	v.Set("forecast.provider", f.Provider)
	v.Set("forecast.api_key", f.APIKey)
	v.Set("forecast.city", f.City)
	v.Set("forecast.country", f.Country)
	v.Set("forecast.latitude", f.Latitude)
	v.Set("forecast.longitude", f.Longitude)
	v.Set("forecast.units", f.Units)

	return v.WriteConfigAs(configPath)
}
