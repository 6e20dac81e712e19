package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"conversational-weather/config"
	"conversational-weather/internal/forecast"
	"conversational-weather/internal/weather"
)

type ForecastConfigResponse struct {
	Provider  string  `json:"provider"`
	HasAPIKey bool    `json:"has_api_key"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Units     string  `json:"units"`
}

type ForecastConfigRequest struct {
	Provider  string  `json:"provider"`
	APIKey    *string `json:"api_key"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
	Units     string  `json:"units"`
}

func (s *Server) getForecastConfigHandler(c *gin.Context) {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()

	cfg := s.config.Forecast
	c.JSON(http.StatusOK, ForecastConfigResponse{
		Provider:  cfg.Provider,
		HasAPIKey: cfg.APIKey != "",
		City:      cfg.City,
		Country:   cfg.Country,
		Latitude:  cfg.Latitude,
		Longitude: cfg.Longitude,
		Units:     cfg.Units,
	})
}

// updateForecastConfigHandler swaps the collector's provider for the new
// location and persists the forecast section.
func (s *Server) updateForecastConfigHandler(c *gin.Context) {
	var req ForecastConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(req.Units) == "" {
		req.Units = "metric"
	}
	if _, err := forecast.ParseUnit(req.Units); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.City) == "" && req.Latitude == 0 && req.Longitude == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city or coordinates are required"})
		return
	}

	s.configMutex.RLock()
	updated := s.config.Forecast
	s.configMutex.RUnlock()

	updated.Provider = req.Provider
	if req.APIKey != nil {
		updated.APIKey = strings.TrimSpace(*req.APIKey)
	}
	updated.City = req.City
	updated.Country = req.Country
	updated.Latitude = req.Latitude
	updated.Longitude = req.Longitude
	updated.Units = req.Units

	provider, err := weather.NewProvider(weather.OptionsFrom(updated))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.collector.SetProvider(provider)
	s.collector.SetUseCelsius(updated.UseCelsius())

	s.configMutex.Lock()
	s.config.Forecast = updated
	s.configMutex.Unlock()

	if err := config.SaveForecast(s.configPath, updated); err != nil {
		log.Printf("Warning: Failed to save config to file: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"message": "Configuration applied but not persisted to file",
			"warning": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Forecast configuration updated successfully",
		"provider": provider.Name(),
	})
}
