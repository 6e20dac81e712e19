package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"conversational-weather/config"
	"conversational-weather/internal/catalog"
	"conversational-weather/internal/collector"
	"conversational-weather/internal/forecast"
	"conversational-weather/internal/icons"
	"conversational-weather/internal/report"
	"conversational-weather/internal/storage"
)

const refreshTimeout = 30 * time.Second

type Server struct {
	router      *gin.Engine
	server      *http.Server
	collector   *collector.Collector
	builder     *report.Builder
	conditions  *catalog.ConditionCatalog
	resolver    *icons.Resolver
	db          *storage.Database
	port        int
	iconsDir    string
	config      *config.Config
	configPath  string
	configMutex sync.RWMutex
	now         func() time.Time
}

type ServerConfig struct {
	Port       int
	Collector  *collector.Collector
	Builder    *report.Builder
	Conditions *catalog.ConditionCatalog
	Resolver   *icons.Resolver
	Database   *storage.Database
	IconsDir   string
	Config     *config.Config
	ConfigPath string
}

func NewServer(cfg ServerConfig) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:     router,
		collector:  cfg.Collector,
		builder:    cfg.Builder,
		conditions: cfg.Conditions,
		resolver:   cfg.Resolver,
		db:         cfg.Database,
		port:       cfg.Port,
		iconsDir:   cfg.IconsDir,
		config:     cfg.Config,
		configPath: cfg.ConfigPath,
		now:        time.Now,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	if s.iconsDir != "" {
		if info, err := os.Stat(s.iconsDir); err == nil && info.IsDir() {
			s.router.Static("/assets", s.iconsDir)
		} else {
			log.Printf("Icon directory %s not found, /assets disabled", s.iconsDir)
		}
	}

	s.router.GET("/health", s.healthHandler)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/v1")
	{
		api.GET("/status", s.statusHandler)
		api.GET("/forecast", s.forecastHandler)
		api.GET("/report", s.reportHandler)
		api.POST("/report", s.narrateHandler)
		api.POST("/refresh", s.refreshHandler)

		api.GET("/conditions", s.conditionsHandler)
		api.GET("/conditions/:code", s.conditionHandler)
		api.GET("/icons/:code", s.iconHandler)

		api.GET("/preferences", s.listPreferencesHandler)
		api.GET("/preferences/:client", s.getPreferenceHandler)
		api.PUT("/preferences/:client", s.updatePreferenceHandler)
		api.DELETE("/preferences/:client", s.deletePreferenceHandler)

		api.GET("/config/forecast", s.getForecastConfigHandler)
		api.PUT("/config/forecast", s.updateForecastConfigHandler)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	log.Printf("API server starting on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) healthHandler(c *gin.Context) {
	hasForecast := s.collector.GetLatestForecast() != nil

	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"has_forecast": hasForecast,
		"collecting":   s.collector.IsCollecting(),
		"conditions":   s.conditions.Len(),
		"timestamp":    s.now(),
	})
}

func (s *Server) statusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.collector.Status())
}

func (s *Server) forecastHandler(c *gin.Context) {
	f := s.collector.GetLatestForecast()
	if f == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "No forecast available yet",
		})
		return
	}
	c.JSON(http.StatusOK, f)
}

// useCelsius picks the unit from the unit query, then the stored client
// preference, then the configured units.
func (s *Server) useCelsius(c *gin.Context) (bool, error) {
	if raw := c.Query("unit"); raw != "" {
		unit, err := forecast.ParseUnit(raw)
		if err != nil {
			return false, err
		}
		return unit.IsCelsius(), nil
	}

	if client := c.Query("client"); client != "" && s.db != nil {
		pref, err := s.db.GetPreference(client)
		if err == nil {
			return pref.UseCelsius, nil
		}
		if !errors.Is(err, storage.ErrPreferenceNotFound) {
			log.Printf("Failed to load preference for %s: %v", client, err)
		}
	}

	s.configMutex.RLock()
	defer s.configMutex.RUnlock()
	return s.config.Forecast.UseCelsius(), nil
}

func (s *Server) reportHandler(c *gin.Context) {
	useCelsius, err := s.useCelsius(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f := s.collector.GetLatestForecast()
	if f == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "No forecast available yet",
		})
		return
	}

	c.JSON(http.StatusOK, s.builder.Build(f, useCelsius, s.now()))
}

// narrateHandler narrates a forecast document from the request body. Its
// temperatures are read in the "source" unit, defaulting to the target unit.
func (s *Server) narrateHandler(c *gin.Context) {
	useCelsius, err := s.useCelsius(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source := forecast.UnitFor(useCelsius)
	if raw := c.Query("source"); raw != "" {
		if source, err = forecast.ParseUnit(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	f, err := forecast.DecodeFeed(c.Request.Body, source)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.builder.Build(f, useCelsius, s.now()))
}

func (s *Server) refreshHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), refreshTimeout)
	defer cancel()

	r, err := s.collector.CollectOnce(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch forecast",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, r)
}

type conditionResponse struct {
	catalog.WeatherCondition
	Group catalog.ConditionGroup `json:"group"`
}

func (s *Server) conditionsHandler(c *gin.Context) {
	codes := s.conditions.Codes()
	out := make([]conditionResponse, 0, len(codes))
	for _, code := range codes {
		entry, _ := s.conditions.Find(code)
		out = append(out, conditionResponse{WeatherCondition: entry, Group: catalog.GroupOf(code)})
	}
	c.JSON(http.StatusOK, out)
}

func parseCode(c *gin.Context) (int, bool) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid condition code"})
		return 0, false
	}
	return code, true
}

func (s *Server) conditionHandler(c *gin.Context) {
	code, ok := parseCode(c)
	if !ok {
		return
	}

	entry, found := s.conditions.Find(code)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error": catalog.ErrConditionNotFound.Error(),
			"code":  code,
			"hint":  catalog.FallbackConditionHint,
			"group": catalog.GroupOf(code),
		})
		return
	}
	c.JSON(http.StatusOK, conditionResponse{WeatherCondition: entry, Group: catalog.GroupOf(code)})
}

func (s *Server) iconHandler(c *gin.Context) {
	code, ok := parseCode(c)
	if !ok {
		return
	}

	at := s.collector.GetLatestForecast().LocalTime(s.now())
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'at' time format"})
			return
		}
		at = parsed
	}

	resolution := s.resolver.Resolve(code, at)
	hero, err := s.resolver.ResolveHeroIcon(code)

	response := gin.H{
		"resolution": resolution,
		"hero_icon":  hero,
		"daytime":    icons.IsDaytime(at),
	}
	if err != nil {
		response["hero_error"] = err.Error()
	}

	status := http.StatusOK
	if !resolution.Found {
		status = http.StatusNotFound
	}
	c.JSON(status, response)
}

type preferenceRequest struct {
	UseCelsius *bool `json:"use_celsius" binding:"required"`
}

func (s *Server) listPreferencesHandler(c *gin.Context) {
	prefs, err := s.db.ListPreferences()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(prefs),
		"preferences": prefs,
	})
}

func (s *Server) getPreferenceHandler(c *gin.Context) {
	pref, err := s.db.GetPreference(c.Param("client"))
	if err != nil {
		if errors.Is(err, storage.ErrPreferenceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pref)
}

func (s *Server) updatePreferenceHandler(c *gin.Context) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pref, err := s.db.SavePreference(c.Param("client"), *req.UseCelsius)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pref)
}

func (s *Server) deletePreferenceHandler(c *gin.Context) {
	if err := s.db.DeletePreference(c.Param("client")); err != nil {
		if errors.Is(err, storage.ErrPreferenceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
