package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"conversational-weather/config"
	"conversational-weather/internal/api"
	"conversational-weather/internal/catalog"
	"conversational-weather/internal/collector"
	"conversational-weather/internal/forecast"
	"conversational-weather/internal/icons"
	"conversational-weather/internal/mqtt"
	"conversational-weather/internal/narrative"
	"conversational-weather/internal/report"
	"conversational-weather/internal/storage"
	"conversational-weather/internal/weather"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "conversational-weather",
		Short: "Conversational weather display",
		Long:  "Turns a multi-point weather forecast into friendly sentences and display icons",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(narrateCmd())
	rootCmd.AddCommand(catalogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// pipeline holds the read-only catalogs and the report builder shared by
// every command.
type pipeline struct {
	conditions   *catalog.ConditionCatalog
	temperatures *catalog.TemperatureBandCatalog
	resolver     *icons.Resolver
	builder      *report.Builder
}

func newPipeline(cfg *config.Config) (*pipeline, error) {
	conditions, temperatures, err := catalog.Load(cfg.Catalog.Conditions, cfg.Catalog.Temperatures)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogs: %w", err)
	}
	if verbose {
		log.Printf("Loaded %d conditions and %d temperature bands",
			conditions.Len(), len(temperatures.Bands()))
	}

	resolver := icons.NewResolver(conditions, icons.FSProber{FS: os.DirFS(cfg.Icons.Dir)}, "")
	composer := narrative.NewComposer(conditions, temperatures)

	return &pipeline{
		conditions:   conditions,
		temperatures: temperatures,
		resolver:     resolver,
		builder:      report.NewBuilder(composer, resolver, cfg.Forecast.Lookahead),
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the weather service",
		Long:  "Start the forecast collector, API server, and MQTT publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			provider, err := weather.NewProvider(weather.OptionsFrom(cfg.Forecast))
			if err != nil {
				return fmt.Errorf("failed to create forecast provider: %w", err)
			}
			log.Printf("Using forecast provider %s", provider.Name())

			db, err := storage.NewDatabase(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
			log.Printf("Database opened at %s", cfg.Database.Path)

			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      cfg.MQTT.Broker,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Enabled:     cfg.MQTT.Enabled,
			})
			if err != nil {
				log.Printf("Warning: MQTT connection failed: %v", err)
				publisher = nil
			} else if cfg.MQTT.Enabled {
				log.Printf("MQTT connected to %s", cfg.MQTT.Broker)
				if err := publisher.PublishHomeAssistantDiscovery(); err != nil {
					log.Printf("Warning: Home Assistant discovery failed: %v", err)
				}
			}

			coll := collector.NewCollector(collector.CollectorConfig{
				Provider:   provider,
				Builder:    p.builder,
				Publisher:  publisher,
				Interval:   cfg.Collector.Interval,
				Enabled:    cfg.Collector.Enabled,
				UseCelsius: cfg.Forecast.UseCelsius(),
			})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				if err := coll.Start(ctx); err != nil {
					log.Printf("Collector error: %v", err)
				}
			}()

			var server *api.Server
			if cfg.API.Enabled {
				server = api.NewServer(api.ServerConfig{
					Port:       cfg.API.Port,
					Collector:  coll,
					Builder:    p.builder,
					Conditions: p.conditions,
					Resolver:   p.resolver,
					Database:   db,
					IconsDir:   cfg.Icons.Dir,
					Config:     cfg,
					ConfigPath: configFile,
				})

				go func() {
					if err := server.Start(); err != nil {
						log.Printf("API server error: %v", err)
					}
				}()
			}

			log.Println("Conversational Weather started. Press Ctrl+C to stop.")

			<-sigChan
			log.Println("Shutting down...")
			cancel()

			if server != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := server.Stop(shutdownCtx); err != nil {
					log.Printf("API server shutdown error: %v", err)
				}
			}
			coll.Stop()

			return nil
		},
	}
}

func narrateCmd() *cobra.Command {
	var (
		file       string
		source     string
		celsius    bool
		fahrenheit bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "narrate",
		Short: "Narrate the forecast once",
		Long:  "Fetch the forecast, or read a forecast document from a file, and print its narrative",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			useCelsius := cfg.Forecast.UseCelsius()
			switch {
			case celsius && fahrenheit:
				return fmt.Errorf("--celsius and --fahrenheit are mutually exclusive")
			case celsius:
				useCelsius = true
			case fahrenheit:
				useCelsius = false
			}

			var f *forecast.Forecast
			if file != "" {
				unit := forecast.UnitFor(useCelsius)
				if source != "" {
					if unit, err = forecast.ParseUnit(source); err != nil {
						return err
					}
				}

				in, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open forecast: %w", err)
				}
				defer in.Close()

				if f, err = forecast.DecodeFeed(in, unit); err != nil {
					return err
				}
			} else {
				provider, err := weather.NewProvider(weather.OptionsFrom(cfg.Forecast))
				if err != nil {
					return fmt.Errorf("failed to create forecast provider: %w", err)
				}

				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()

				if f, err = provider.Forecast(ctx); err != nil {
					return fmt.Errorf("failed to fetch forecast: %w", err)
				}
			}

			r := p.builder.Build(f, useCelsius, time.Now())

			if asJSON {
				output, _ := json.MarshalIndent(r, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Println(r.LocationText)
			fmt.Println(r.ForecastText)
			if r.Empty {
				return nil
			}
			fmt.Println(r.TemperatureText)
			fmt.Println(r.ConditionHint)
			fmt.Printf("\nNow:   %s %s\n", r.Tile.Temperature, r.Tile.Icon)
			if r.HeroIcon != "" {
				fmt.Printf("Hero:  %s\n", r.HeroIcon)
			}
			for i, slot := range r.VisibleSlots() {
				fmt.Printf("Slot %d: %-24s %s\n", i, slot.Description, slot.Icon)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "forecast document to narrate instead of fetching")
	cmd.Flags().StringVar(&source, "source", "", "unit of the temperatures in --file (defaults to the output unit)")
	cmd.Flags().BoolVar(&celsius, "celsius", false, "narrate in Celsius")
	cmd.Flags().BoolVar(&fahrenheit, "fahrenheit", false, "narrate in Fahrenheit")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")

	return cmd
}

func catalogCmd() *cobra.Command {
	var code int

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the condition catalog",
		Long:  "List all weather conditions, or show a single one with --code",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("code") {
				entry, ok := p.conditions.Find(code)
				if !ok {
					fmt.Printf("%d: %s (%s)\n", code, catalog.FallbackConditionHint, catalog.GroupOf(code))
					return catalog.ErrConditionNotFound
				}
				output, _ := json.MarshalIndent(entry, "", "  ")
				fmt.Println(string(output))
				res := p.resolver.Resolve(code, time.Now())
				fmt.Printf("Icon: %s (found=%t, attempts=%d)\n", res.Path, res.Found, res.Attempts)
				return nil
			}

			for _, c := range p.conditions.Codes() {
				entry, _ := p.conditions.Find(c)
				fmt.Printf("%4d  %-13s %s\n", c, catalog.GroupOf(c), entry.Hint)
			}
			fmt.Println()
			for _, band := range p.temperatures.Bands() {
				fmt.Printf("%6.0f .. %-6.0f %s\n", band.Min, band.Max, band.Hint)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&code, "code", 0, "condition code to show")
	return cmd
}
