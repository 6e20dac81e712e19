package report

import (
	"time"

	"github.com/google/uuid"

	"conversational-weather/internal/forecast"
	"conversational-weather/internal/icons"
	"conversational-weather/internal/metrics"
	"conversational-weather/internal/narrative"
)

// IconSlots is the number of state icons a display shows.
const IconSlots = 4

// Slot is one summarized state bound to its icon.
type Slot struct {
	Description string `json:"description"`
	Code        int    `json:"code"`
	Icon        string `json:"icon,omitempty"`
}

// Tile is the compact live-tile view of a report.
type Tile struct {
	Icon        string `json:"icon,omitempty"`
	Temperature string `json:"temperature,omitempty"`
	Hint        string `json:"hint,omitempty"`
}

// Report holds every text and icon a display needs for one forecast.
type Report struct {
	ID              string             `json:"id"`
	GeneratedAt     time.Time          `json:"generated_at"`
	Unit            forecast.Unit      `json:"unit"`
	Location        string             `json:"location"`
	LocationText    string             `json:"location_text"`
	ForecastText    string             `json:"forecast_text"`
	TemperatureText string             `json:"temperature_text,omitempty"`
	ConditionHint   string             `json:"condition_hint,omitempty"`
	Extremes        *forecast.Extremes `json:"extremes,omitempty"`
	Slots           []Slot             `json:"slots"`
	HeroIcon        string             `json:"hero_icon,omitempty"`
	Tile            Tile               `json:"tile"`
	Empty           bool               `json:"empty"`
}

// VisibleSlots returns at most IconSlots slots.
func (r *Report) VisibleSlots() []Slot {
	if len(r.Slots) > IconSlots {
		return r.Slots[:IconSlots]
	}
	return r.Slots
}

// Builder runs the narrative pipeline for a forecast.
type Builder struct {
	composer  *narrative.Composer
	resolver  *icons.Resolver
	lookahead int
}

// NewBuilder creates a builder. A non-positive lookahead uses
// forecast.DefaultLookahead.
func NewBuilder(composer *narrative.Composer, resolver *icons.Resolver, lookahead int) *Builder {
	if lookahead <= 0 {
		lookahead = forecast.DefaultLookahead
	}
	return &Builder{
		composer:  composer,
		resolver:  resolver,
		lookahead: lookahead,
	}
}

// Build narrates f for the unit preference. now, read on the forecast
// location's clock, picks day or night icons.
// An empty forecast yields a report with Empty set and no temperature text,
// condition hint or hero icon.
func (b *Builder) Build(f *forecast.Forecast, useCelsius bool, now time.Time) *Report {
	unit := forecast.UnitFor(useCelsius)
	r := &Report{
		ID:          uuid.New().String(),
		GeneratedAt: now.UTC(),
		Unit:        unit,
		Slots:       []Slot{},
	}

	if f != nil {
		f = f.In(unit)
		r.Location = f.Location
	}
	local := f.LocalTime(now)
	r.LocationText = narrative.LocationText(r.Location)

	entries := forecast.SummarizeConditions(f, forecast.NewDedupState())
	r.ForecastText = narrative.ForecastText(entries)
	for _, entry := range entries {
		r.Slots = append(r.Slots, Slot{
			Description: entry.Description,
			Code:        entry.Code,
			Icon:        b.resolveIcon(entry.Code, local),
		})
	}

	extremes := forecast.TemperatureExtremes(f, b.lookahead)
	if f.IsEmpty() || extremes.Empty() {
		r.Empty = true
		metrics.RecordReport(string(unit), true, len(entries))
		return r
	}

	r.Extremes = &extremes
	r.TemperatureText = narrative.TemperatureText(extremes.Min, extremes.Max, useCelsius)

	first := f.Points[0]
	primary, _ := first.Primary()
	r.ConditionHint = b.composer.ConditionHint(primary.Code, first.Temp, useCelsius)

	if hero, err := b.resolver.ResolveHeroIcon(primary.Code); err == nil {
		r.HeroIcon = hero
	}

	r.Tile = Tile{
		Icon:        b.resolveIcon(primary.Code, local),
		Temperature: narrative.CurrentTemperatureText(first.Temp, useCelsius),
		Hint:        r.ConditionHint,
	}

	metrics.RecordReport(string(unit), false, len(entries))
	return r
}

func (b *Builder) resolveIcon(code int, now time.Time) string {
	res := b.resolver.Resolve(code, now)
	metrics.RecordIconResolution(res.Found, res.Attempts)
	return res.Path
}
