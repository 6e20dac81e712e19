package report

import (
	"testing"
	"testing/fstest"
	"time"

	"conversational-weather/internal/catalog"
	"conversational-weather/internal/forecast"
	"conversational-weather/internal/icons"
	"conversational-weather/internal/narrative"
)

var noon = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	return newBuilderWithIcons(t, fstest.MapFS{
		"icons/800_day.png": &fstest.MapFile{Data: []byte("png")},
		"icons/500_day.png": &fstest.MapFile{Data: []byte("png")},
		"icons/600.png":     &fstest.MapFile{Data: []byte("png")},
	})
}

func newBuilderWithIcons(t *testing.T, fsys fstest.MapFS) *Builder {
	t.Helper()
	conditions, temperatures, err := catalog.Load("", "")
	if err != nil {
		t.Fatalf("catalog.Load() error = %v", err)
	}
	resolver := icons.NewResolver(conditions, icons.FSProber{FS: fsys}, "icons")
	return NewBuilder(narrative.NewComposer(conditions, temperatures), resolver, 0)
}

func pt(code int, desc string, temp, min, max float64) forecast.Point {
	return forecast.Point{
		Temp:       temp,
		TempMin:    min,
		TempMax:    max,
		Conditions: []forecast.Condition{{Code: code, Description: desc}},
	}
}

func TestBuilder_Build(t *testing.T) {
	b := newTestBuilder(t)
	f := &forecast.Forecast{
		Location: "Berlin",
		Unit:     forecast.Celsius,
		Points: []forecast.Point{
			pt(800, "clear sky", 22, 18, 24),
			pt(500, "light rain", 17, 15, 19),
			pt(800, "clear sky", 21, 16, 23),
		},
	}

	r := b.Build(f, true, noon)

	if r.ID == "" {
		t.Error("ID is empty")
	}
	if r.Empty {
		t.Error("Empty = true, want false")
	}
	checks := map[string][2]string{
		"LocationText":    {r.LocationText, "Seems like you're in Berlin."},
		"ForecastText":    {r.ForecastText, "There will be clear sky and then light rain later."},
		"TemperatureText": {r.TemperatureText, "The temperature will be between 15°C and 24°C."},
		"ConditionHint":   {r.ConditionHint, "All is clear, nothing to see. And it's quite nice outside."},
		"HeroIcon":        {r.HeroIcon, "clear.png"},
		"Tile.Icon":       {r.Tile.Icon, "icons/800_day.png"},
		"Tile.Temp":       {r.Tile.Temperature, "22°C"},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", field, c[0], c[1])
		}
	}

	if len(r.Slots) != 2 {
		t.Fatalf("len(Slots) = %d, want 2", len(r.Slots))
	}
	if r.Slots[1].Icon != "icons/500_day.png" {
		t.Errorf("Slots[1].Icon = %q, want icons/500_day.png", r.Slots[1].Icon)
	}
}

func TestBuilder_BuildConvertsUnits(t *testing.T) {
	b := newTestBuilder(t)
	f := &forecast.Forecast{
		Location: "Boston",
		Unit:     forecast.Celsius,
		Points:   []forecast.Point{pt(600, "light snow", -5, -15, 0)},
	}

	r := b.Build(f, false, noon)

	if r.Unit != forecast.Fahrenheit {
		t.Errorf("Unit = %v, want fahrenheit", r.Unit)
	}
	if want := "The temperature will be between 5°F and 32°F."; r.TemperatureText != want {
		t.Errorf("TemperatureText = %q, want %q", r.TemperatureText, want)
	}
	if want := "23°F"; r.Tile.Temperature != want {
		t.Errorf("Tile.Temperature = %q, want %q", r.Tile.Temperature, want)
	}
	if want := "And it's pretty cold outside."; len(r.ConditionHint) < len(want) || r.ConditionHint[len(r.ConditionHint)-len(want):] != want {
		t.Errorf("ConditionHint = %q, want suffix %q", r.ConditionHint, want)
	}
}

func TestBuilder_BuildEmpty(t *testing.T) {
	b := newTestBuilder(t)

	for name, f := range map[string]*forecast.Forecast{
		"nil":       nil,
		"no points": {Location: "Nowhere", Unit: forecast.Celsius},
	} {
		t.Run(name, func(t *testing.T) {
			r := b.Build(f, true, noon)
			if !r.Empty {
				t.Error("Empty = false, want true")
			}
			if r.ForecastText != "There will be later." {
				t.Errorf("ForecastText = %q", r.ForecastText)
			}
			if r.TemperatureText != "" || r.ConditionHint != "" || r.HeroIcon != "" || r.Extremes != nil {
				t.Errorf("empty report carries data: %+v", r)
			}
			if len(r.Slots) != 0 {
				t.Errorf("Slots = %v, want none", r.Slots)
			}
		})
	}
}

func TestReport_VisibleSlots(t *testing.T) {
	b := newTestBuilder(t)
	var points []forecast.Point
	for i, desc := range []string{"a", "b", "c", "d", "e", "f"} {
		points = append(points, pt(800+i, desc, 10, 10, 10))
	}
	r := b.Build(&forecast.Forecast{Unit: forecast.Celsius, Points: points}, true, noon)

	if len(r.Slots) != forecast.MaxDistinctConditions {
		t.Errorf("len(Slots) = %d, want %d", len(r.Slots), forecast.MaxDistinctConditions)
	}
	if len(r.VisibleSlots()) != IconSlots {
		t.Errorf("len(VisibleSlots()) = %d, want %d", len(r.VisibleSlots()), IconSlots)
	}
}

func TestBuilder_BuildUsesLocationClock(t *testing.T) {
	b := newBuilderWithIcons(t, fstest.MapFS{
		"icons/800_day.png":   &fstest.MapFile{Data: []byte("png")},
		"icons/800_night.png": &fstest.MapFile{Data: []byte("png")},
	})
	offset := func(s int) *int { return &s }

	tests := []struct {
		name   string
		offset *int
		want   string
	}{
		{"server clock", nil, "icons/800_day.png"},
		{"location at night", offset(10 * 3600), "icons/800_night.png"},
		{"location at day", offset(-2 * 3600), "icons/800_day.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &forecast.Forecast{
				Location:  "Somewhere",
				Unit:      forecast.Celsius,
				Points:    []forecast.Point{pt(800, "clear sky", 20, 18, 22)},
				UTCOffset: tt.offset,
			}

			r := b.Build(f, true, noon)

			if r.Tile.Icon != tt.want {
				t.Errorf("Tile.Icon = %q, want %q", r.Tile.Icon, tt.want)
			}
			if r.Slots[0].Icon != tt.want {
				t.Errorf("Slots[0].Icon = %q, want %q", r.Slots[0].Icon, tt.want)
			}
			if !r.GeneratedAt.Equal(noon) {
				t.Errorf("GeneratedAt = %v, want %v", r.GeneratedAt, noon)
			}
		})
	}
}
