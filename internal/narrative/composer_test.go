package narrative

import (
	"math"
	"testing"

	"conversational-weather/internal/catalog"
	"conversational-weather/internal/forecast"
)

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	conditions, err := catalog.DefaultConditions()
	if err != nil {
		t.Fatalf("DefaultConditions() error = %v", err)
	}
	temperatures, err := catalog.DefaultTemperatures()
	if err != nil {
		t.Fatalf("DefaultTemperatures() error = %v", err)
	}
	return NewComposer(conditions, temperatures)
}

func TestLocationText(t *testing.T) {
	if got := LocationText("Berlin"); got != "Seems like you're in Berlin." {
		t.Errorf("LocationText() = %q", got)
	}
}

func TestForecastText(t *testing.T) {
	tests := []struct {
		name    string
		entries []forecast.StateEntry
		want    string
	}{
		{
			name:    "none",
			entries: nil,
			want:    "There will be later.",
		},
		{
			name:    "one",
			entries: []forecast.StateEntry{{Description: "clear sky", Code: 800}},
			want:    "There will be clear sky later.",
		},
		{
			name:    "two",
			entries: []forecast.StateEntry{{Description: "clear sky", Code: 800}, {Description: "light rain", Code: 500}},
			want:    "There will be clear sky and then light rain later.",
		},
		{
			name:    "one blank description",
			entries: []forecast.StateEntry{{Description: "", Code: 800}},
			want:    "There will be later.",
		},
		{
			name:    "blank first description",
			entries: []forecast.StateEntry{{Description: "", Code: 800}, {Description: "rain", Code: 500}},
			want:    "There will be and then rain later.",
		},
		{
			name: "five",
			entries: []forecast.StateEntry{
				{Description: "clear sky", Code: 800},
				{Description: "few clouds", Code: 801},
				{Description: "light rain", Code: 500},
				{Description: "mist", Code: 701},
				{Description: "snow", Code: 601},
			},
			want: "There will be clear sky, few clouds, light rain, mist and then snow later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForecastText(tt.entries); got != tt.want {
				t.Errorf("ForecastText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTemperatureText(t *testing.T) {
	tests := []struct {
		min, max   float64
		useCelsius bool
		want       string
	}{
		{5, 20, true, "The temperature will be between 5°C and 20°C."},
		{41, 68, false, "The temperature will be between 41°F and 68°F."},
		{4.5, 19.49, true, "The temperature will be between 5°C and 19°C."},
		{-2.5, -0.4, true, "The temperature will be between -3°C and 0°C."},
	}

	for _, tt := range tests {
		if got := TemperatureText(tt.min, tt.max, tt.useCelsius); got != tt.want {
			t.Errorf("TemperatureText(%v, %v, %v) = %q, want %q", tt.min, tt.max, tt.useCelsius, got, tt.want)
		}
	}
}

func TestCurrentTemperatureText(t *testing.T) {
	if got := CurrentTemperatureText(12.4, true); got != "12°C" {
		t.Errorf("CurrentTemperatureText() = %q, want 12°C", got)
	}
	if got := CurrentTemperatureText(53.5, false); got != "54°F" {
		t.Errorf("CurrentTemperatureText() = %q, want 54°F", got)
	}
}

func TestComposer_ConditionHint(t *testing.T) {
	c := newTestComposer(t)

	tests := []struct {
		name       string
		code       int
		temp       float64
		useCelsius bool
		want       string
	}{
		{
			name:       "clear and nice",
			code:       800,
			temp:       25,
			useCelsius: true,
			want:       "All is clear, nothing to see. And it's quite nice outside.",
		},
		{
			name:       "fahrenheit converted before band lookup",
			code:       800,
			temp:       77,
			useCelsius: false,
			want:       "All is clear, nothing to see. And it's quite nice outside.",
		},
		{
			name:       "band boundary is inclusive at min",
			code:       800,
			temp:       30,
			useCelsius: true,
			want:       "All is clear, nothing to see. And it's pretty hot outside.",
		},
		{
			name:       "unknown code falls back",
			code:       999,
			temp:       -20,
			useCelsius: true,
			want:       "The weather seems strange. And it's really COLD outside!",
		},
		{
			name:       "extreme heat",
			code:       800,
			temp:       120,
			useCelsius: false,
			want:       "All is clear, nothing to see. And it's really HOT outside!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ConditionHint(tt.code, tt.temp, tt.useCelsius); got != tt.want {
				t.Errorf("ConditionHint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposer_ConditionHintNaN(t *testing.T) {
	c := newTestComposer(t)

	if got := c.ConditionHint(800, math.NaN(), true); got != "All is clear, nothing to see." {
		t.Errorf("ConditionHint(NaN) = %q", got)
	}
}

func TestRound(t *testing.T) {
	tests := map[float64]int{
		0.5:  1,
		-0.5: -1,
		1.49: 1,
		2.5:  3,
		-2.6: -3,
	}
	for in, want := range tests {
		if got := Round(in); got != want {
			t.Errorf("Round(%v) = %d, want %d", in, got, want)
		}
	}
}
