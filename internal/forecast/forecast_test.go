package forecast

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func point(desc string, code int, min, max float64) Point {
	return Point{
		Temp:       (min + max) / 2,
		TempMin:    min,
		TempMax:    max,
		Conditions: []Condition{{Code: code, Description: desc}},
	}
}

func TestSummarizeConditions(t *testing.T) {
	f := &Forecast{Points: []Point{
		point("clear sky", 800, 0, 0),
		point("clear sky", 800, 0, 0),
		point("light rain", 500, 0, 0),
		point("clear sky", 800, 0, 0),
		point("few clouds", 801, 0, 0),
	}}

	got := SummarizeConditions(f, NewDedupState())
	want := []StateEntry{
		{"clear sky", 800},
		{"light rain", 500},
		{"few clouds", 801},
	}

	if len(got) != len(want) {
		t.Fatalf("SummarizeConditions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SummarizeConditions()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSummarizeConditions_CapsAtFive(t *testing.T) {
	var points []Point
	for i := 0; i < 40; i++ {
		points = append(points, point(fmt.Sprintf("state %d", i%12), 800+i%12, 0, 0))
	}
	f := &Forecast{Points: points}

	got := SummarizeConditions(f, NewDedupState())
	if len(got) != MaxDistinctConditions {
		t.Fatalf("len(SummarizeConditions()) = %d, want %d", len(got), MaxDistinctConditions)
	}
	for i, entry := range got {
		if want := fmt.Sprintf("state %d", i); entry.Description != want {
			t.Errorf("entry %d = %q, want %q", i, entry.Description, want)
		}
	}
}

func TestSummarizeConditions_UsesPrimaryAndSkipsEmpty(t *testing.T) {
	f := &Forecast{Points: []Point{
		{Conditions: nil},
		{Conditions: []Condition{{Code: 500, Description: "light rain"}, {Code: 701, Description: "mist"}}},
	}}

	got := SummarizeConditions(f, NewDedupState())
	if len(got) != 1 || got[0].Description != "light rain" {
		t.Errorf("SummarizeConditions() = %v, want only the primary condition", got)
	}
}

func TestSummarizeConditions_FreshStatePerPass(t *testing.T) {
	first := &Forecast{Points: []Point{point("snow", 601, 0, 0)}}
	second := &Forecast{Points: []Point{point("clear sky", 800, 0, 0)}}

	SummarizeConditions(first, NewDedupState())
	got := SummarizeConditions(second, NewDedupState())

	if len(got) != 1 || got[0].Code != 800 {
		t.Errorf("second pass = %v, want only clear sky", got)
	}
}

func TestDedupState_Record(t *testing.T) {
	s := NewDedupState()
	if !s.Record("a", 1) {
		t.Error("Record(a) = false, want true")
	}
	if s.Record("a", 2) {
		t.Error("Record(a) twice = true, want false")
	}
	for i := 0; i < 10; i++ {
		s.Record(fmt.Sprintf("x%d", i), i)
	}
	if s.Len() != MaxDistinctConditions || !s.Full() {
		t.Errorf("Len() = %d, Full() = %v", s.Len(), s.Full())
	}
	if s.Entries()[0].Code != 1 {
		t.Errorf("first entry code = %d, want 1", s.Entries()[0].Code)
	}
}

func TestTemperatureExtremes(t *testing.T) {
	tests := []struct {
		name      string
		points    []Point
		lookahead int
		want      Extremes
	}{
		{
			name:      "empty forecast keeps sentinels",
			points:    nil,
			lookahead: 5,
			want:      Extremes{Min: SentinelMin, Max: SentinelMax},
		},
		{
			name: "fewer points than lookahead",
			points: []Point{
				point("a", 800, 5, 12),
				point("a", 800, 3, 20),
			},
			lookahead: 5,
			want:      Extremes{Min: 3, Max: 20},
		},
		{
			name: "only first five points count",
			points: []Point{
				point("a", 800, 10, 11),
				point("a", 800, 9, 12),
				point("a", 800, 8, 13),
				point("a", 800, 7, 14),
				point("a", 800, 6, 15),
				point("a", 800, -40, 45),
			},
			lookahead: 5,
			want:      Extremes{Min: 6, Max: 15},
		},
		{
			name: "non-positive lookahead uses default",
			points: []Point{
				point("a", 800, 1, 2),
			},
			lookahead: 0,
			want:      Extremes{Min: 1, Max: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TemperatureExtremes(&Forecast{Points: tt.points}, tt.lookahead)
			if got != tt.want {
				t.Errorf("TemperatureExtremes() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtremes_Empty(t *testing.T) {
	if !TemperatureExtremes(nil, 5).Empty() {
		t.Error("Empty() = false for nil forecast")
	}
	if (Extremes{Min: 1, Max: 2}).Empty() {
		t.Error("Empty() = true for real range")
	}
}

func TestForecast_In(t *testing.T) {
	f := &Forecast{
		Unit:   Fahrenheit,
		Points: []Point{{Temp: 212, TempMin: 32, TempMax: 50}},
	}

	c := f.In(Celsius)
	if c.Unit != Celsius {
		t.Errorf("Unit = %v, want celsius", c.Unit)
	}
	p := c.Points[0]
	if math.Abs(p.Temp-100) > 1e-9 || math.Abs(p.TempMin) > 1e-9 || math.Abs(p.TempMax-10) > 1e-9 {
		t.Errorf("converted point = %+v", p)
	}

	if f.Points[0].Temp != 212 {
		t.Error("In() mutated the original forecast")
	}

	same := f.In(Fahrenheit)
	if same.Points[0].Temp != 212 {
		t.Errorf("In(same unit) changed temp to %v", same.Points[0].Temp)
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    Unit
		wantErr bool
	}{
		{"celsius", Celsius, false},
		{"Metric", Celsius, false},
		{"f", Fahrenheit, false},
		{"imperial", Fahrenheit, false},
		{"kelvin", "", true},
	}

	for _, tt := range tests {
		got, err := ParseUnit(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseUnit(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseUnit(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDecodeFeed(t *testing.T) {
	doc := `{
		"city": {"name": "Berlin", "timezone": 3600},
		"list": [
			{"dt": 1700000000, "main": {"temp": 5.2, "temp_min": 4.1, "temp_max": 6.3},
			 "weather": [{"id": 500, "description": "light rain"}]},
			{"dt": 1700010800, "main": {"temp": 3.0, "temp_min": 2.5, "temp_max": 3.5},
			 "weather": [{"id": 800, "description": "clear sky"}]}
		]
	}`

	f, err := DecodeFeed(strings.NewReader(doc), Celsius)
	if err != nil {
		t.Fatalf("DecodeFeed() error = %v", err)
	}

	if f.Location != "Berlin" {
		t.Errorf("Location = %q, want Berlin", f.Location)
	}
	if len(f.Points) != 2 {
		t.Fatalf("len(Points) = %d, want 2", len(f.Points))
	}
	primary, ok := f.Points[0].Primary()
	if !ok || primary.Code != 500 || primary.Description != "light rain" {
		t.Errorf("Points[0].Primary() = %+v", primary)
	}
	if f.Points[1].TempMax != 3.5 {
		t.Errorf("Points[1].TempMax = %v, want 3.5", f.Points[1].TempMax)
	}
	if f.Points[0].Time.Unix() != 1700000000 {
		t.Errorf("Points[0].Time = %v", f.Points[0].Time)
	}
	if f.UTCOffset == nil || *f.UTCOffset != 3600 {
		t.Errorf("UTCOffset = %v, want 3600", f.UTCOffset)
	}

	if _, err := DecodeFeed(strings.NewReader("{"), Celsius); err == nil {
		t.Error("DecodeFeed() expected error for malformed input")
	}
}

func TestForecast_LocalTime(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	offset := func(s int) *int { return &s }

	tests := []struct {
		name     string
		f        *Forecast
		wantHour int
	}{
		{"nil forecast", nil, 12},
		{"unknown offset", &Forecast{}, 12},
		{"east", &Forecast{UTCOffset: offset(10 * 3600)}, 22},
		{"west", &Forecast{UTCOffset: offset(-5 * 3600)}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.f.LocalTime(at)
			if got.Hour() != tt.wantHour {
				t.Errorf("LocalTime().Hour() = %d, want %d", got.Hour(), tt.wantHour)
			}
			if !got.Equal(at) {
				t.Errorf("LocalTime() = %v, want same instant as %v", got, at)
			}
		})
	}
}

func TestForecast_InKeepsOffset(t *testing.T) {
	offset := 7200
	f := &Forecast{Unit: Celsius, UTCOffset: &offset}

	got := f.In(Fahrenheit)
	if got.UTCOffset == nil || *got.UTCOffset != offset {
		t.Errorf("In().UTCOffset = %v, want %d", got.UTCOffset, offset)
	}
}
