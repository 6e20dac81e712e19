package forecast

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Feed is the provider forecast document:
// {city:{name,timezone}, list:[{dt, main:{temp,temp_min,temp_max}, weather:[{id,description}]}]}
type Feed struct {
	City struct {
		Name     string `json:"name"`
		Timezone *int   `json:"timezone"`
	} `json:"city"`
	List []FeedItem `json:"list"`
}

// FeedItem is one entry of Feed.List.
type FeedItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []Condition `json:"weather"`
}

// DecodeFeed parses a provider forecast document whose temperatures are in unit.
func DecodeFeed(r io.Reader, unit Unit) (*Forecast, error) {
	var feed Feed
	if err := json.NewDecoder(r).Decode(&feed); err != nil {
		return nil, fmt.Errorf("forecast feed decode: %w", err)
	}
	return feed.Forecast(unit), nil
}

// Forecast converts the feed, keeping the provider's point order.
func (fd Feed) Forecast(unit Unit) *Forecast {
	f := &Forecast{
		Location:  fd.City.Name,
		Unit:      unit,
		Points:    make([]Point, 0, len(fd.List)),
		FetchedAt: time.Now().UTC(),
		UTCOffset: fd.City.Timezone,
	}

	for _, item := range fd.List {
		conditions := make([]Condition, len(item.Weather))
		copy(conditions, item.Weather)
		f.Points = append(f.Points, Point{
			Time:       time.Unix(item.Dt, 0).UTC(),
			Temp:       item.Main.Temp,
			TempMin:    item.Main.TempMin,
			TempMax:    item.Main.TempMax,
			Conditions: conditions,
		})
	}

	return f
}
