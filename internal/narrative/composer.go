package narrative

import (
	"fmt"
	"math"
	"strings"

	"conversational-weather/internal/catalog"
	"conversational-weather/internal/forecast"
)

const (
	CelsiusSign    = "°C"
	FahrenheitSign = "°F"
)

// Composer turns summarized forecast data into display sentences.
type Composer struct {
	conditions   *catalog.ConditionCatalog
	temperatures *catalog.TemperatureBandCatalog
}

// NewComposer returns a composer backed by the given read-only catalogs.
func NewComposer(conditions *catalog.ConditionCatalog, temperatures *catalog.TemperatureBandCatalog) *Composer {
	return &Composer{
		conditions:   conditions,
		temperatures: temperatures,
	}
}

// LocationText renders the location sentence.
func LocationText(name string) string {
	return fmt.Sprintf("Seems like you're in %s.", name)
}

// ForecastText joins the condition descriptions into one sentence. The last
// description is preceded by " and then ", all others by ", ".
// No entries yields "There will be later.". Blank descriptions never leave
// doubled spaces behind.
func ForecastText(entries []forecast.StateEntry) string {
	if len(entries) == 0 {
		return "There will be later."
	}

	var b strings.Builder
	for i, entry := range entries {
		switch {
		case i == 0:
		case i == len(entries)-1:
			b.WriteString(" and then ")
		default:
			b.WriteString(", ")
		}
		b.WriteString(entry.Description)
	}

	sentence := fmt.Sprintf("There will be %s later.", b.String())
	return strings.Join(strings.Fields(sentence), " ")
}

// TemperatureText renders the near-term temperature range.
func TemperatureText(min, max float64, useCelsius bool) string {
	sign := UnitSign(useCelsius)
	return fmt.Sprintf("The temperature will be between %d%s and %d%s.",
		Round(min), sign, Round(max), sign)
}

// CurrentTemperatureText renders a single reading, e.g. "12°C".
func CurrentTemperatureText(temp float64, useCelsius bool) string {
	return fmt.Sprintf("%d%s", Round(temp), UnitSign(useCelsius))
}

// UnitSign returns the degree sign for the unit preference.
func UnitSign(useCelsius bool) string {
	if useCelsius {
		return CelsiusSign
	}
	return FahrenheitSign
}

// Round rounds half away from zero.
func Round(v float64) int {
	return int(math.Round(v))
}

// ConditionHint combines the hint of the condition code with the hint of the
// temperature band for temp. temp is in Fahrenheit unless useCelsius is set.
// Unknown codes use catalog.FallbackConditionHint.
func (c *Composer) ConditionHint(code int, temp float64, useCelsius bool) string {
	conditionHint := c.conditions.Hint(code)

	celsius := temp
	if !useCelsius {
		celsius = forecast.FahrenheitToCelsius(temp)
	}

	band, err := c.temperatures.Find(math.Round(celsius))
	if err != nil {
		return conditionHint
	}
	return conditionHint + " " + band.Hint
}
