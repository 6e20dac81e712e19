// Package assets ships the default condition and temperature catalogs.
package assets

import "embed"

const (
	ConditionsFile   = "conditions.json"
	TemperaturesFile = "temperatures.json"
)

//go:embed conditions.json temperatures.json
var FS embed.FS
