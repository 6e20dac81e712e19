package icons

import (
	"errors"
	"fmt"
	"log"
	"path"
	"strconv"
	"time"

	"conversational-weather/internal/catalog"
)

const (
	DaySuffix   = "_day"
	NightSuffix = "_night"

	// MaxAttempts bounds the probes made for a single icon.
	MaxAttempts = 3
)

type state int

const (
	stateExact state = iota
	stateDayNightFallback
	stateBaseCodeFallback
	stateTerminal
)

// Resolution is the outcome of resolving one condition code to an asset.
type Resolution struct {
	Path     string   `json:"path,omitempty"`
	Code     int      `json:"code"`
	Attempts int      `json:"attempts"`
	Found    bool     `json:"found"`
	Tried    []string `json:"tried"`
}

// Resolver maps condition codes to icon assets named {code}{suffix}.png.
type Resolver struct {
	conditions *catalog.ConditionCatalog
	prober     Prober
	base       string
}

// NewResolver returns a resolver probing assets under base.
func NewResolver(conditions *catalog.ConditionCatalog, prober Prober, base string) *Resolver {
	return &Resolver{
		conditions: conditions,
		prober:     prober,
		base:       base,
	}
}

// IsDaytime reports whether hour falls strictly between 8 and 20.
func IsDaytime(t time.Time) bool {
	h := t.Hour()
	return h > 8 && h < 20
}

func (r *Resolver) suffixFor(code int, now time.Time) string {
	entry, ok := r.conditions.Find(code)
	if !ok || !entry.HasDayVariant {
		return ""
	}
	if IsDaytime(now) {
		return DaySuffix
	}
	return NightSuffix
}

func flip(suffix string) string {
	if suffix == DaySuffix {
		return NightSuffix
	}
	return DaySuffix
}

// AssetPath returns the asset path for code and suffix.
func (r *Resolver) AssetPath(code int, suffix string) string {
	return path.Join(r.base, strconv.Itoa(code)+suffix+".png")
}

// Resolve finds an asset for code. It tries the exact code with its day or
// night suffix, then the opposite suffix, then the hundreds base code without
// a suffix. It never probes more than MaxAttempts times. A failed resolution
// is not an error: the caller keeps its previous icon.
func (r *Resolver) Resolve(code int, now time.Time) Resolution {
	res := Resolution{Code: code}

	current := code
	suffix := r.suffixFor(code, now)
	st := stateExact

	for st != stateTerminal && res.Attempts < MaxAttempts {
		name := r.AssetPath(current, suffix)
		res.Attempts++
		res.Tried = append(res.Tried, name)

		err := r.prober.Probe(name)
		if err == nil {
			res.Path = name
			res.Code = current
			res.Found = true
			return res
		}
		if !errors.Is(err, ErrAssetNotFound) {
			log.Printf("Icon probe %s failed: %v", name, err)
		}

		switch st {
		case stateExact:
			if suffix != "" {
				suffix = flip(suffix)
				st = stateDayNightFallback
				continue
			}
			st = r.baseFallback(&current, &suffix)
		case stateDayNightFallback:
			st = r.baseFallback(&current, &suffix)
		default:
			st = stateTerminal
		}
	}

	return res
}

func (r *Resolver) baseFallback(current *int, suffix *string) state {
	baseCode := (*current / 100) * 100
	if baseCode == *current {
		return stateTerminal
	}
	*current = baseCode
	*suffix = ""
	return stateBaseCodeFallback
}

// ResolveHeroIcon returns the hero icon of code as stored in the catalog.
func (r *Resolver) ResolveHeroIcon(code int) (string, error) {
	entry, ok := r.conditions.Find(code)
	if !ok {
		return "", fmt.Errorf("hero icon for %d: %w", code, catalog.ErrConditionNotFound)
	}
	return entry.HeroIcon, nil
}
