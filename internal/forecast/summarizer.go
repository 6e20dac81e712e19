package forecast

const (
	// MaxDistinctConditions caps the number of states kept per forecast.
	MaxDistinctConditions = 5

	// DefaultLookahead is the number of near-term points used for extremes.
	DefaultLookahead = 5

	// SentinelMin and SentinelMax are the starting values of the extremes
	// scan. They survive unchanged only when there are no points to scan.
	SentinelMin = 500.0
	SentinelMax = -500.0
)

// StateEntry is one distinct condition description and its code.
type StateEntry struct {
	Description string `json:"description"`
	Code        int    `json:"code"`
}

// DedupState records distinct condition descriptions in first-seen order.
// One state belongs to one summarization pass and must not be shared.
type DedupState struct {
	seen    map[string]struct{}
	entries []StateEntry
}

// NewDedupState returns an empty state for a new forecast.
func NewDedupState() *DedupState {
	return &DedupState{
		seen:    make(map[string]struct{}, MaxDistinctConditions),
		entries: make([]StateEntry, 0, MaxDistinctConditions),
	}
}

// Record adds description unless it is already known or the state is full.
// It reports whether the entry was added.
func (s *DedupState) Record(description string, code int) bool {
	if _, ok := s.seen[description]; ok {
		return false
	}
	if len(s.entries) >= MaxDistinctConditions {
		return false
	}
	s.seen[description] = struct{}{}
	s.entries = append(s.entries, StateEntry{Description: description, Code: code})
	return true
}

// Entries returns the recorded entries in insertion order.
func (s *DedupState) Entries() []StateEntry {
	out := make([]StateEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of recorded entries.
func (s *DedupState) Len() int {
	return len(s.entries)
}

// Full reports whether no more entries can be recorded.
func (s *DedupState) Full() bool {
	return len(s.entries) >= MaxDistinctConditions
}

// SummarizeConditions captures the first distinct primary condition
// descriptions of f into state and returns them. Later points never evict
// earlier ones.
func SummarizeConditions(f *Forecast, state *DedupState) []StateEntry {
	if f != nil {
		for _, p := range f.Points {
			if state.Full() {
				break
			}
			primary, ok := p.Primary()
			if !ok {
				continue
			}
			state.Record(primary.Description, primary.Code)
		}
	}
	return state.Entries()
}

// Extremes is the near-term temperature range of a forecast.
type Extremes struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Empty reports whether the extremes are still the initial sentinels.
func (e Extremes) Empty() bool {
	return e.Min == SentinelMin && e.Max == SentinelMax
}

// TemperatureExtremes returns the lowest temp_min and highest temp_max of
// the first lookahead points. A non-positive lookahead uses DefaultLookahead.
func TemperatureExtremes(f *Forecast, lookahead int) Extremes {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}

	e := Extremes{Min: SentinelMin, Max: SentinelMax}
	if f == nil {
		return e
	}

	for i, p := range f.Points {
		if i >= lookahead {
			break
		}
		if p.TempMin < e.Min {
			e.Min = p.TempMin
		}
		if p.TempMax > e.Max {
			e.Max = p.TempMax
		}
	}

	return e
}
