package weather

import (
	"slices"

	"github.com/samber/lo"
)

// Conditions describes the weather of one race session as reported by the
// timing service. Values are kept in the service's own units and wording,
// e.g. "Dry", "25º", "45%".
type Conditions struct {
	TrackWet   string `json:"track_wet"`
	AirTemp    string `json:"air_temp"`
	Humidity   string `json:"humidity"`
	GroundTemp string `json:"ground_temp"`
	Clouds     string `json:"clouds"`
}

// Record maps a race short name (e.g. "QAT") to its race conditions.
type Record map[string]Conditions

// Empty reports whether the record holds no race.
func (r Record) Empty() bool {
	return len(r) == 0
}

// Races returns the race names of the record in lexical order.
func (r Record) Races() []string {
	races := lo.Keys(r)
	slices.Sort(races)
	return races
}
