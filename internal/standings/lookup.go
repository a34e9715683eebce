package standings

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// FindRider resolves name to a rider of m, ignoring case and extra spaces.
func FindRider(m Matrix, name string) (string, bool) {
	want := riderLabel(name)
	for _, r := range m.Riders {
		if strings.EqualFold(r, want) {
			return r, true
		}
	}
	return "", false
}

// SuggestRider returns the rider of m whose name is closest to name, along
// with its Jaro-Winkler similarity. The similarity is 0 when m has no riders.
func SuggestRider(m Matrix, name string) (string, float64) {
	want := strings.ToLower(riderLabel(name))

	var best string
	var bestScore float64
	for _, r := range m.Riders {
		score := matchr.JaroWinkler(want, strings.ToLower(r), false)
		if score > bestScore {
			best, bestScore = r, score
		}
	}
	return best, bestScore
}
