package standings

// HistoryDepth is the number of preceding seasons a historical average spans.
const HistoryDepth = 3

// AggregateHistory averages, for every rider and race of current, the results
// of the same rider at the same race over the prior seasons. A cell is only
// filled when every prior season has a result there; riders or races absent
// from any prior season leave the cell missing.
func AggregateHistory(current Matrix, prior [HistoryDepth]Matrix) Matrix {
	out := NewMatrix(current.Riders, current.Races)

	var lookups [HistoryDepth]index
	for k, m := range prior {
		lookups[k] = newIndex(m)
	}

	for i, rider := range current.Riders {
		for j, race := range current.Races {
			var sum float64
			complete := true
			for k := range prior {
				v, ok := lookups[k].at(prior[k], rider, race)
				if !ok {
					complete = false
					break
				}
				sum += v
			}
			if complete {
				out.Values[i][j] = sum / HistoryDepth
			}
		}
	}

	return out
}

type index struct {
	riders map[string]int
	races  map[string]int
}

func newIndex(m Matrix) index {
	idx := index{
		riders: make(map[string]int, len(m.Riders)),
		races:  make(map[string]int, len(m.Races)),
	}
	for i, r := range m.Riders {
		idx.riders[r] = i
	}
	for j, r := range m.Races {
		idx.races[r] = j
	}
	return idx
}

func (idx index) at(m Matrix, rider, race string) (float64, bool) {
	i, ok := idx.riders[rider]
	if !ok {
		return 0, false
	}
	j, ok := idx.races[race]
	if !ok {
		return 0, false
	}
	v := m.Values[i][j]
	return v, !IsMissing(v)
}
