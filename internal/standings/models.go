package standings

import (
	"encoding/json"
	"math"
	"slices"
)

// RawTable is a standings table as extracted from the source page. Cells are
// kept as text; row and column spans are already expanded.
type RawTable struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Empty reports whether the table has no header, as when decoded from "{}".
func (t RawTable) Empty() bool {
	return len(t.Header) == 0
}

// Matrix holds finishing positions by rider (rows) and race (columns).
// Missing results (non-finishes, races not entered) are NaN.
type Matrix struct {
	Riders []string
	Races  []string
	Values [][]float64
}

// NewMatrix returns a matrix of the given shape with every cell missing.
func NewMatrix(riders, races []string) Matrix {
	values := make([][]float64, len(riders))
	for i := range values {
		row := make([]float64, len(races))
		for j := range row {
			row[j] = math.NaN()
		}
		values[i] = row
	}
	return Matrix{
		Riders: slices.Clone(riders),
		Races:  slices.Clone(races),
		Values: values,
	}
}

// IsMissing reports whether v is the missing-result marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// At returns the value for rider at race. ok is false when the rider or race
// is not part of the matrix, or the cell is missing.
func (m Matrix) At(rider, race string) (float64, bool) {
	i := slices.Index(m.Riders, rider)
	j := slices.Index(m.Races, race)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	v := m.Values[i][j]
	return v, !IsMissing(v)
}

// Row returns a copy of the results of rider.
func (m Matrix) Row(rider string) ([]float64, bool) {
	i := slices.Index(m.Riders, rider)
	if i < 0 {
		return nil, false
	}
	return slices.Clone(m.Values[i]), true
}

// Top keeps the riders ranked from..to (1-based, inclusive) in standings order.
// A non-positive to means "through the last rider".
func (m Matrix) Top(from, to int) Matrix {
	if from < 1 {
		from = 1
	}
	if to <= 0 || to > len(m.Riders) {
		to = len(m.Riders)
	}
	if from > to {
		return NewMatrix(nil, m.Races)
	}

	out := Matrix{
		Riders: slices.Clone(m.Riders[from-1 : to]),
		Races:  slices.Clone(m.Races),
		Values: make([][]float64, 0, to-from+1),
	}
	for _, row := range m.Values[from-1 : to] {
		out.Values = append(out.Values, slices.Clone(row))
	}
	return out
}

// FirstRaces keeps the first n races in calendar order. n <= 0 keeps all.
func (m Matrix) FirstRaces(n int) Matrix {
	if n <= 0 || n > len(m.Races) {
		n = len(m.Races)
	}
	out := Matrix{
		Riders: slices.Clone(m.Riders),
		Races:  slices.Clone(m.Races[:n]),
		Values: make([][]float64, 0, len(m.Values)),
	}
	for _, row := range m.Values {
		out.Values = append(out.Values, slices.Clone(row[:n]))
	}
	return out
}

// Restrict returns the matrix limited to the given riders, keeping the order
// of the riders argument. Unknown riders are skipped.
func (m Matrix) Restrict(riders []string) Matrix {
	out := Matrix{Races: slices.Clone(m.Races)}
	for _, r := range riders {
		if row, ok := m.Row(r); ok {
			out.Riders = append(out.Riders, r)
			out.Values = append(out.Values, row)
		}
	}
	return out
}

type matrixJSON struct {
	Riders []string     `json:"riders"`
	Races  []string     `json:"races"`
	Values [][]*float64 `json:"values"`
}

// MarshalJSON writes missing cells as null.
func (m Matrix) MarshalJSON() ([]byte, error) {
	out := matrixJSON{
		Riders: m.Riders,
		Races:  m.Races,
		Values: make([][]*float64, len(m.Values)),
	}
	for i, row := range m.Values {
		cells := make([]*float64, len(row))
		for j, v := range row {
			if IsMissing(v) {
				continue
			}
			v := v
			cells[j] = &v
		}
		out.Values[i] = cells
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads null cells as missing.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var in matrixJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := NewMatrix(in.Riders, in.Races)
	for i, row := range in.Values {
		if i >= len(out.Values) {
			break
		}
		for j, v := range row {
			if j < len(out.Races) && v != nil {
				out.Values[i][j] = *v
			}
		}
	}
	*m = out
	return nil
}
