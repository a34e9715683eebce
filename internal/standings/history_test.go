package standings

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func single(rider, race string, v float64) Matrix {
	return Matrix{
		Riders: []string{rider},
		Races:  []string{race},
		Values: [][]float64{{v}},
	}
}

func TestAggregateHistoryMean(t *testing.T) {
	current := single("X", "Y", 1)
	prior := [HistoryDepth]Matrix{
		single("X", "Y", 2),
		single("X", "Y", 4),
		single("X", "Y", 6),
	}

	got := AggregateHistory(current, prior)
	v, ok := got.At("X", "Y")
	require.True(t, ok)
	assert.Equal(t, 4.0, v)
}

func TestAggregateHistoryAllOrNothing(t *testing.T) {
	current := single("X", "Y", 1)

	tests := []struct {
		name  string
		prior [HistoryDepth]Matrix
	}{
		{
			name:  "one season missing a result",
			prior: [HistoryDepth]Matrix{single("X", "Y", 2), single("X", "Y", nan), single("X", "Y", 6)},
		},
		{
			name:  "rider absent in one season",
			prior: [HistoryDepth]Matrix{single("X", "Y", 2), single("Z", "Y", 4), single("X", "Y", 6)},
		},
		{
			name:  "race absent in one season",
			prior: [HistoryDepth]Matrix{single("X", "Y", 2), single("X", "Y", 4), single("X", "W", 6)},
		},
		{
			name:  "empty season",
			prior: [HistoryDepth]Matrix{single("X", "Y", 2), {}, single("X", "Y", 6)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateHistory(current, tt.prior)
			_, ok := got.At("X", "Y")
			assert.False(t, ok)
		})
	}
}

func TestAggregateHistoryShapeFollowsCurrent(t *testing.T) {
	current := Matrix{
		Riders: []string{"A", "B"},
		Races:  []string{"QAT", "POR", "ARG"},
		Values: [][]float64{
			{1, 2, nan},
			{3, nan, 4},
		},
	}
	// Prior seasons list races in a different calendar order and extra riders.
	prior := Matrix{
		Riders: []string{"C", "B", "A"},
		Races:  []string{"POR", "QAT"},
		Values: [][]float64{
			{1, 1},
			{5, 6},
			{2, 3},
		},
	}
	shifted := Matrix{
		Riders: []string{"A", "B"},
		Races:  []string{"QAT", "POR"},
		Values: [][]float64{
			{6, 5},
			{nan, 2},
		},
	}

	got := AggregateHistory(current, [HistoryDepth]Matrix{prior, prior, shifted})

	want := Matrix{
		Riders: []string{"A", "B"},
		Races:  []string{"QAT", "POR", "ARG"},
		Values: [][]float64{
			{4, 3, nan},
			{nan, 4, nan},
		},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestMatrixTopAndFirstRaces(t *testing.T) {
	m := Matrix{
		Riders: []string{"A", "B", "C", "D"},
		Races:  []string{"R1", "R2", "R3"},
		Values: [][]float64{
			{1, 2, 3},
			{2, 1, 4},
			{3, 3, 1},
			{4, 4, 2},
		},
	}

	top := m.Top(2, 3)
	assert.Equal(t, []string{"B", "C"}, top.Riders)
	assert.Equal(t, [][]float64{{2, 1, 4}, {3, 3, 1}}, top.Values)

	assert.Equal(t, m.Riders, m.Top(0, 0).Riders)
	assert.Empty(t, m.Top(4, 2).Riders)

	first := m.FirstRaces(2)
	assert.Equal(t, []string{"R1", "R2"}, first.Races)
	assert.Equal(t, []float64{4, 4}, first.Values[3])

	top.Values[0][0] = 99
	assert.Equal(t, 2.0, m.Values[1][0], "clipping copies values")
}

func TestMatrixJSON(t *testing.T) {
	m := Matrix{
		Riders: []string{"A"},
		Races:  []string{"R1", "R2"},
		Values: [][]float64{{1, nan}},
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"riders":["A"],"races":["R1","R2"],"values":[[1,null]]}`, string(data))

	var back Matrix
	require.NoError(t, json.Unmarshal(data, &back))
	if diff := cmp.Diff(m, back, cmpopts.EquateNaNs()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAndSuggestRider(t *testing.T) {
	m := Matrix{Riders: []string{"Francesco Bagnaia", "Jorge Martín", "Marco Bezzecchi"}}

	r, ok := FindRider(m, " jorge  martín ")
	require.True(t, ok)
	assert.Equal(t, "Jorge Martín", r)

	_, ok = FindRider(m, "Bagnaia")
	assert.False(t, ok)

	r, score := SuggestRider(m, "Francesco Bagnaja")
	assert.Equal(t, "Francesco Bagnaia", r)
	assert.Greater(t, score, 0.9)

	_, score = SuggestRider(Matrix{}, "anyone")
	assert.Zero(t, score)
}
