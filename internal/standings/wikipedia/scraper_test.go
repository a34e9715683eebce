package wikipedia

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/motogp-standings/internal/fetch"
	"github.com/i474232898/motogp-standings/internal/standings"
)

const seasonPage = `<html><body>
<table class="wikitable">
  <tr><th>Round</th><th>Date</th><th>Grand Prix</th></tr>
  <tr><td>1</td><td>26 March</td><td>Portugal</td></tr>
</table>
<table class="wikitable">
  <tbody>
  <tr><th>Pos.</th><th>Rider</th><th>Bike</th><th>Team</th><th>POR</th><th>ARG</th><th>Pts</th></tr>
  <tr><th>1</th><td>Francesco Bagnaia</td><td>Ducati</td><td>Ducati Lenovo Team</td><td>1<sup>2</sup></td><td>Ret</td><td>25</td></tr>
  <tr><th rowspan="2">2</th><td rowspan="2">A. Rider</td><td>Honda</td><td>Team One</td><td>3</td><td></td><td rowspan="2">29</td></tr>
  <tr><td>KTM</td><td>Team Two</td><td></td><td>4<sup>[a]</sup></td></tr>
  <tr><th>Pos.</th><th>Rider</th><th>Bike</th><th>Team</th><th>POR</th><th>ARG</th><th>Pts</th></tr>
  <tr><td colspan="7">Sources:<table><tr><td>nested</td></tr></table></td></tr>
  </tbody>
</table>
</body></html>`

func TestParseStandingsExpandsSpans(t *testing.T) {
	raw, err := ParseStandings(strings.NewReader(seasonPage), DefaultMarkerColumn)
	require.NoError(t, err)

	assert.Equal(t, []string{"Pos.", "Rider", "Bike", "Team", "POR", "ARG", "Pts"}, raw.Header)
	require.Len(t, raw.Rows, 5)
	assert.Equal(t, []string{"1", "Francesco Bagnaia", "Ducati", "Ducati Lenovo Team", "1", "Ret", "25"}, raw.Rows[0])
	assert.Equal(t, []string{"2", "A. Rider", "KTM", "Team Two", "", "4", "29"}, raw.Rows[2])
}

func TestParsedTableCleans(t *testing.T) {
	raw, err := ParseStandings(strings.NewReader(seasonPage), DefaultMarkerColumn)
	require.NoError(t, err)

	m, err := standings.Clean(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Francesco Bagnaia", "A. Rider"}, m.Riders)
	assert.Equal(t, []string{"POR", "ARG"}, m.Races)

	v, ok := m.At("A. Rider", "POR")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
	v, ok = m.At("A. Rider", "ARG")
	require.True(t, ok)
	assert.Equal(t, 4.0, v)
}

func TestParseStandingsTableNotFound(t *testing.T) {
	page := `<table class="wikitable"><tr><th>Round</th><th>Date</th></tr></table>`
	_, err := ParseStandings(strings.NewReader(page), DefaultMarkerColumn)
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestParseStandingsRaggedTable(t *testing.T) {
	page := `<table class="wikitable">
<tr><th>Pos.</th><th>Rider</th><th>Bike</th><th>QAT</th></tr>
<tr><td>1</td><td>Someone</td></tr>
</table>`
	_, err := ParseStandings(strings.NewReader(page), DefaultMarkerColumn)
	require.ErrorIs(t, err, fetch.ErrParse)
}

func TestFetchStandings(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path != "/wiki/2023_MotoGP_World_Championship" {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprint(w, seasonPage)
	}))
	defer srv.Close()

	client := fetch.New(fetch.Config{Name: "wikipedia", Timeout: time.Second}, zap.NewNop())
	s := NewScraper(client, srv.URL+"/wiki/%d_MotoGP_World_Championship", zap.NewNop())

	raw, err := s.FetchStandings(context.Background(), 2023)
	require.NoError(t, err)
	assert.Len(t, raw.Rows, 5)

	_, err = s.FetchStandings(context.Background(), 1901)
	require.ErrorIs(t, err, fetch.ErrNotFound)
	assert.Equal(t, []string{
		"/wiki/2023_MotoGP_World_Championship",
		"/wiki/1901_MotoGP_World_Championship",
	}, paths)
}
