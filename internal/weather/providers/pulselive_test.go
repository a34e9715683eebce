package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/motogp-standings/internal/fetch"
	"github.com/i474232898/motogp-standings/internal/weather"
)

type fakeAPI struct {
	category string
	calls    []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls = append(f.calls, r.URL.Path)
	q := r.URL.Query()

	var payload any
	switch r.URL.Path {
	case "/results/seasons":
		payload = []map[string]any{
			{"id": "s-2022", "year": 2022},
			{"id": "s-2023", "year": 2023},
		}
	case "/results/categories":
		if q.Get("seasonUuid") != "s-2023" {
			http.Error(w, "bad season", http.StatusBadRequest)
			return
		}
		payload = []map[string]any{
			{"id": "c-moto2", "name": "Moto2™"},
			{"id": "c-motogp", "name": f.category},
		}
	case "/results/events":
		if q.Get("isFinished") != "true" {
			http.Error(w, "expected finished events", http.StatusBadRequest)
			return
		}
		payload = []map[string]any{
			{"id": "e-por", "short_name": "POR"},
			{"id": "e-test", "short_name": "JE1"},
			{"id": "e-arg", "short_name": "ARG"},
		}
	case "/results/sessions":
		if q.Get("categoryUuid") != "c-motogp" {
			http.Error(w, "bad category", http.StatusBadRequest)
			return
		}
		switch q.Get("eventUuid") {
		case "e-por":
			payload = []map[string]any{
				{"type": "FP", "condition": map[string]string{"track": "Wet"}},
				{"type": "RAC", "condition": map[string]string{
					"track": "Dry", "air": "19º", "humidity": "59%", "ground": "26º", "weather": "Clear",
				}},
			}
		case "e-arg":
			payload = []map[string]any{
				{"type": "RAC", "condition": map[string]string{
					"track": "Wet", "air": "16º", "humidity": "86%", "ground": "17º", "weather": "Cloudy",
				}},
				{"type": "SPR", "condition": map[string]string{"track": "Dry"}},
			}
		default:
			http.Error(w, "unexpected event", http.StatusBadRequest)
			return
		}
	default:
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func newTestProvider(t *testing.T, api *fakeAPI) *Pulselive {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client := fetch.New(fetch.Config{Name: "pulselive", Timeout: time.Second}, zap.NewNop())
	return NewPulselive(client, srv.URL+"/results", "", zap.NewNop())
}

func TestFetchWeatherRaceSessionsOnly(t *testing.T) {
	api := &fakeAPI{category: DefaultCategory}
	p := newTestProvider(t, api)

	record, err := p.FetchWeather(context.Background(), 2023)
	require.NoError(t, err)

	assert.Equal(t, weather.Record{
		"POR": {TrackWet: "Dry", AirTemp: "19º", Humidity: "59%", GroundTemp: "26º", Clouds: "Clear"},
		"ARG": {TrackWet: "Wet", AirTemp: "16º", Humidity: "86%", GroundTemp: "17º", Clouds: "Cloudy"},
	}, record)
	assert.Equal(t, []string{"ARG", "POR"}, record.Races())

	// The test event is never asked for sessions.
	sessionCalls := 0
	for _, c := range api.calls {
		if c == "/results/sessions" {
			sessionCalls++
		}
	}
	assert.Equal(t, 2, sessionCalls)
}

func TestFetchWeatherUnknownSeason(t *testing.T) {
	p := newTestProvider(t, &fakeAPI{category: DefaultCategory})

	_, err := p.FetchWeather(context.Background(), 1990)
	require.ErrorIs(t, err, ErrSeasonNotFound)
}

func TestFetchWeatherUnknownCategory(t *testing.T) {
	p := newTestProvider(t, &fakeAPI{category: "MotoGP"})

	_, err := p.FetchWeather(context.Background(), 2023)
	require.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestIsRaceWeekend(t *testing.T) {
	assert.True(t, isRaceWeekend("QAT"))
	assert.False(t, isRaceWeekend("JE1"))
	assert.False(t, isRaceWeekend(""))
}

func TestFetchWeatherLaterEventWinsAndNullConditionSkipped(t *testing.T) {
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, payload any) { _ = json.NewEncoder(w).Encode(payload) }
	mux.HandleFunc("/results/seasons", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, []map[string]any{{"id": "s-2020", "year": 2020}})
	})
	mux.HandleFunc("/results/categories", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, []map[string]any{{"id": "c-motogp", "name": DefaultCategory}})
	})
	mux.HandleFunc("/results/events", func(w http.ResponseWriter, _ *http.Request) {
		// Two rounds at the same circuit share a short name.
		reply(w, []map[string]any{
			{"id": "e-spa-1", "short_name": "SPA"},
			{"id": "e-spa-2", "short_name": "SPA"},
			{"id": "e-fra", "short_name": "FRA"},
		})
	})
	mux.HandleFunc("/results/sessions", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("eventUuid") {
		case "e-spa-1":
			reply(w, []map[string]any{{"type": "RAC", "condition": map[string]string{"track": "Dry", "air": "30º"}}})
		case "e-spa-2":
			reply(w, []map[string]any{{"type": "RAC", "condition": map[string]string{"track": "Wet", "air": "22º"}}})
		default:
			reply(w, []map[string]any{{"type": "RAC", "condition": nil}})
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := fetch.New(fetch.Config{Name: "pulselive", Timeout: time.Second}, zap.NewNop())
	p := NewPulselive(client, srv.URL+"/results", "", zap.NewNop())

	record, err := p.FetchWeather(context.Background(), 2020)
	require.NoError(t, err)
	assert.Equal(t, weather.Record{"SPA": {TrackWet: "Wet", AirTemp: "22º"}}, record)
}
