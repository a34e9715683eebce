package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"unicode"

	"go.uber.org/zap"

	"github.com/i474232898/motogp-standings/internal/fetch"
	"github.com/i474232898/motogp-standings/internal/weather"
)

var (
	// ErrSeasonNotFound is returned when the results API has no season for a year.
	ErrSeasonNotFound = errors.New("season not found in results API")
	// ErrCategoryNotFound is returned when a season has no category of the configured name.
	ErrCategoryNotFound = errors.New("category not found in results API")
)

const (
	DefaultBaseURL  = "https://api.motogp.pulselive.com/motogp/v1/results"
	DefaultCategory = "MotoGP™"

	raceSession = "RAC"
)

// Getter downloads a document.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Pulselive implements weather.Source on top of the MotoGP results API. It
// walks seasons, categories, events and sessions, keeping race sessions only.
type Pulselive struct {
	name     string
	baseURL  string
	category string
	getter   Getter
	logger   *zap.Logger
}

func NewPulselive(getter Getter, baseURL, category string, logger *zap.Logger) *Pulselive {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if category == "" {
		category = DefaultCategory
	}
	return &Pulselive{
		name:     "pulselive",
		baseURL:  baseURL,
		category: category,
		getter:   getter,
		logger:   logger,
	}
}

func (p *Pulselive) Name() string {
	return p.name
}

type apiSeason struct {
	ID   string `json:"id"`
	Year int    `json:"year"`
}

type apiCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type apiEvent struct {
	ID        string `json:"id"`
	ShortName string `json:"short_name"`
}

type apiSession struct {
	Type      string `json:"type"`
	Condition *struct {
		Track    string `json:"track"`
		Air      string `json:"air"`
		Humidity string `json:"humidity"`
		Ground   string `json:"ground"`
		Weather  string `json:"weather"`
	} `json:"condition"`
}

// FetchWeather returns the race conditions of every finished race weekend of
// season. A season or category the API does not know is an error.
func (p *Pulselive) FetchWeather(ctx context.Context, season int) (weather.Record, error) {
	p.logger.Info("fetching race weather", zap.Int("season", season))

	var seasons []apiSeason
	if err := p.getJSON(ctx, "seasons", nil, &seasons); err != nil {
		return nil, err
	}
	seasonID := ""
	for _, s := range seasons {
		if s.Year == season {
			seasonID = s.ID
			break
		}
	}
	if seasonID == "" {
		return nil, fmt.Errorf("%w: %d", ErrSeasonNotFound, season)
	}

	var categories []apiCategory
	if err := p.getJSON(ctx, "categories", url.Values{"seasonUuid": {seasonID}}, &categories); err != nil {
		return nil, err
	}
	categoryID := ""
	for _, c := range categories {
		if c.Name == p.category {
			categoryID = c.ID
			break
		}
	}
	if categoryID == "" {
		return nil, fmt.Errorf("%w: %q in season %d", ErrCategoryNotFound, p.category, season)
	}

	var events []apiEvent
	if err := p.getJSON(ctx, "events", url.Values{"seasonUuid": {seasonID}, "isFinished": {"true"}}, &events); err != nil {
		return nil, err
	}

	record := weather.Record{}
	for _, event := range events {
		if !isRaceWeekend(event.ShortName) {
			continue
		}

		var sessions []apiSession
		query := url.Values{"eventUuid": {event.ID}, "categoryUuid": {categoryID}}
		if err := p.getJSON(ctx, "sessions", query, &sessions); err != nil {
			return nil, err
		}

		for _, s := range sessions {
			if s.Type != raceSession || s.Condition == nil {
				continue
			}
			record[event.ShortName] = weather.Conditions{
				TrackWet:   s.Condition.Track,
				AirTemp:    s.Condition.Air,
				Humidity:   s.Condition.Humidity,
				GroundTemp: s.Condition.Ground,
				Clouds:     s.Condition.Weather,
			}
		}
	}

	p.logger.Info("fetched race weather", zap.Int("season", season), zap.Int("races", len(record)))
	return record, nil
}

func (p *Pulselive) getJSON(ctx context.Context, resource string, query url.Values, out any) error {
	u := fmt.Sprintf("%s/%s", p.baseURL, resource)
	if len(query) > 0 {
		u = fmt.Sprintf("%s?%s", u, query.Encode())
	}

	body, err := p.getter.Get(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", fetch.ErrParse, u, err)
	}
	return nil
}

// isRaceWeekend tells race weekends ("QAT") from test events ("JE1").
func isRaceWeekend(shortName string) bool {
	if shortName == "" {
		return false
	}
	for _, r := range shortName {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
