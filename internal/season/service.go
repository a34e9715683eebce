package season

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/motogp-standings/internal/cache"
	"github.com/i474232898/motogp-standings/internal/metrics"
	"github.com/i474232898/motogp-standings/internal/standings"
	"github.com/i474232898/motogp-standings/internal/weather"
)

var (
	// ErrSeasonOutOfRange is returned for seasons before the first supported
	// season or after the current year.
	ErrSeasonOutOfRange = errors.New("season out of range")
	// ErrNoHistory is returned when fewer than three supported seasons precede
	// the requested one.
	ErrNoHistory = errors.New("not enough preceding seasons for a historical average")
)

// StandingsSource fetches the raw riders' standings table of a season.
type StandingsSource interface {
	Name() string
	FetchStandings(ctx context.Context, season int) (standings.RawTable, error)
}

// Cache stores fetched data per season and kind.
type Cache interface {
	Load(kind cache.Kind, season int, v any) error
	Save(kind cache.Kind, season int, v any) error
}

// Report is everything known about one season.
type Report struct {
	Season    int              `json:"season"`
	Standings standings.Matrix `json:"standings"`
	Weather   weather.Record   `json:"weather"`
	// History is set when the historical average was requested.
	History *standings.Matrix `json:"history,omitempty"`
}

// Service runs the season pipeline: cache lookup, fetch on miss, cleaning and
// the optional historical average. Seasons share nothing but the cache.
type Service struct {
	cache     Cache
	standings StandingsSource
	weather   weather.Source
	minSeason int
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewService creates a new Service.
func NewService(c Cache, st StandingsSource, w weather.Source, minSeason int, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		cache:     c,
		standings: st,
		weather:   w,
		minSeason: minSeason,
		now:       time.Now,
		logger:    logger,
		metrics:   m,
	}
}

// Seasons returns the supported seasons, oldest first.
func (s *Service) Seasons() []int {
	var out []int
	for y := s.minSeason; y <= s.now().Year(); y++ {
		out = append(out, y)
	}
	return out
}

// CheckSeason returns ErrSeasonOutOfRange for unsupported seasons.
func (s *Service) CheckSeason(season int) error {
	if season < s.minSeason || season > s.now().Year() {
		return fmt.Errorf("%w: %d (supported %d-%d)", ErrSeasonOutOfRange, season, s.minSeason, s.now().Year())
	}
	return nil
}

// Standings returns the cleaned standings matrix of season.
func (s *Service) Standings(ctx context.Context, season int) (standings.Matrix, error) {
	if err := s.CheckSeason(season); err != nil {
		return standings.Matrix{}, err
	}

	raw, err := s.rawStandings(ctx, season)
	if err != nil {
		return standings.Matrix{}, err
	}

	m, err := standings.Clean(raw)
	if err != nil {
		return standings.Matrix{}, fmt.Errorf("season %d: %w", season, err)
	}
	return m, nil
}

// Weather returns the race weather record of season.
func (s *Service) Weather(ctx context.Context, season int) (weather.Record, error) {
	if err := s.CheckSeason(season); err != nil {
		return nil, err
	}

	var record weather.Record
	if s.lookup(cache.KindWeather, season, &record) {
		return record, nil
	}

	record, err := s.weather.FetchWeather(ctx, season)
	if err != nil {
		s.metrics.FetchFailures.WithLabelValues(string(cache.KindWeather)).Inc()
		return nil, fmt.Errorf("season %d weather from %s: %w", season, s.weather.Name(), err)
	}
	s.store(cache.KindWeather, season, record)
	return record, nil
}

// History returns the historical average matrix of season: the mean result of
// each rider at each race over the three preceding seasons.
func (s *Service) History(ctx context.Context, season int) (standings.Matrix, error) {
	if err := s.checkHistory(season); err != nil {
		return standings.Matrix{}, err
	}
	current, err := s.Standings(ctx, season)
	if err != nil {
		return standings.Matrix{}, err
	}
	return s.historyFor(ctx, season, current)
}

// Report gathers standings, weather and, if asked, the historical average.
func (s *Service) Report(ctx context.Context, season int, withHistory bool) (Report, error) {
	if withHistory {
		if err := s.checkHistory(season); err != nil {
			return Report{}, err
		}
	}
	current, err := s.Standings(ctx, season)
	if err != nil {
		return Report{}, err
	}

	record, err := s.Weather(ctx, season)
	if err != nil {
		return Report{}, err
	}

	report := Report{Season: season, Standings: current, Weather: record}
	if withHistory {
		history, err := s.historyFor(ctx, season, current)
		if err != nil {
			return Report{}, err
		}
		report.History = &history
	}
	return report, nil
}

// Warm makes sure both cache entries of season exist. Cleaning is not run.
func (s *Service) Warm(ctx context.Context, season int) error {
	if err := s.CheckSeason(season); err != nil {
		return err
	}
	_, stErr := s.rawStandings(ctx, season)
	_, wErr := s.Weather(ctx, season)
	return errors.Join(stErr, wErr)
}

// checkHistory fails before anything is fetched when season has too few
// supported predecessors.
func (s *Service) checkHistory(season int) error {
	if err := s.CheckSeason(season); err != nil {
		return err
	}
	if season-standings.HistoryDepth < s.minSeason {
		return fmt.Errorf("%w: %d", ErrNoHistory, season)
	}
	return nil
}

func (s *Service) historyFor(ctx context.Context, season int, current standings.Matrix) (standings.Matrix, error) {
	var prior [standings.HistoryDepth]standings.Matrix
	for k := range prior {
		m, err := s.Standings(ctx, season-1-k)
		if err != nil {
			return standings.Matrix{}, fmt.Errorf("historical average of %d: %w", season, err)
		}
		prior[k] = m
	}
	return standings.AggregateHistory(current, prior), nil
}

func (s *Service) rawStandings(ctx context.Context, season int) (standings.RawTable, error) {
	var raw standings.RawTable
	if s.lookup(cache.KindStandings, season, &raw) {
		return raw, nil
	}

	raw, err := s.standings.FetchStandings(ctx, season)
	if err != nil {
		s.metrics.FetchFailures.WithLabelValues(string(cache.KindStandings)).Inc()
		return standings.RawTable{}, fmt.Errorf("season %d standings from %s: %w", season, s.standings.Name(), err)
	}
	s.store(cache.KindStandings, season, raw)
	return raw, nil
}

func (s *Service) lookup(kind cache.Kind, season int, v any) bool {
	err := s.cache.Load(kind, season, v)
	if err != nil {
		s.metrics.CacheLookups.WithLabelValues(string(kind), "miss").Inc()
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("cache lookup failed", zap.String("kind", string(kind)), zap.Int("season", season), zap.Error(err))
		}
		return false
	}
	s.metrics.CacheLookups.WithLabelValues(string(kind), "hit").Inc()
	s.logger.Debug("cache hit", zap.String("kind", string(kind)), zap.Int("season", season))
	return true
}

// store saves a fetched entry. A failed save only costs a refetch next time.
func (s *Service) store(kind cache.Kind, season int, v any) {
	if err := s.cache.Save(kind, season, v); err != nil {
		s.logger.Error("failed to cache fetched data", zap.String("kind", string(kind)), zap.Int("season", season), zap.Error(err))
	}
}
