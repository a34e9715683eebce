package weather

import "context"

// Source resolves the race conditions of every finished race of a season.
type Source interface {
	Name() string
	FetchWeather(ctx context.Context, season int) (Record, error)
}
