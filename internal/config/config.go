package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "MOTOGP"

// FirstSeason is the first season of the MotoGP class.
const FirstSeason = 2002

type AppConfig struct {
	// CacheDir holds one file per season and data kind.
	CacheDir string `envconfig:"CACHE_DIR" default:"cache" validate:"required"`

	StandingsURLTemplate string `envconfig:"STANDINGS_URL" default:"https://en.wikipedia.org/wiki/%d_MotoGP_World_Championship" validate:"required,startswith=http,contains=%d"`
	WeatherBaseURL       string `envconfig:"WEATHER_URL" default:"https://api.motogp.pulselive.com/motogp/v1/results" validate:"required,url"`
	WeatherCategory      string `envconfig:"WEATHER_CATEGORY" default:"MotoGP™" validate:"required"`

	// Outbound HTTP.
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s" validate:"gt=0"`
	MaxRetries        int           `envconfig:"MAX_RETRIES" default:"2" validate:"gte=0,lte=5"`
	RequestsPerSecond float64       `envconfig:"REQUESTS_PER_SECOND" default:"5" validate:"gte=0"`
	UserAgent         string        `envconfig:"USER_AGENT" default:"motogp-standings/1.0"`

	// MinSeason is the earliest season the front-end offers.
	MinSeason int `envconfig:"MIN_SEASON" default:"2002" validate:"gte=1949"`

	// WarmSeasons are fetched into the cache in the background; WarmInterval
	// controls how often the warm-up job runs.
	WarmSeasons  []int         `envconfig:"WARM_SEASONS"`
	WarmInterval time.Duration `envconfig:"WARM_INTERVAL" default:"24h" validate:"gt=0"`

	Port        string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	Development bool   `envconfig:"DEVELOPMENT" default:"false"`
}

var validate = validator.New()

// Load reads configuration from the environment (and a .env file, if present)
// with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env file is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &AppConfig{}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, s := range c.WarmSeasons {
		if s < c.MinSeason {
			return fmt.Errorf("invalid config: warm season %d is before MIN_SEASON %d", s, c.MinSeason)
		}
	}
	return nil
}
