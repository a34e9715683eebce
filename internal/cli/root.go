package cli

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/motogp-standings/internal/cache"
	"github.com/i474232898/motogp-standings/internal/config"
	"github.com/i474232898/motogp-standings/internal/fetch"
	"github.com/i474232898/motogp-standings/internal/logging"
	"github.com/i474232898/motogp-standings/internal/metrics"
	"github.com/i474232898/motogp-standings/internal/season"
	"github.com/i474232898/motogp-standings/internal/standings/wikipedia"
	"github.com/i474232898/motogp-standings/internal/weather/providers"
)

// flag overrides for the environment configuration
var (
	cacheDir    string
	development bool
)

var rootCmd = &cobra.Command{
	Use:          "motogp-standings",
	Short:        "Historical MotoGP riders' standings with race weather",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "",
		"directory of the season cache (overrides MOTOGP_CACHE_DIR)")
	rootCmd.PersistentFlags().BoolVar(&development, "dev", false,
		"human readable debug logging (overrides MOTOGP_DEVELOPMENT)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewChartCmd())
	rootCmd.AddCommand(NewWeatherCmd())
	rootCmd.AddCommand(NewExportCmd())
}

// deps is what every command needs: configuration, a logger and the
// season pipeline wired to its sources and cache.
type deps struct {
	cfg      *config.AppConfig
	logger   *zap.Logger
	registry *prometheus.Registry
	service  *season.Service
}

func setup() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}
	if development {
		cfg.Development = true
	}

	logger, err := logging.New(cfg.Development)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	backoff := fetch.BackoffConfig{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
	client := func(name string) *fetch.Client {
		return fetch.New(fetch.Config{
			Name:              name,
			Timeout:           cfg.HTTPTimeout,
			UserAgent:         cfg.UserAgent,
			Backoff:           backoff,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}, logger)
	}

	scraper := wikipedia.NewScraper(client("wikipedia"), cfg.StandingsURLTemplate, logger)
	pulselive := providers.NewPulselive(client("pulselive"), cfg.WeatherBaseURL, cfg.WeatherCategory, logger)

	service := season.NewService(
		cache.NewFileCache(cfg.CacheDir, logger),
		scraper,
		pulselive,
		cfg.MinSeason,
		logger,
		metrics.New(registry),
	)

	return &deps{cfg: cfg, logger: logger, registry: registry, service: service}, nil
}
