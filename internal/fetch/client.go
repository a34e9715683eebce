package fetch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrConnectivity is returned when a source could not be reached, either
	// because of the network or because it kept failing after retries.
	ErrConnectivity = errors.New("source unreachable")
	// ErrNotFound is returned when a source answers 404.
	ErrNotFound = errors.New("source not found")
	// ErrParse is returned when a fetched document cannot be understood.
	ErrParse = errors.New("unparseable source document")
)

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errCircuitOpen = errors.New("circuit breaker open")
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Config bundles the client settings.
type Config struct {
	Name      string
	Timeout   time.Duration
	UserAgent string
	Backoff   BackoffConfig
	// RequestsPerSecond limits outbound calls; 0 disables the limit.
	RequestsPerSecond float64
}

// Client performs GET requests with retries, exponential backoff, a circuit
// breaker and a rate limit.
type Client struct {
	http    *resty.Client
	circuit *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	backoff BackoffConfig
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)
	if cfg.UserAgent != "" {
		httpClient.SetHeader("User-Agent", cfg.UserAgent)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	backoff := cfg.Backoff
	if backoff.InitialInterval <= 0 {
		backoff.InitialInterval = 500 * time.Millisecond
	}
	if backoff.MaxRetries < 0 {
		backoff.MaxRetries = 0
	}

	return &Client{
		http: httpClient,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		limiter: limiter,
		backoff: backoff,
		logger:  logger.With(zap.String("client", cfg.Name)),
	}
}

// Get fetches url and returns the response body. Transport failures, 429 and
// 5xx answers are retried up to the configured count; other 4xx answers are not.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var attempt int

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConnectivity, url, err)
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			res, execErr := c.http.R().SetContext(ctx).Get(url)
			if execErr != nil {
				return nil, execErr
			}
			if res.StatusCode() == http.StatusTooManyRequests {
				return nil, errRateLimited
			}
			if res.StatusCode() >= 500 {
				return nil, fmt.Errorf("%w: %d", errServerError, res.StatusCode())
			}
			return res, nil
		})

		if err == nil {
			res, ok := result.(*resty.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return checkStatus(url, res)
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %w: %v", ErrConnectivity, url, errCircuitOpen, err)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConnectivity, url, ctx.Err())
		}
		if attempt >= c.backoff.MaxRetries {
			return nil, fmt.Errorf("%w: %s: %v", ErrConnectivity, url, err)
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.backoff.MaxInterval && c.backoff.MaxInterval > 0 {
			delay = c.backoff.MaxInterval
		}
		c.logger.Warn("request failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %s: %v", ErrConnectivity, url, ctx.Err())
		case <-timer.C:
		}

		attempt++
	}
}

func checkStatus(url string, res *resty.Response) ([]byte, error) {
	switch code := res.StatusCode(); {
	case code == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case code < 200 || code >= 300:
		return nil, fmt.Errorf("%w: %s: unexpected status code %d", ErrConnectivity, url, code)
	}
	return res.Body(), nil
}
