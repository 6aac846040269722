package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"dynastyglobe/logging"
	"dynastyglobe/metrics"
	"dynastyglobe/territory"
)

// maxBodySize bounds a single GeoJSON download.
const maxBodySize = 64 << 20

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	BaseURL        string
	Timeout        time.Duration
	BreakerName    string
	MaxFailures    uint32        // consecutive failures before the breaker opens
	BreakerTimeout time.Duration // open -> half-open delay
}

// HTTPSource fetches <base>/<key>.geojson over HTTP behind a circuit breaker.
// Requests are not retried.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
	name   string
}

// NewHTTPSource validates cfg.BaseURL and returns a source.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	name := cfg.BreakerName
	if name == "" {
		name = "dataset-http"
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,

		// A caller giving up says nothing about the origin.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= maxFailures
			if trip {
				logging.Warn().Uint32("failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &HTTPSource{
		base:   base,
		client: &http.Client{Timeout: timeout},
		cb:     cb,
		name:   name,
	}, nil
}

// Fetch downloads and parses the resource for key.
func (s *HTTPSource) Fetch(ctx context.Context, key string) (*territory.Dataset, error) {
	entry, ok := Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	target := s.base.ResolveReference(&url.URL{Path: entry.File})

	start := time.Now()
	data, err := s.cb.Execute(func() ([]byte, error) {
		return s.get(ctx, target.String())
	})
	metrics.RecordFetch("http", time.Since(start), err)

	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(s.name, "rejected").Inc()
			logging.Warn().Err(err).Str("dynasty", key).Msg("[CIRCUIT BREAKER] Request rejected")
		case errors.Is(err, context.Canceled):
			metrics.CircuitBreakerRequests.WithLabelValues(s.name, "cancelled").Inc()
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(s.name, "failure").Inc()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, target, err)
	}
	metrics.CircuitBreakerRequests.WithLabelValues(s.name, "success").Inc()

	return Parse(entry.Name, data)
}

// State returns the breaker state.
func (s *HTTPSource) State() gobreaker.State {
	return s.cb.State()
}

func (s *HTTPSource) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
