// Package quote fronts a market data provider with a rate limit, a per-call
// timeout and a circuit breaker. Callers never see provider errors.
package quote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/camuig/stock-quest/internal/logger"
)

// Unavailable is returned by FetchCurrentPrice when no price could be obtained.
const Unavailable = -1.0

var ErrNoData = errors.New("no data for symbol")

// Provider looks up market data for a single symbol.
type Provider interface {
	Price(ctx context.Context, symbol string) (float64, error)
	Name(ctx context.Context, symbol string) (string, error)
}

type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	BreakerFailures   uint32
	BreakerCooldown   time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:           10 * time.Second,
		RequestsPerSecond: 2,
		Burst:             1,
		BreakerFailures:   5,
		BreakerCooldown:   30 * time.Second,
	}
}

type Service struct {
	provider Provider
	timeout  time.Duration
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	log      *logger.Logger
}

func NewService(provider Provider, opts Options, log *logger.Logger) *Service {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = def.RequestsPerSecond
	}
	if opts.Burst <= 0 {
		opts.Burst = def.Burst
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = def.BreakerFailures
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = def.BreakerCooldown
	}

	failures := opts.BreakerFailures
	st := gobreaker.Settings{
		Name:    "quotes",
		Timeout: opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// A symbol the provider does not know is not an outage.
			return err == nil || errors.Is(err, ErrNoData)
		},
	}

	return &Service{
		provider: provider,
		timeout:  opts.Timeout,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		breaker:  gobreaker.NewCircuitBreaker(st),
		log:      log,
	}
}

// FetchCurrentPrice returns the latest price for symbol, or Unavailable.
func (s *Service) FetchCurrentPrice(ctx context.Context, symbol string) float64 {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Unavailable
	}

	v, err := s.call(ctx, func(ctx context.Context) (any, error) {
		price, err := s.provider.Price(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			return nil, fmt.Errorf("%w: price %v", ErrNoData, price)
		}
		return price, nil
	})
	if err != nil {
		s.log.Warn("price lookup failed", "symbol", symbol, "error", err)
		return Unavailable
	}
	return v.(float64)
}

// FetchStockName returns the display name for symbol. ok is false when the
// lookup failed or the provider had no name.
func (s *Service) FetchStockName(ctx context.Context, symbol string) (name string, ok bool) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return "", false
	}

	v, err := s.call(ctx, func(ctx context.Context) (any, error) {
		name, err := s.provider.Name(ctx, symbol)
		if err != nil {
			return nil, err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrNoData)
		}
		return name, nil
	})
	if err != nil {
		s.log.Warn("name lookup failed", "symbol", symbol, "error", err)
		return "", false
	}
	return v.(string), true
}

func (s *Service) call(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	return s.breaker.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return fn(ctx)
	})
}
