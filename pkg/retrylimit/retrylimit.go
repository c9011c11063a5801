// Package retrylimit paces REST calls with a rate limiter that adapts to the
// responses it sees, and retries the calls that are worth retrying.
//
//	lim := retrylimit.NewAdaptiveLimiter(10, 1, 40, 1, 0.5)
//	err := retrylimit.WithRetryConfig(ctx, send, lim, retrylimit.DefaultRetryConfig())
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// quietPeriod is how long after a slowdown the limiter refuses to speed up.
const quietPeriod = 10 * time.Second

// AdaptiveLimiter is a token bucket whose rate grows by a fixed step on
// success and shrinks by a factor when the remote side pushes back.
type AdaptiveLimiter struct {
	mu       sync.RWMutex
	limiter  *rate.Limiter
	floor    rate.Limit
	ceiling  rate.Limit
	step     rate.Limit
	backoff  float64
	slowedAt time.Time
}

// NewAdaptiveLimiter starts at initial requests per second and stays within
// [lo, hi]. Each success adds stepUp; each slowdown multiplies by stepDown.
func NewAdaptiveLimiter(initial, lo, hi, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	lo = max(lo, 1)
	initial = max(initial, lo)
	return &AdaptiveLimiter{
		limiter: rate.NewLimiter(initial, burstFor(initial)),
		floor:   lo,
		ceiling: hi,
		step:    stepUp,
		backoff: stepDown,
	}
}

// Wait blocks until a request may be made.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success records a successful request.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.slowedAt) > quietPeriod {
		a.set(a.limiter.Limit() + a.step)
	}
}

// RateLimited records a request the remote side refused or failed on.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.slowedAt = time.Now()
	a.set(rate.Limit(float64(a.limiter.Limit()) * a.backoff))
}

// CurrentLimit is the rate in requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) set(l rate.Limit) {
	l = min(max(l, a.floor), a.ceiling)
	if l == a.limiter.Limit() {
		return
	}
	a.limiter.SetLimit(l)
	a.limiter.SetBurst(burstFor(l))
}

func burstFor(l rate.Limit) int {
	return max(1, int(l))
}

// HTTPError is implemented by errors that know the HTTP status they came
// with. Errors without it are treated as transport failures.
type HTTPError interface {
	error
	StatusCode() int
}

// FatalError stops retrying at once.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// ErrorClassifier reports a property of an error.
type ErrorClassifier func(error) bool

// DefaultClassifier reports whether err should slow the limiter down.
func DefaultClassifier(err error) bool {
	c := classify(err)
	return c == classRateLimited || c == classServer
}

// DefaultRetryable retries transport failures, 429 and 5xx. Other statuses
// are client errors that another attempt will not fix.
func DefaultRetryable(err error) bool {
	return classify(err) != classClient
}

type class int

const (
	classTransport class = iota
	classRateLimited
	classServer
	classClient
)

func classify(err error) class {
	var he HTTPError
	if !errors.As(err, &he) {
		return classTransport
	}
	switch code := he.StatusCode(); {
	case code == 0:
		return classTransport
	case code == http.StatusTooManyRequests:
		return classRateLimited
	case code >= 500 && code < 600:
		return classServer
	default:
		return classClient
	}
}

// RetryConfig tunes WithRetryConfig.
type RetryConfig struct {
	MaxAttempts    int           // 0 means the safety cap of 100
	InitialDelay   time.Duration // first backoff
	MaxDelay       time.Duration
	RateLimitDelay time.Duration // fixed pause after a 429
	Multiplier     float64
	Jitter         bool // add up to 25% to each backoff

	// SlowsDown decides which failures shrink the limiter (nil: DefaultClassifier).
	SlowsDown ErrorClassifier
	// Retryable decides which failures get another attempt (nil: DefaultRetryable).
	Retryable ErrorClassifier
	Logger    *zerolog.Logger
}

// DefaultRetryConfig is tuned for chat REST endpoints.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    100,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		RateLimitDelay: 100 * time.Millisecond,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

// WithRetryConfig runs fn until it succeeds, returns a FatalError or a non
// retryable error, ctx ends, or cfg.MaxAttempts is used up. lim may be nil.
func WithRetryConfig(ctx context.Context, fn func() error, lim *AdaptiveLimiter, cfg RetryConfig) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 100
	}
	if cfg.SlowsDown == nil {
		cfg.SlowsDown = DefaultClassifier
	}
	if cfg.Retryable == nil {
		cfg.Retryable = DefaultRetryable
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	delay := cfg.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			if attempt > 1 {
				log.Debug().Int("attempts", attempt).Msg("retry succeeded")
			}
			return nil
		}
		lastErr = err

		var fatal *FatalError
		if errors.As(err, &fatal) || !cfg.Retryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if lim != nil && cfg.SlowsDown(err) {
			lim.RateLimited()
		}

		pause := delay
		if classify(err) == classRateLimited {
			pause = cfg.RateLimitDelay
			log.Warn().Int("attempt", attempt).Msg("rate limited")
		} else {
			if cfg.Jitter {
				pause = withJitter(delay)
			}
			delay = min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxDelay)
			log.Warn().Err(err).Int("attempt", attempt).Dur("sleep", pause).Msg("request failed")
		}

		t := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("max attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}

func withJitter(d time.Duration) time.Duration {
	if d < 4 {
		return d
	}
	return d + rand.N(d/4)
}
