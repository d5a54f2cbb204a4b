package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// KeyedLimiter paces calls per key (typically the LLM endpoint host) with
// a token bucket. Callers sharing a key share the budget.
type KeyedLimiter struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

// NewKeyedLimiter creates a limiter allowing perSecond calls per key with
// the given burst. A non-positive perSecond disables pacing.
func NewKeyedLimiter(perSecond float64, burst int) *KeyedLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &KeyedLimiter{
		m:     make(map[string]*rate.Limiter),
		limit: limit,
		burst: burst,
	}
}

func (l *KeyedLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.m[key]; ok {
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.m[key] = lim
	return lim
}

// Wait blocks until a call for key is allowed. Returns an error if the
// context is cancelled or its deadline is too close to wait.
func (l *KeyedLimiter) Wait(ctx context.Context, key string) error {
	if err := l.limiterFor(key).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", key, err)
	}
	return nil
}

// Completer is the LLM call being paced.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RateLimitedProvider is a decorator that paces calls before delegating to
// the wrapped Completer.
type RateLimitedProvider struct {
	inner   Completer
	limiter *KeyedLimiter
	key     string
}

// NewRateLimitedProvider wraps a Completer with pacing under key. All
// providers targeting the same endpoint should share the same limiter.
func NewRateLimitedProvider(inner Completer, limiter *KeyedLimiter, key string) *RateLimitedProvider {
	return &RateLimitedProvider{
		inner:   inner,
		limiter: limiter,
		key:     key,
	}
}

// Complete waits for the limiter, then delegates to the wrapped provider.
func (p *RateLimitedProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx, p.key); err != nil {
		return "", err
	}
	return p.inner.Complete(ctx, prompt)
}
