package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/logger"
)

// Config holds the request budget of one provider
type Config struct {
	RequestsPerSecond float64
	Burst             int
	// MaxQueueTime bounds how long a request waits for a token
	MaxQueueTime time.Duration
}

// limitedClient throttles the calls of one provider before handing them to the wrapped client
type limitedClient struct {
	provider     string
	inner        adapter.HTTPClient
	limiter      *rate.Limiter
	maxQueueTime time.Duration
}

// NewHTTPClient wraps inner so that calls to the provider stay within its budget.
// A non-positive rate returns inner unchanged.
func NewHTTPClient(provider string, cfg Config, inner adapter.HTTPClient) adapter.HTTPClient {
	if cfg.RequestsPerSecond <= 0 {
		return inner
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = max(int(cfg.RequestsPerSecond), 1)
	}
	maxQueueTime := cfg.MaxQueueTime
	if maxQueueTime <= 0 {
		maxQueueTime = time.Minute
	}

	logger.Info("Rate limiting provider",
		zap.String("provider", provider),
		zap.Float64("requests_per_second", cfg.RequestsPerSecond),
		zap.Int("burst", burst))

	return &limitedClient{
		provider:     provider,
		inner:        inner,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		maxQueueTime: maxQueueTime,
	}
}

func (c *limitedClient) Do(ctx context.Context, req adapter.Request) ([]byte, error) {
	queueCtx, cancel := context.WithTimeout(ctx, c.maxQueueTime)
	defer cancel()

	if err := c.limiter.Wait(queueCtx); err != nil {
		logger.WarnCtx(ctx, "Rate limit token unavailable",
			zap.String("provider", c.provider),
			zap.String("url", req.URL),
			zap.Error(err))
		return nil, fmt.Errorf("rate limit of %s: %w", c.provider, err)
	}

	return c.inner.Do(ctx, req)
}
