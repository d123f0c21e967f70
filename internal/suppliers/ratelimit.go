package suppliers

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/argus/v1/internal/contracts"
)

// RateLimitedCandles wraps a candle supplier with a token-bucket
// limiter so parallel snapshot workers cannot stampede the backing
// store or an upstream feed.
type RateLimitedCandles struct {
	inner   contracts.CandleSupplier
	limiter *rate.Limiter
}

// NewRateLimitedCandles decorates inner with reqPerSec / burst limits.
func NewRateLimitedCandles(inner contracts.CandleSupplier, reqPerSec float64, burst int) *RateLimitedCandles {
	return &RateLimitedCandles{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(reqPerSec), burst),
	}
}

var _ contracts.CandleSupplier = (*RateLimitedCandles)(nil)

func (s *RateLimitedCandles) GetCandles(ctx context.Context, assetID string, tf contracts.Timeframe, from, to time.Time) ([]contracts.Candle, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.GetCandles(ctx, assetID, tf, from, to)
}
