package enrich

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces backend calls: a fixed rate plus bounded random jitter, the
// usual courtesy against rate limits and anti-automation defenses. It is
// policy only; nothing may rely on it for ordering.
type Pacer struct {
	limiter *rate.Limiter
	jitter  time.Duration
}

// NewPacer creates a Pacer with one call per interval and up to jitter of
// extra random delay per call.
func NewPacer(interval, jitter time.Duration) *Pacer {
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		jitter:  jitter,
	}
}

// Wait blocks until the next call is due. It returns early only on caller
// cancellation.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	if p.jitter <= 0 {
		return nil
	}

	t := time.NewTimer(rand.N(p.jitter))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
