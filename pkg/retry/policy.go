package retry

import (
	"context"
	"time"
)

// Policy is a bounded exponential backoff: MaxAttempts tries with delays of
// BaseDelay, BaseDelay*Multiplier, ... between them.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

func NewPolicy(maxAttempts int, baseDelay time.Duration, multiplier float64) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if multiplier < 1 {
		multiplier = 2
	}
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Multiplier:  multiplier,
	}
}

// Do runs fn until it succeeds, attempts run out, or ctx is done while
// waiting between attempts. The last attempt's error is returned on
// exhaustion; it is never swallowed.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	delay := p.BaseDelay
	var err error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}

	return err
}
