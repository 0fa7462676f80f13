package estimator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

// GuardOptions bound a single prediction and decide when the breaker opens.
type GuardOptions struct {
	Timeout        time.Duration
	BreakerTimeout time.Duration // how long the breaker stays open
	Interval       time.Duration // counts reset period while closed
}

// Guarded bounds every prediction with a timeout and trips a circuit breaker after repeated
// failures. It never retries.
type Guarded struct {
	inner   Estimator
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

func NewGuarded(inner Estimator, opts GuardOptions, logger zerolog.Logger) *Guarded {
	log := logger.With().Str("component", "estimator").Logger()

	st := gobreaker.Settings{Name: "estimator"}
	st.Interval = opts.Interval
	if st.Interval <= 0 {
		st.Interval = 60 * time.Second
	}
	st.Timeout = opts.BreakerTimeout
	if st.Timeout <= 0 {
		st.Timeout = 60 * time.Second
	}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		if counts.Requests < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
	}

	return &Guarded{
		inner:   inner,
		timeout: opts.Timeout,
		breaker: gobreaker.NewCircuitBreaker(st),
		log:     log,
	}
}

// State reports the breaker state ("closed", "half-open", "open").
func (g *Guarded) State() string {
	return g.breaker.State().String()
}

func (g *Guarded) Predict(ctx context.Context, v types.FeatureVector) (Prediction, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.predictWithin(ctx, v)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return Prediction{}, &types.EstimatorError{Op: "predict", Err: err}
	}
	return res.(Prediction), nil
}

// predictWithin returns when the inner estimator does or when ctx expires, whichever is first.
func (g *Guarded) predictWithin(ctx context.Context, v types.FeatureVector) (Prediction, error) {
	type result struct {
		p   Prediction
		err error
	}
	done := make(chan result, 1)
	go func() {
		p, err := g.inner.Predict(ctx, v)
		done <- result{p, err}
	}()

	select {
	case r := <-done:
		return r.p, r.err
	case <-ctx.Done():
		return Prediction{}, ctx.Err()
	}
}
