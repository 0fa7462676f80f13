package web

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/engine"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/metrics"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const defaultPersistBuffer = 256

// Saver persists one decision record.
type Saver interface {
	Save(ctx context.Context, rec types.DecisionRecord) error
}

// Persister writes decisions to a Saver off the request path. It implements
// engine.Observer; records that do not fit in the buffer are dropped and counted.
type Persister struct {
	saver   Saver
	metrics *metrics.Registry
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan types.DecisionRecord
	done   chan struct{}
}

var _ engine.Observer = (*Persister)(nil)

// NewPersister starts the background writer. m may be nil.
func NewPersister(saver Saver, buffer int, m *metrics.Registry, logger zerolog.Logger) *Persister {
	if buffer <= 0 {
		buffer = defaultPersistBuffer
	}
	p := &Persister{
		saver:   saver,
		metrics: m,
		log:     logger.With().Str("component", "persister").Logger(),
		queue:   make(chan types.DecisionRecord, buffer),
		done:    make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *Persister) ObserveDecision(rec types.DecisionRecord, _ engine.Outcome) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	select {
	case p.queue <- rec:
	default:
		p.log.Warn().Str("decision_id", rec.ID).Msg("Persist queue full, dropping decision")
		p.failed()
	}
}

func (p *Persister) loop() {
	defer close(p.done)
	for rec := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := p.saver.Save(ctx, rec); err != nil {
			p.log.Error().Err(err).Str("decision_id", rec.ID).Msg("Failed to persist decision")
			p.failed()
		}
		cancel()
	}
}

func (p *Persister) failed() {
	if p.metrics != nil {
		p.metrics.StoreFailures.Inc()
	}
}

// Close stops accepting records and waits until the queued ones are written.
func (p *Persister) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
}
