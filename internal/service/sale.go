package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/flashmart/storefront/pkg/errors"

	"github.com/flashmart/storefront/internal/domain"
	"github.com/flashmart/storefront/internal/repository"
)

// DefaultPollInterval is how often the poller refreshes the sale view.
const DefaultPollInterval = 5 * time.Second

var (
	salePollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_sale_polls_total",
			Help: "Total number of sale state fetches, by outcome",
		},
		[]string{"outcome"},
	)

	saleDiscardedResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_sale_poll_discarded_total",
			Help: "Sale fetch results discarded because a newer fetch already applied",
		},
	)
)

// SalePoller maintains the process-local view of the admin-controlled sale
// state by polling the authoritative store. Fetch results replace the view
// wholesale (last-write-wins); a failed fetch keeps the previous view, since
// a stale sale is preferred over a flicker to "no sale".
type SalePoller struct {
	repo         repository.SaleRepository
	interval     time.Duration
	fetchTimeout time.Duration
	logger       *slog.Logger

	mu         sync.Mutex
	current    domain.SaleInfo
	appliedSeq uint64
	nextSeq    uint64
	stopped    bool

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	doneCh    chan struct{}
}

// NewSalePoller creates a poller over the given sale repository. A
// non-positive interval falls back to DefaultPollInterval.
func NewSalePoller(repo repository.SaleRepository, interval time.Duration, logger *slog.Logger) *SalePoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &SalePoller{
		repo:         repo,
		interval:     interval,
		fetchTimeout: interval,
		logger:       logger,
		doneCh:       make(chan struct{}),
	}
}

// Start begins polling: one immediate fetch, then one per interval until
// Stop is called or ctx is canceled. Calling Start more than once returns an
// error.
func (p *SalePoller) Start(ctx context.Context) error {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return apperrors.Conflict("sale poller already stopped")
	}

	var started bool
	p.startOnce.Do(func() {
		started = true

		pollCtx, cancel := context.WithCancel(ctx)
		p.cancel = cancel

		go p.run(pollCtx)
	})

	if !started {
		return apperrors.Conflict("sale poller already started")
	}
	return nil
}

// Stop halts polling and releases the ticker. It is idempotent and returns
// once the poll loop has exited; results that resolve afterwards are
// discarded, never applied.
func (p *SalePoller) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()

		if p.cancel != nil {
			p.cancel()
			<-p.doneCh
		} else {
			// Never started; nothing is running.
			close(p.doneCh)
		}
	})
	<-p.doneCh
}

func (p *SalePoller) run(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("sale poller started", slog.Duration("interval", p.interval))

	p.fetchOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("sale poller stopped")
			return
		case <-ticker.C:
			p.fetchOnce(ctx)
		}
	}
}

// fetchOnce performs a single fetch and applies the result through the
// sequence guard.
func (p *SalePoller) fetchOnce(ctx context.Context) {
	seq := p.claimSeq()

	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	sale, err := p.repo.Get(fetchCtx)
	if err != nil {
		// Transient failure: keep the last successful view, retry next tick.
		salePollsTotal.WithLabelValues("failure").Inc()
		p.logger.WarnContext(ctx, "sale fetch failed, keeping previous state",
			slog.String("error", err.Error()),
		)
		return
	}

	salePollsTotal.WithLabelValues("success").Inc()
	p.apply(seq, sale)
}

// claimSeq reserves a monotonic sequence number at fetch initiation time.
func (p *SalePoller) claimSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextSeq++
	return p.nextSeq
}

// apply installs a fetch result unless a fetch initiated later has already
// applied, or the poller has been stopped. Returns whether the result was
// applied.
func (p *SalePoller) apply(seq uint64, sale domain.SaleInfo) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || seq <= p.appliedSeq {
		saleDiscardedResults.Inc()
		return false
	}

	p.appliedSeq = seq
	p.current = sale
	return true
}

// Current returns the normalized sale view for pricing and rendering: an
// active sale with a zero discount behaves identically to no sale at all.
func (p *SalePoller) Current() domain.SaleInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Normalize()
}
