package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/flashmart/storefront/pkg/errors"

	"github.com/flashmart/storefront/internal/domain"
)

type stubSaleRepo struct {
	mu   sync.Mutex
	sale domain.SaleInfo
	err  error
	gets int
}

func (r *stubSaleRepo) Get(ctx context.Context) (domain.SaleInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	return r.sale, r.err
}

func (r *stubSaleRepo) Set(ctx context.Context, sale domain.SaleInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sale = sale
	return nil
}

func (r *stubSaleRepo) set(sale domain.SaleInfo, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sale = sale
	r.err = err
}

func (r *stubSaleRepo) getCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

func TestSalePoller_FetchesImmediatelyOnStart(t *testing.T) {
	repo := &stubSaleRepo{sale: domain.SaleInfo{Active: true, Discount: 30}}
	// A long interval proves the first fetch does not wait for the ticker.
	poller := NewSalePoller(repo, time.Hour, newTestLogger())
	defer poller.Stop()

	require.NoError(t, poller.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return poller.Current() == domain.SaleInfo{Active: true, Discount: 30}
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, repo.getCount())
}

func TestSalePoller_DefaultBeforeFirstFetch(t *testing.T) {
	repo := &stubSaleRepo{}
	poller := NewSalePoller(repo, time.Hour, newTestLogger())

	// Never started: no sale is in effect.
	assert.Equal(t, domain.SaleInfo{}, poller.Current())
	poller.Stop()
}

func TestSalePoller_FailedFetchKeepsPreviousState(t *testing.T) {
	repo := &stubSaleRepo{sale: domain.SaleInfo{Active: true, Discount: 20}}
	poller := NewSalePoller(repo, time.Hour, newTestLogger())

	poller.fetchOnce(context.Background())
	require.Equal(t, domain.SaleInfo{Active: true, Discount: 20}, poller.Current())

	repo.set(domain.SaleInfo{}, errors.New("connection refused"))
	poller.fetchOnce(context.Background())

	// The failed fetch must not flicker the view back to "no sale".
	assert.Equal(t, domain.SaleInfo{Active: true, Discount: 20}, poller.Current())
}

func TestSalePoller_LastWriteWins(t *testing.T) {
	repo := &stubSaleRepo{sale: domain.SaleInfo{Active: true, Discount: 20}}
	poller := NewSalePoller(repo, time.Hour, newTestLogger())

	poller.fetchOnce(context.Background())
	repo.set(domain.SaleInfo{Active: false}, nil)
	poller.fetchOnce(context.Background())

	assert.Equal(t, domain.SaleInfo{}, poller.Current())
}

func TestSalePoller_OutOfOrderResultDiscarded(t *testing.T) {
	repo := &stubSaleRepo{}
	poller := NewSalePoller(repo, time.Hour, newTestLogger())

	// Two fetches start in order but resolve in reverse. The earlier one must
	// lose even though it lands last.
	seqOld := poller.claimSeq()
	seqNew := poller.claimSeq()

	assert.True(t, poller.apply(seqNew, domain.SaleInfo{Active: true, Discount: 50}))
	assert.False(t, poller.apply(seqOld, domain.SaleInfo{Active: true, Discount: 10}))

	assert.Equal(t, domain.SaleInfo{Active: true, Discount: 50}, poller.Current())
}

func TestSalePoller_StopDiscardsLateResults(t *testing.T) {
	repo := &stubSaleRepo{}
	poller := NewSalePoller(repo, time.Hour, newTestLogger())

	require.NoError(t, poller.Start(context.Background()))
	seq := poller.claimSeq()
	poller.Stop()

	assert.False(t, poller.apply(seq, domain.SaleInfo{Active: true, Discount: 90}))
	assert.Equal(t, domain.SaleInfo{}, poller.Current())
}

func TestSalePoller_StartTwiceFails(t *testing.T) {
	repo := &stubSaleRepo{}
	poller := NewSalePoller(repo, time.Hour, newTestLogger())
	defer poller.Stop()

	require.NoError(t, poller.Start(context.Background()))
	err := poller.Start(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSalePoller_StartAfterStopFails(t *testing.T) {
	repo := &stubSaleRepo{}
	poller := NewSalePoller(repo, time.Hour, newTestLogger())

	poller.Stop()
	err := poller.Start(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSalePoller_StopIdempotent(t *testing.T) {
	repo := &stubSaleRepo{}
	poller := NewSalePoller(repo, time.Hour, newTestLogger())

	require.NoError(t, poller.Start(context.Background()))
	poller.Stop()
	poller.Stop()
}

func TestSalePoller_CurrentIsNormalized(t *testing.T) {
	repo := &stubSaleRepo{sale: domain.SaleInfo{Active: true, Discount: 0}}
	poller := NewSalePoller(repo, time.Hour, newTestLogger())

	poller.fetchOnce(context.Background())

	// An active zero-percent sale reads back as no sale.
	assert.Equal(t, domain.SaleInfo{}, poller.Current())
}

func TestSalePoller_PollsOnTicker(t *testing.T) {
	repo := &stubSaleRepo{sale: domain.SaleInfo{Active: true, Discount: 10}}
	poller := NewSalePoller(repo, 10*time.Millisecond, newTestLogger())
	defer poller.Stop()

	require.NoError(t, poller.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return repo.getCount() >= 3
	}, time.Second, 5*time.Millisecond)
}
