package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/flashmart/storefront/pkg/errors"

	"github.com/flashmart/storefront/internal/domain"
)

// MaxItemsPerCart is the maximum number of distinct items allowed in a cart.
const MaxItemsPerCart = 50

// CartStore owns the in-memory carts for all active storefront sessions.
// Each session's cart is guarded by its own mutex; checkout uses the same
// lock via PopCart so no mutation is observable between the order snapshot
// and the clear.
type CartStore struct {
	mu      sync.RWMutex
	carts   map[string]*sessionCart
	logger  *slog.Logger
	idleTTL time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

type sessionCart struct {
	mu         sync.Mutex
	cart       domain.Cart
	lastActive time.Time
}

// NewCartStore creates a cart store. Sessions idle longer than idleTTL are
// pruned by a background janitor; Close stops it.
func NewCartStore(logger *slog.Logger, idleTTL time.Duration) *CartStore {
	s := &CartStore{
		carts:   make(map[string]*sessionCart),
		logger:  logger,
		idleTTL: idleTTL,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Close stops the session janitor. Idempotent.
func (s *CartStore) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

func (s *CartStore) janitor() {
	defer close(s.doneCh)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			s.pruneIdle(now)
		}
	}
}

func (s *CartStore) pruneIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sc := range s.carts {
		sc.mu.Lock()
		idle := now.Sub(sc.lastActive) > s.idleTTL
		sc.mu.Unlock()
		if idle {
			delete(s.carts, id)
			s.logger.Debug("idle session cart pruned", slog.String("session_id", id))
		}
	}
}

// session returns the cart container for a session, creating it on first use.
func (s *CartStore) session(sessionID string) *sessionCart {
	s.mu.RLock()
	sc, ok := s.carts[sessionID]
	s.mu.RUnlock()
	if ok {
		return sc
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok = s.carts[sessionID]; ok {
		return sc
	}

	now := time.Now().UTC()
	sc = &sessionCart{
		cart: domain.Cart{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Items:     []domain.CartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		},
		lastActive: now,
	}
	s.carts[sessionID] = sc
	return sc
}

// AddItem adds one unit of the product to the session's cart. If the product
// is already present its quantity is incremented; otherwise it is appended
// with quantity 1 and a price snapshot copied from the product. Adding never
// fails for a valid product.
func (s *CartStore) AddItem(ctx context.Context, sessionID string, product *domain.Product) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if product == nil || !product.Valid() {
		return nil, apperrors.InvalidInput("a valid product is required")
	}

	sc := s.session(sessionID)
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if i := sc.cart.FindItemIndex(product.ID); i >= 0 {
		sc.cart.Items[i].Quantity++
	} else {
		if len(sc.cart.Items) >= MaxItemsPerCart {
			return nil, apperrors.InvalidInput("cart is full")
		}
		sc.cart.Items = append(sc.cart.Items, domain.CartItem{
			ProductID:     product.ID,
			Name:          product.Name,
			Price:         product.Price,
			OriginalPrice: product.OriginalPrice,
			ImageURL:      product.ImageURL,
			Quantity:      1,
		})
	}

	sc.touch()

	s.logger.DebugContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", product.ID),
	)

	return sc.snapshot(), nil
}

// RemoveItem deletes the entry with the given product ID. Removing an absent
// product is a no-op, not an error, so a double remove is safe.
func (s *CartStore) RemoveItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	sc := s.session(sessionID)
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if i := sc.cart.FindItemIndex(productID); i >= 0 {
		sc.cart.Items = append(sc.cart.Items[:i], sc.cart.Items[i+1:]...)
		sc.touch()

		s.logger.DebugContext(ctx, "item removed from cart",
			slog.String("session_id", sessionID),
			slog.String("product_id", productID),
		)
	}

	return sc.snapshot(), nil
}

// Clear resets the session's cart to empty.
func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	sc := s.session(sessionID)
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.cart.Items = sc.cart.Items[:0]
	sc.touch()

	s.logger.DebugContext(ctx, "cart cleared", slog.String("session_id", sessionID))
	return nil
}

// Get returns a stable snapshot of the session's cart. The snapshot does not
// change when the cart is later mutated.
func (s *CartStore) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	sc := s.session(sessionID)
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.snapshot(), nil
}

// PopCart atomically snapshots and clears the session's cart. It returns the
// pre-clear snapshot and false when the cart was already empty, in which
// case nothing changes. Both steps run under the session lock, so no
// concurrent mutation can observe a half-cleared cart.
func (s *CartStore) PopCart(ctx context.Context, sessionID string) (*domain.Cart, bool) {
	sc := s.session(sessionID)
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.cart.IsEmpty() {
		return nil, false
	}

	snap := sc.snapshot()
	sc.cart.Items = sc.cart.Items[:0]
	sc.touch()

	s.logger.DebugContext(ctx, "cart popped for checkout",
		slog.String("session_id", sessionID),
		slog.Int("item_count", snap.ItemCount()),
	)

	return snap, true
}

// touch must be called with the session lock held.
func (sc *sessionCart) touch() {
	now := time.Now().UTC()
	sc.cart.UpdatedAt = now
	sc.lastActive = now
}

// snapshot must be called with the session lock held.
func (sc *sessionCart) snapshot() *domain.Cart {
	cp := sc.cart
	cp.Items = make([]domain.CartItem, len(sc.cart.Items))
	copy(cp.Items, sc.cart.Items)
	return &cp
}
