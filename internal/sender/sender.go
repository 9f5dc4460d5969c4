package sender

import (
	"context"

	"github.com/flashmart/storefront/internal/domain"
)

// Dispatcher delivers an order-confirmation notification to a push
// subscription handle. Implementations must be safe for concurrent use.
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, handle string, summary domain.OrderSummary) error
}

// Registrar registers and unregisters push subscription handles with the
// delivery service. Both calls are round-trips that the caller is expected
// to bound with a context deadline.
type Registrar interface {
	Register(ctx context.Context, handle string) error
	Unregister(ctx context.Context, handle string) error
}
