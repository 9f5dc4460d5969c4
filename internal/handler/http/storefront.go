package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flashmart/storefront/pkg/httputil"
	"github.com/flashmart/storefront/pkg/validator"

	"github.com/flashmart/storefront/internal/domain"
	"github.com/flashmart/storefront/internal/repository"
	"github.com/flashmart/storefront/internal/service"
)

// StorefrontHandler handles HTTP requests for the storefront endpoints.
type StorefrontHandler struct {
	products      repository.ProductRepository
	carts         *service.CartStore
	checkout      *service.CheckoutService
	notifications *service.NotificationService
	poller        *service.SalePoller
	logger        *slog.Logger
}

// NewStorefrontHandler creates a new storefront HTTP handler.
func NewStorefrontHandler(
	products repository.ProductRepository,
	carts *service.CartStore,
	checkout *service.CheckoutService,
	notifications *service.NotificationService,
	poller *service.SalePoller,
	logger *slog.Logger,
) *StorefrontHandler {
	return &StorefrontHandler{
		products:      products,
		carts:         carts,
		checkout:      checkout,
		notifications: notifications,
		poller:        poller,
		logger:        logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// CheckoutRequest is the JSON request body for placing an order.
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,min=1,max=100"`
}

// SubscribeRequest is the JSON request body for registering a push subscription.
type SubscribeRequest struct {
	Handle string `json:"handle" validate:"required,min=1,max=2000"`
}

// --- Response DTOs ---

// ProductView is a catalog product with the sale-adjusted display price.
type ProductView struct {
	domain.Product
	SalePrice int64 `json:"sale_price"`
}

// CartView is the cart with its derived totals. Totals are computed from the
// item snapshots, never stored.
type CartView struct {
	Cart        *domain.Cart `json:"cart"`
	ItemCount   int          `json:"item_count"`
	TotalAmount int64        `json:"total_amount"`
}

func cartView(cart *domain.Cart) CartView {
	return CartView{
		Cart:        cart,
		ItemCount:   cart.ItemCount(),
		TotalAmount: cart.TotalAmount(),
	}
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	sale := h.poller.Current()
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = ProductView{Product: p, SalePrice: sale.DiscountedPrice(p.Price)}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: views})
}

// GetCart handles GET /api/v1/cart
func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	cart, err := h.carts.Get(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// AddItem handles POST /api/v1/cart/items
func (h *StorefrontHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.products.Get(r.Context(), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.carts.AddItem(r.Context(), sessionID, product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "productId is required"},
		})
		return
	}

	cart, err := h.carts.RemoveItem(r.Context(), sessionID, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// ClearCart handles DELETE /api/v1/cart
func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	if err := h.carts.Clear(r.Context(), sessionID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Checkout handles POST /api/v1/checkout
func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	var req CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.checkout.Checkout(r.Context(), sessionID, req.PaymentMethod)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	// Empty cart: nothing happened, nothing to return.
	if order == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// GetSale handles GET /api/v1/sale
func (h *StorefrontHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.poller.Current()})
}

// GetSubscription handles GET /api/v1/notifications
func (h *StorefrontHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	sub := h.notifications.State(sessionID)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sub})
}

// Subscribe handles POST /api/v1/notifications/subscribe
func (h *StorefrontHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	var req SubscribeRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sub, err := h.notifications.Subscribe(r.Context(), sessionID, req.Handle)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sub})
}

// Unsubscribe handles POST /api/v1/notifications/unsubscribe
func (h *StorefrontHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	sub, err := h.notifications.Unsubscribe(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sub})
}
