package http

import (
	"log/slog"
	"net/http"

	"github.com/flashmart/storefront/pkg/httputil"
	"github.com/flashmart/storefront/pkg/validator"

	"github.com/flashmart/storefront/internal/domain"
	"github.com/flashmart/storefront/internal/service"
)

// AdminHandler handles HTTP requests for the admin sale surface.
type AdminHandler struct {
	sales  *service.SaleAdminService
	logger *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(sales *service.SaleAdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		sales:  sales,
		logger: logger,
	}
}

// SetSaleRequest is the JSON request body for updating the sale state.
type SetSaleRequest struct {
	Active   bool `json:"is_active"`
	Discount int  `json:"discount" validate:"gte=0,lte=100"`
}

// SetSale handles PUT /api/v1/admin/sale
func (h *AdminHandler) SetSale(w http.ResponseWriter, r *http.Request) {
	var req SetSaleRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sale, err := h.sales.SetSale(r.Context(), domain.SaleInfo{
		Active:   req.Active,
		Discount: req.Discount,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sale})
}

// GetSale handles GET /api/v1/admin/sale. Unlike the storefront view this
// returns the stored state as written, without pricing normalization.
func (h *AdminHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.sales.GetSale(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sale})
}
