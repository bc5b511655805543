package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/metrics"
	"github.com/egannguyen/petsupplies/internal/service"
)

const maxBodyBytes = 1 << 20

// Handler handles HTTP requests for the storefront API.
type Handler struct {
	catalog *service.CatalogService
	carts   *service.CartService
	orders  *service.OrderService
	reviews *service.ReviewService
	auth    *service.AuthService
	metrics *metrics.Metrics
}

// Services groups the dependencies of Handler.
type Services struct {
	Catalog *service.CatalogService
	Carts   *service.CartService
	Orders  *service.OrderService
	Reviews *service.ReviewService
	Auth    *service.AuthService
	Metrics *metrics.Metrics
}

func NewHandler(s Services) *Handler {
	return &Handler{
		catalog: s.Catalog,
		carts:   s.Carts,
		orders:  s.Orders,
		reviews: s.Reviews,
		auth:    s.Auth,
		metrics: s.Metrics,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}

	mux.HandleFunc("GET /api/products", h.handleListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.handleGetProduct)
	mux.HandleFunc("GET /api/products/{id}/reviews", h.handleListReviews)
	mux.HandleFunc("POST /api/products/{id}/reviews", h.handleAddReview)
	mux.HandleFunc("POST /api/products/purchase", h.handlePurchase)

	mux.HandleFunc("GET /api/cart", h.withSession(h.handleGetCart))
	mux.HandleFunc("POST /api/cart/items", h.withSession(h.handleAddCartItem))
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.withSession(h.handleUpdateCartItem))
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.withSession(h.handleRemoveCartItem))
	mux.HandleFunc("DELETE /api/cart", h.withSession(h.handleClearCart))
	mux.HandleFunc("POST /api/checkout", h.withSession(h.handleCheckout))

	mux.HandleFunc("POST /api/orders", h.handleCreateOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.handleGetOrder)
	mux.HandleFunc("POST /api/orders/{id}/payment/cod", h.handleConfirmCashOnDelivery)

	mux.HandleFunc("POST /api/sellers/register", h.handleRegister)
	mux.HandleFunc("POST /api/sellers/login", h.handleLogin)

	mux.HandleFunc("GET /api/seller/profile", h.requireSeller(h.handleProfile))
	mux.HandleFunc("GET /api/seller/products", h.requireSeller(h.handleListSellerProducts))
	mux.HandleFunc("POST /api/seller/products", h.requireSeller(h.handleCreateProduct))
	mux.HandleFunc("PUT /api/seller/products/{id}", h.requireSeller(h.handleUpdateProduct))
	mux.HandleFunc("DELETE /api/seller/products/{id}", h.requireSeller(h.handleDeleteProduct))
	mux.HandleFunc("GET /api/seller/orders", h.requireSeller(h.handleListSellerOrders))
	mux.HandleFunc("GET /api/seller/reviews", h.requireSeller(h.handleListSellerReviews))
	mux.HandleFunc("PUT /api/seller/products/{productId}/reviews/{reviewId}/response", h.requireSeller(h.handleRespondToReview))
	mux.HandleFunc("GET /api/orders", h.requireSeller(h.handleListOrders))
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.requireSeller(h.handleUpdateOrderStatus))
	mux.HandleFunc("GET /api/orders/{id}/history", h.requireSeller(h.handleOrderHistory))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}

type errorResponse struct {
	Message string              `json:"message"`
	Field   string              `json:"field,omitempty"`
	Results []entity.ItemResult `json:"results,omitempty"`
}

// writeError maps domain errors to status codes. Unknown errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		checkout   *entity.CheckoutError
		validation *entity.ValidationError
	)
	switch {
	case errors.As(err, &checkout):
		writeJSON(w, http.StatusConflict, errorResponse{Message: checkout.Error(), Results: checkout.Results})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: validation.Error(), Field: validation.Field})
	case entity.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: err.Error()})
	case entity.IsStockExceeded(err), entity.IsInsufficientStock(err):
		writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error()})
	case entity.IsAuthenticationRequired(err):
		w.Header().Set("WWW-Authenticate", `Bearer realm="seller"`)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: err.Error()})
	default:
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return entity.NewValidationError("body", "invalid JSON: "+err.Error(), nil)
	}
	if dec.More() {
		return entity.NewValidationError("body", "unexpected data after JSON value", nil)
	}
	return nil
}
