package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/service"
)

type cartResponse struct {
	SessionID string            `json:"sessionId"`
	Items     []entity.CartItem `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int               `json:"itemCount"`
}

func newCartResponse(c *entity.Cart) cartResponse {
	return cartResponse{
		SessionID: c.SessionID,
		Items:     c.Snapshot(),
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	}
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, c *entity.Cart, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.GetCart(r.Context(), sessionFrom(r.Context()))
	h.writeCart(w, r, c, err)
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	c, err := h.carts.AddItem(r.Context(), sessionFrom(r.Context()), req.ProductID, qty)
	h.writeCart(w, r, c, err)
}

func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Quantity == nil {
		writeError(w, r, entity.NewValidationError("quantity", "is required", nil))
		return
	}
	c, err := h.carts.UpdateQuantity(r.Context(), sessionFrom(r.Context()), r.PathValue("id"), *req.Quantity)
	h.writeCart(w, r, c, err)
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveItem(r.Context(), sessionFrom(r.Context()), r.PathValue("id"))
	h.writeCart(w, r, c, err)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Clear(r.Context(), sessionFrom(r.Context()))
	h.writeCart(w, r, c, err)
}

type checkoutRequest struct {
	CustomerDetails entity.CustomerDetails `json:"customerDetails"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.orders.Checkout(r.Context(), sessionFrom(r.Context()), req.CustomerDetails)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleConfirmCashOnDelivery(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.ConfirmCashOnDelivery(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleListSellerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListSellerOrders(r.Context(), sellerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	hist, err := h.orders.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}
