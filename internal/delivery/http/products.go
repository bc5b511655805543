package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/service"
)

func parseProductQuery(v url.Values) (entity.ProductQuery, error) {
	q := entity.ProductQuery{
		Search:      v.Get("search"),
		Category:    v.Get("category"),
		Subcategory: v.Get("subcategory"),
	}
	sortBy, err := entity.ParseSortKey(v.Get("sortBy"))
	if err != nil {
		return q, err
	}
	q.SortBy = sortBy

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"minPrice", &q.MinPrice}, {"maxPrice", &q.MaxPrice}} {
		raw := v.Get(p.name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return q, entity.NewValidationError(p.name, "must be a non-negative number", raw)
		}
		*p.dst = &d
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &q.Page}, {"limit", &q.Limit}} {
		raw := v.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, entity.NewValidationError(p.name, "must be an integer", raw)
		}
		*p.dst = n
	}
	return q, nil
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := parseProductQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.catalog.ListProducts(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListReviews(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	User    string `json:"user"`
}

func (h *Handler) handleAddReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	_, p, err := h.reviews.AddReview(r.Context(), r.PathValue("id"), req.User, req.Rating, req.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type purchaseRequest struct {
	Items []entity.PurchaseLine `json:"items"`
}

type purchaseResponse struct {
	Results []entity.ItemResult `json:"results"`
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Items) == 0 {
		writeError(w, r, entity.NewValidationError("items", "must not be empty", nil))
		return
	}
	writeJSON(w, http.StatusOK, purchaseResponse{Results: h.orders.Purchase(r.Context(), req.Items)})
}

func (h *Handler) handleListSellerProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.catalog.ListSellerProducts(r.Context(), sellerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.catalog.CreateProduct(r.Context(), sellerFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.catalog.UpdateProduct(r.Context(), sellerFrom(r.Context()), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), sellerFrom(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListSellerReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListSellerReviews(r.Context(), sellerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

type responseRequest struct {
	Response string `json:"response"`
}

func (h *Handler) handleRespondToReview(w http.ResponseWriter, r *http.Request) {
	var req responseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	review, err := h.reviews.Respond(r.Context(), sellerFrom(r.Context()),
		r.PathValue("productId"), r.PathValue("reviewId"), req.Response)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}
