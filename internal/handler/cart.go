package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/minicart/storefront/internal/cart"
	"github.com/minicart/storefront/internal/catalog"
)

type cartItemPayload struct {
	ID                 int     `json:"id"`
	Title              string  `json:"title"`
	Price              float64 `json:"price"`
	DiscountPercentage float64 `json:"discountPercentage"`
	Thumbnail          string  `json:"thumbnail,omitempty"`
	Quantity           int     `json:"quantity"`
	Stock              int     `json:"stock"`
	LineTotal          float64 `json:"lineTotal"`
}

type cartPayload struct {
	Items     []cartItemPayload `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"itemCount"`
}

type addItemRequest struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCartPayload(h.cart.Snapshot()))
}

// addItem puts a product into the cart. The product data comes from the
// live catalog, not from the request body, and availability is re-checked
// at add time: a product that vanished or lacks stock for the requested
// quantity is rejected with a conflict instead of silently added.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	p, err := h.catalog.Product(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusConflict, "product is no longer available")
			return
		}
		writeError(w, http.StatusBadGateway, "could not verify product availability")
		return
	}
	if p.Stock < req.Quantity {
		writeError(w, http.StatusConflict, "insufficient stock for requested quantity")
		return
	}

	item := cart.Item{
		ID:                 p.ID,
		Title:              p.Title,
		Price:              p.Price,
		DiscountPercentage: p.DiscountPercentage,
		Thumbnail:          p.Thumbnail,
		Stock:              p.Stock,
	}
	// One Add per unit, as the storefront does; the store caps at stock.
	for i := 0; i < req.Quantity; i++ {
		h.cart.Add(item)
	}
	writeJSON(w, http.StatusOK, toCartPayload(h.cart.Snapshot()))
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.cart.UpdateQuantity(id, req.Quantity)
	writeJSON(w, http.StatusOK, toCartPayload(h.cart.Snapshot()))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	h.cart.Remove(id)
	writeJSON(w, http.StatusOK, toCartPayload(h.cart.Snapshot()))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	writeJSON(w, http.StatusOK, toCartPayload(h.cart.Snapshot()))
}

func toCartPayload(s cart.State) cartPayload {
	items := make([]cartItemPayload, len(s.Items))
	for i, it := range s.Items {
		items[i] = cartItemPayload{
			ID:                 it.ID,
			Title:              it.Title,
			Price:              it.Price.Round(2).InexactFloat64(),
			DiscountPercentage: it.DiscountPercentage.Round(2).InexactFloat64(),
			Thumbnail:          it.Thumbnail,
			Quantity:           it.Quantity,
			Stock:              it.Stock,
			LineTotal:          it.LineTotal().Round(2).InexactFloat64(),
		}
	}
	return cartPayload{
		Items:     items,
		Total:     s.Total.Round(2).InexactFloat64(),
		ItemCount: s.ItemCount,
	}
}
