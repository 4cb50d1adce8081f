// Package handler terminates the storefront's HTTP surface and maps domain
// results and errors onto wire payloads.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minicart/storefront/internal/cart"
	"github.com/minicart/storefront/internal/catalog"
	"github.com/minicart/storefront/internal/checkout"
)

// Handler serves the storefront API, delegating to the catalog client, the
// cart store, and the checkout simulator. All three are injected; the
// handler owns no state of its own.
type Handler struct {
	catalog  *catalog.Client
	cart     *cart.Store
	checkout *checkout.Simulator
}

// New constructs a Handler with its domain dependencies.
func New(cat *catalog.Client, store *cart.Store, sim *checkout.Simulator) *Handler {
	return &Handler{
		catalog:  cat,
		cart:     store,
		checkout: sim,
	}
}

// Routes builds the /api route surface.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/categories", h.listCategories)
		r.Get("/search", h.search)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addItem)
			r.Patch("/items/{id}", h.updateItem)
			r.Delete("/items/{id}", h.removeItem)
		})

		r.Post("/checkout", h.submitCheckout)
	})
	return r
}

// errorBody is the JSON error envelope shared by all endpoints.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Best effort: the status is already written.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Code: status, Message: message})
}
