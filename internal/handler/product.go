package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/minicart/storefront/internal/catalog"
)

// productPayload is the wire form of a catalog product. Prices are rounded
// to two places for presentation; the domain keeps them exact.
type productPayload struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	DiscountedPrice    float64  `json:"discountedPrice"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Brand              string   `json:"brand,omitempty"`
	Category           string   `json:"category,omitempty"`
	Thumbnail          string   `json:"thumbnail,omitempty"`
	Images             []string `json:"images,omitempty"`
}

type pagePayload struct {
	Products   []productPayload `json:"products"`
	Total      int              `json:"total"`
	Skip       int              `json:"skip"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// listProducts serves the filtered, sorted product listing. Upstream
// failures surface as an empty page, never as an error status: the client
// renders the same empty state for "no matches" and "catalog down".
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	f := catalog.ParseFilter(r.URL.Query())
	page := h.catalog.List(r.Context(), f)
	writeJSON(w, http.StatusOK, toPagePayload(page))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, toProductPayload(*p))
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		// Same empty-state contract as the listing.
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}

// search serves the typeahead flow's raw remote search (modal limit 8).
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := 8
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	page, err := h.catalog.Search(r.Context(), query, limit)
	if err != nil {
		page = catalog.Page{Limit: limit}
	}
	writeJSON(w, http.StatusOK, toPagePayload(page))
}

func toPagePayload(page catalog.Page) pagePayload {
	products := make([]productPayload, len(page.Products))
	for i, p := range page.Products {
		products[i] = toProductPayload(p)
	}
	totalPages := 0
	if page.Limit > 0 {
		totalPages = int(math.Ceil(float64(page.Total) / float64(page.Limit)))
	}
	return pagePayload{
		Products:   products,
		Total:      page.Total,
		Skip:       page.Skip,
		Limit:      page.Limit,
		TotalPages: totalPages,
	}
}

func toProductPayload(p catalog.Product) productPayload {
	return productPayload{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		Price:              p.Price.Round(2).InexactFloat64(),
		DiscountPercentage: p.DiscountPercentage.Round(2).InexactFloat64(),
		DiscountedPrice:    p.DiscountedPrice().Round(2).InexactFloat64(),
		Rating:             p.Rating.Round(2).InexactFloat64(),
		Stock:              p.Stock,
		Brand:              p.Brand,
		Category:           p.Category,
		Thumbnail:          p.Thumbnail,
		Images:             p.Images,
	}
}
