package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/minicart/storefront/internal/checkout"
)

type checkoutRequest struct {
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zipCode"`
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	NameOnCard string `json:"nameOnCard"`
}

type summaryPayload struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type checkoutResponse struct {
	Status               string         `json:"status"`
	OrderID              string         `json:"orderId"`
	Summary              summaryPayload `json:"summary"`
	RedirectAfterSeconds int            `json:"redirectAfterSeconds"`
}

// submitCheckout runs the simulated checkout and maps its two pre-flight
// failures; a checkout that enters processing always completes.
func (h *Handler) submitCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.checkout.Submit(r.Context(), checkout.Form{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		ZipCode:    req.ZipCode,
		CardNumber: req.CardNumber,
		ExpiryDate: req.ExpiryDate,
		CVV:        req.CVV,
		NameOnCard: req.NameOnCard,
	})
	if err != nil {
		mapCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		Status:  checkout.StatusComplete.String(),
		OrderID: result.OrderID,
		Summary: summaryPayload{
			Subtotal: result.Summary.Subtotal.Round(2).InexactFloat64(),
			Shipping: result.Summary.Shipping.Round(2).InexactFloat64(),
			Tax:      result.Summary.Tax.Round(2).InexactFloat64(),
			Total:    result.Summary.Total.Round(2).InexactFloat64(),
		},
		RedirectAfterSeconds: int(result.RedirectAfter.Seconds()),
	})
}

func mapCheckoutError(w http.ResponseWriter, err error) {
	if errors.Is(err, checkout.ErrEmptyCart) {
		writeError(w, http.StatusConflict, "cart is empty")
		return
	}
	var mfErr *checkout.MissingFieldError
	if errors.As(err, &mfErr) {
		writeError(w, http.StatusBadRequest, mfErr.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "checkout failed")
}
