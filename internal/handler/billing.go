package handler

import (
	"errors"
	"net/http"

	"github.com/mindfixhq/mindfix/internal/billing"
)

type checkoutRequest struct {
	PriceID string `json:"priceId"`
	Email   string `json:"email"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// createCheckoutSession is the POST-only checkout endpoint: 200 {url},
// 400 {error} for missing input, 500 {error} for configuration or upstream
// failures. Non-POST methods get the router's 405.
func (h *handlers) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	url, err := h.Billing.CreateCheckoutSession(r.Context(), req.PriceID, req.Email)
	if err != nil {
		if billing.IsValidationError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, billing.ErrInvalidSiteURL) {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.Log.ErrorContext(r.Context(), "checkout session creation failed",
			"email", req.Email, "price_id", req.PriceID, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, checkoutResponse{URL: url})
}

func (h *handlers) listPlans(w http.ResponseWriter, r *http.Request) {
	if h.Catalog == nil {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"plans": h.Catalog.Plans()})
}
