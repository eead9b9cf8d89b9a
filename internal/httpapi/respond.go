package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkravets/storecart/internal/cart"
	"github.com/mkravets/storecart/internal/domain"
	"github.com/mkravets/storecart/internal/ledger"
	"github.com/mkravets/storecart/internal/order"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondServiceError maps domain and storage errors onto HTTP codes. The
// services hand back sentinel errors (possibly wrapped), so everything here
// goes through errors.Is.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, ledger.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, domain.ErrInvalidDiscount):
		respondError(w, http.StatusBadRequest, "invalid_discount", err.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, domain.ErrMissingAddress):
		respondError(w, http.StatusBadRequest, "missing_address", err.Error())
	case errors.Is(err, ledger.ErrInsufficientStock):
		var short *ledger.InsufficientStockError
		if errors.As(err, &short) {
			respondJSON(w, http.StatusConflict, ErrorResponse{
				Error:   "insufficient stock",
				Code:    "insufficient_stock",
				Details: short.Error(),
			})
			return
		}
		respondError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, ledger.ErrConflict):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledger.ErrStorageUnavailable):
		respondError(w, http.StatusServiceUnavailable, "storage_unavailable", err.Error())
	default:
		log.Error().Err(err).Msg("unhandled service error")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
