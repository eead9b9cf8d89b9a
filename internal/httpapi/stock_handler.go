package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mkravets/storecart/internal/ledger"
)

type StockHandler struct {
	stock ledger.Store
}

func NewStockHandler(stock ledger.Store) *StockHandler {
	return &StockHandler{stock: stock}
}

type SetStockRequestDTO struct {
	Quantity int `json:"quantity"`
}

type AdjustStockRequestDTO struct {
	Delta int `json:"delta"`
}

type StockResponseDTO struct {
	VariantKey string `json:"variant_key"`
	Quantity   int    `json:"quantity"`
}

func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	variantKey := chi.URLParam(r, "variantKey")

	quantity, err := h.stock.GetStock(r.Context(), variantKey)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StockResponseDTO{VariantKey: variantKey, Quantity: quantity})
}

func (h *StockHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	variantKey := chi.URLParam(r, "variantKey")

	var req SetStockRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.stock.SetStock(r.Context(), variantKey, req.Quantity); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StockResponseDTO{VariantKey: variantKey, Quantity: req.Quantity})
}

func (h *StockHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	variantKey := chi.URLParam(r, "variantKey")

	var req AdjustStockRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	quantity, err := h.stock.Adjust(r.Context(), variantKey, req.Delta)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StockResponseDTO{VariantKey: variantKey, Quantity: quantity})
}
