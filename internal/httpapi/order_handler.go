package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mkravets/storecart/internal/domain"
	"github.com/mkravets/storecart/internal/order"
)

type OrderHandler struct {
	orders *order.Service
}

func NewOrderHandler(orders *order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type PlaceOrderRequestDTO struct {
	UserID          string `json:"user_id"`
	AddressRef      string `json:"address_ref"`
	DiscountPercent int    `json:"discount_percent"`
	ShippingFee     int64  `json:"shipping_fee"`
	Note            string `json:"note"`
}

type TransitionRequestDTO struct {
	Status string `json:"status"`
}

func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "user_id is required")
		return
	}
	if req.ShippingFee < 0 {
		respondError(w, http.StatusBadRequest, "invalid_shipping_fee", "shipping_fee must not be negative")
		return
	}

	placed, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderInput{
		UserID:          req.UserID,
		AddressRef:      req.AddressRef,
		DiscountPercent: req.DiscountPercent,
		ShippingFee:     req.ShippingFee,
		Note:            req.Note,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, placed)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	found, err := h.orders.GetOrder(r.Context(), orderNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, found)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "user query parameter is required")
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	var req TransitionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
		return
	}

	updated, err := h.orders.TransitionStatus(r.Context(), orderNumber, status)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	cancelled, err := h.orders.CancelOrder(r.Context(), orderNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cancelled)
}
