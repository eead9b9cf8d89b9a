package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mkravets/storecart/internal/cart"
	"github.com/mkravets/storecart/internal/ledger"
	"github.com/mkravets/storecart/internal/order"
)

func NewRouter(carts *cart.Service, orders *order.Service, stock ledger.Store, requestTimeout time.Duration) http.Handler {
	cartHandler := NewCartHandler(carts)
	stockHandler := NewStockHandler(stock)
	orderHandler := NewOrderHandler(orders)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/carts/{userID}", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productID}/{variantKey}", cartHandler.UpdateQuantity)
			r.Delete("/items/{productID}/{variantKey}", cartHandler.RemoveItem)
		})

		r.Route("/stock/{variantKey}", func(r chi.Router) {
			r.Get("/", stockHandler.GetStock)
			r.Put("/", stockHandler.SetStock)
			r.Post("/adjust", stockHandler.AdjustStock)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.PlaceOrder)
			r.Get("/", orderHandler.ListOrders)
			r.Get("/{orderNumber}", orderHandler.GetOrder)
			r.Post("/{orderNumber}/status", orderHandler.TransitionStatus)
			r.Post("/{orderNumber}/cancel", orderHandler.CancelOrder)
		})
	})

	return r
}
