package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the storefront API.
func NewRouter(cartHandler *CartHandler, checkoutHandler *CheckoutHandler, menuHandler *MenuHandler, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(MockAuthMiddleware)
	r.Use(SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Get("/", menuHandler.ListItems)
			r.Get("/{product_id}", menuHandler.GetItem)
		})
		r.Get("/cep/{cep}", menuHandler.LookupCEP)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items", cartHandler.UpdateQuantity)
			r.Post("/items/remove", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.GetSession)
			r.Post("/start", checkoutHandler.Start)
			r.Post("/delivery", checkoutHandler.SubmitDelivery)
			r.Post("/payment", checkoutHandler.SubmitPayment)
			r.Post("/back", checkoutHandler.Back)
			r.Post("/reset", checkoutHandler.Reset)
			r.Post("/place", checkoutHandler.PlaceOrder)
		})
	})

	return r
}
