package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	handlerhttp "github.com/vasiliy-maslov/ecommerce-storefront/internal/handler/http"
)

func NewRouter(h *handlerhttp.StorefrontHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Get("/", h.Bootstrap)
	r.Get("/menu/products", h.ListProducts)
	r.Get("/order/{id}", h.GetOrder)

	// Cart and checkout routes are session-scoped.
	r.Group(func(r chi.Router) {
		r.Use(handlerhttp.SessionMiddleware)

		r.Get("/cart", h.GetCart)
		r.Post("/cart/items", h.AddItem)
		r.Patch("/cart/items/{index}", h.UpdateItem)
		r.Delete("/cart/items/{index}", h.RemoveItem)
		r.Delete("/cart", h.ClearCart)
		r.Post("/cart/coupon", h.ApplyCoupon)
		r.Put("/cart/tip", h.SetTip)
		r.Post("/checkout", h.Checkout)
	})

	return r
}
