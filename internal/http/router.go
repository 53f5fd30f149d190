package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/campbooking/internal/http/account"
	"github.com/MrJamesThe3rd/campbooking/internal/http/booking"
	"github.com/MrJamesThe3rd/campbooking/internal/http/payment"
)

func New(
	allowedOrigins []string,
	accountsV1 *account.Handler,
	bookingsV1 *booking.Handler,
	paymentsV1 *payment.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			accountsV1.Routes(r)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			bookingsV1.Routes(r)
		})

		r.Route("/payments", paymentsV1.Routes)
	})

	return router
}
