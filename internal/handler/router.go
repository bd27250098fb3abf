package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	custommiddleware "github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса лояльности.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/balance", h.GetBalance)
			r.Get("/transactions", h.GetTransactions)
			r.Post("/points/redeem", h.RedeemPoints)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Post("/api/purchases", h.RecordPurchase)
		r.Post("/api/payments", h.CreatePayment)
		r.Get("/api/payments/{merchantOrderID}", h.GetPaymentStatus)
	})

	// Вебхук аутентифицируется подписью тела, а не cookie.
	r.Post("/api/payments/webhook", h.Webhook)

	// Административный контур; доступ ограничивается на периметре.
	r.Post("/api/merchants", h.CreateMerchant)
	r.Post("/api/merchants/{merchantID}/boost/withdraw", h.RequestBoostWithdrawal)

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/boost/withdrawals/{id}/review", h.ReviewBoostWithdrawal)
		r.Post("/commissions/{id}/review", h.ReviewCommissionPayout)

		r.Get("/commission-settings", h.GetCommissionSettings)
		r.Put("/commission-settings", h.UpdateCommissionSettings)

		r.Get("/boost-settings", h.GetBoostSettings)
		r.Put("/boost-settings", h.UpdateBoostSettings)

		r.Get("/loyalty-slabs/{category}", h.GetLoyaltySlabs)
		r.Put("/loyalty-slabs/{category}", h.SetLoyaltySlabs)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}

func pathParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
