package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"magbank/service"
)

// Server is the HTTP API server
type Server struct {
	wagers         service.WagerService
	ledger         service.LedgerService
	accounts       service.AccountService
	redemptions    service.RedemptionService
	users          service.UserService
	metricsEnabled bool
}

// NewServer creates a new API server
func NewServer(
	wagers service.WagerService,
	ledger service.LedgerService,
	accounts service.AccountService,
	redemptions service.RedemptionService,
	users service.UserService,
) *Server {
	return &Server{
		wagers:      wagers,
		ledger:      ledger,
		accounts:    accounts,
		redemptions: redemptions,
		users:       users,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(requireUser)

		r.Route("/games", func(r chi.Router) {
			r.Get("/", s.handleListGames)
			r.Get("/{id}/symbols", s.handleGetSymbols)
			r.Post("/slots/play", s.handlePlay)
			r.Get("/history", s.handlePlayHistory)
			r.Get("/stats", s.handlePlayerStats)
		})

		r.Get("/tickets", s.handleTicketBalance)

		r.Route("/magys", func(r chi.Router) {
			r.Get("/", s.handleMagysBalance)
			r.Get("/history", s.handleMagysHistory)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/request", s.handleRequestAccount)
			r.Get("/{id}", s.handleAccountDetail)

			r.Route("/requests", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/pending", s.handlePendingRequests)
				r.Post("/{id}/resolve", s.handleResolveRequest)
			})
		})

		r.Route("/prizes", func(r chi.Router) {
			r.Get("/", s.handleListPrizes)
			r.Post("/redeem", s.handleRedeem)
			r.Get("/redemptions", s.handleRedemptions)
		})

		r.Get("/user/dashboard", s.handleDashboard)
	})

	return r
}
