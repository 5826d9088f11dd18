package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/walletcore/internal/adapter/http/handler"
	"github.com/iho/walletcore/internal/adapter/http/middleware"
	"github.com/iho/walletcore/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PaymentHandler   *handler.PaymentHandler
	WalletHandler    *handler.WalletHandler
	ApprovalHandler  *handler.ApprovalHandler
	ExchangeHandler  *handler.ExchangeHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Post("/incoming", cfg.PaymentHandler.Incoming)
			r.Post("/transfer", cfg.PaymentHandler.Transfer)
			r.Post("/convert", cfg.PaymentHandler.Convert)
			r.Post("/withdraw", cfg.PaymentHandler.Withdraw)
		})

		// Wallets
		r.Route("/wallets/{userID}", func(r chi.Router) {
			r.Get("/balance", cfg.WalletHandler.Balance)
			r.Get("/transactions", cfg.WalletHandler.Transactions)
			r.Get("/conversions", cfg.WalletHandler.Conversions)
			r.Get("/dashboard", cfg.WalletHandler.Dashboard)
			r.Get("/approvals", cfg.WalletHandler.Approvals)
			r.Get("/auto-approval", cfg.WalletHandler.GetRule)
			r.Put("/auto-approval", cfg.WalletHandler.SetRule)
		})

		// Pending transfer review
		r.Route("/approvals", func(r chi.Router) {
			r.Get("/", cfg.ApprovalHandler.ListPending)
			r.Get("/{id}", cfg.ApprovalHandler.Get)
			r.Post("/{id}/approve", cfg.ApprovalHandler.Approve)
			r.Post("/{id}/reject", cfg.ApprovalHandler.Reject)
		})

		// Exchange
		r.Route("/exchange", func(r chi.Router) {
			r.Get("/rate", cfg.ExchangeHandler.Rate)
			r.Get("/currencies", cfg.ExchangeHandler.Currencies)
		})
	})

	return r
}
