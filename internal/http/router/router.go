package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/washandgo/engagement-api/internal/auth"
	"github.com/washandgo/engagement-api/internal/config"
	"github.com/washandgo/engagement-api/internal/database"
	"github.com/washandgo/engagement-api/internal/http/handler"
	"github.com/washandgo/engagement-api/internal/http/middleware"
)

type Router struct {
	cfg               *config.Config
	logger            *zap.Logger
	db                *gorm.DB
	authMiddleware    *auth.Middleware
	rateLimiter       *middleware.RateLimiter
	engagementHandler *handler.EngagementHandler
	clientHandler     *handler.ClientHandler
	companyHandler    *handler.CompanyHandler
	catalogHandler    *handler.CatalogHandler
	syncHandler       *handler.SyncHandler
	authHandler       *handler.AuthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	engagementHandler *handler.EngagementHandler,
	clientHandler *handler.ClientHandler,
	companyHandler *handler.CompanyHandler,
	catalogHandler *handler.CatalogHandler,
	syncHandler *handler.SyncHandler,
	authHandler *handler.AuthHandler,
) *Router {
	return &Router{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		authMiddleware:    authMiddleware,
		rateLimiter:       rateLimiter,
		engagementHandler: engagementHandler,
		clientHandler:     clientHandler,
		companyHandler:    companyHandler,
		catalogHandler:    catalogHandler,
		syncHandler:       syncHandler,
		authHandler:       authHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := http.StatusOK
		overall := "healthy"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": overall,
			"checks": checks,
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/login", rt.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Engagements
			r.Route("/engagements", func(r chi.Router) {
				r.Get("/", rt.engagementHandler.List)
				r.Post("/", rt.engagementHandler.Create)
				r.Get("/{id}", rt.engagementHandler.Get)
				r.Put("/{id}", rt.engagementHandler.Update)
				r.Delete("/{id}", rt.engagementHandler.Delete)

				// Pricing
				r.Get("/{id}/totals", rt.engagementHandler.Totals)
				r.Put("/{id}/vat", rt.engagementHandler.SetVat)

				// Lifecycle endpoints
				r.Post("/{id}/confirm", rt.engagementHandler.Confirm)
				r.Post("/{id}/complete", rt.engagementHandler.Complete)
				r.Post("/{id}/cancel", rt.engagementHandler.Cancel)
				r.Post("/{id}/pay", rt.engagementHandler.MarkPaid)
				r.Post("/{id}/send", rt.engagementHandler.Send)
				r.Post("/{id}/settle", rt.engagementHandler.Settle)

				// Documents
				r.Get("/{id}/document", rt.engagementHandler.Document)
				r.Post("/{id}/quote", rt.engagementHandler.GenerateQuote)
				r.Post("/{id}/invoice", rt.engagementHandler.GenerateInvoice)
			})

			// Clients
			r.Route("/clients", func(r chi.Router) {
				r.Get("/", rt.clientHandler.List)
				r.Post("/", rt.clientHandler.Create)
				r.Get("/{id}", rt.clientHandler.Get)
				r.Put("/{id}", rt.clientHandler.Update)
				r.Delete("/{id}", rt.clientHandler.Delete)
				r.Post("/{id}/contacts", rt.clientHandler.AddContact)
			})

			// Issuing companies
			r.Route("/companies", func(r chi.Router) {
				r.Get("/", rt.companyHandler.List)
				r.Post("/", rt.companyHandler.Create)
				r.Get("/{id}", rt.companyHandler.Get)
				r.Put("/{id}", rt.companyHandler.Update)
			})

			// Service catalog
			r.Route("/services", func(r chi.Router) {
				r.Get("/", rt.catalogHandler.List)
				r.Post("/", rt.catalogHandler.Create)
				r.Get("/{id}", rt.catalogHandler.Get)
				r.Put("/{id}", rt.catalogHandler.Update)
				r.Delete("/{id}", rt.catalogHandler.Delete)
				r.Post("/{id}/options", rt.catalogHandler.AddOption)
				r.Delete("/{id}/options/{optionId}", rt.catalogHandler.DeleteOption)
			})

			// Remote reconciliation
			r.Route("/sync", func(r chi.Router) {
				r.Get("/status", rt.syncHandler.Status)
				r.With(rt.authMiddleware.RequireAdmin).Post("/engagements", rt.syncHandler.SyncEngagements)
			})
		})
	})

	return r
}
