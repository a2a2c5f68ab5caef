package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bailflow/core/internal/infrastructure/auth"
	"github.com/bailflow/core/internal/infrastructure/config"
	"github.com/bailflow/core/internal/interfaces/http/handler"
	"github.com/bailflow/core/internal/interfaces/http/middleware"
)

// Handlers groups the HTTP handlers wired into the router
type Handlers struct {
	System         *handler.SystemHandler
	Lease          *handler.LeaseHandler
	Deposit        *handler.DepositHandler
	Reconciliation *handler.ReconciliationHandler
	Outbox         *handler.OutboxHandler
}

// New assembles the gin engine with middleware and all routes
func New(cfg *config.Config, jwtService *auth.JWTService, h Handlers, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.AccessLog(log),
	)

	// Probes stay unauthenticated
	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(jwtService))

	leases := api.Group("/leases")
	{
		leases.POST("", h.Lease.Create)
		leases.GET("/:id", h.Lease.Get)
		leases.POST("/:id/signers", h.Lease.AddSigner)
		leases.POST("/:id/inspections", h.Lease.CreateInspection)
		leases.POST("/:id/activate", h.Lease.Activate)
		leases.POST("/:id/terminate", h.Lease.Terminate)
		leases.POST("/:id/archive", h.Lease.Archive)
		leases.POST("/:id/send", h.Lease.MarkSent)
		leases.POST("/:id/reset", h.Lease.Reset)

		leases.GET("/:id/deposit", h.Deposit.GetStatus)
		leases.POST("/:id/deposit/operations", h.Deposit.AppendOperation)
	}

	api.POST("/signers/:id/sign", h.Lease.RecordSignature)
	api.POST("/inspections/:id/sign", h.Lease.SignInspection)

	admin := api.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/reconciliation/runs", h.Reconciliation.TriggerRun)
		admin.GET("/reconciliation/runs/latest", h.Reconciliation.GetLatestRun)

		admin.GET("/outbox/stats", h.Outbox.GetStats)
		admin.GET("/outbox/dead-letters", h.Outbox.GetDeadLetters)
		admin.POST("/outbox/dead-letters/:id/retry", h.Outbox.RetryDeadLetter)
		admin.GET("/outbox/aggregates/:id/entries", h.Outbox.GetAggregateEntries)
	}

	return engine
}
