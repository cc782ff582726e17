package handlers

import (
	"fmt"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/docs"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/SscSPs/vault_ledger/internal/platform/config"
	"github.com/SscSPs/vault_ledger/internal/platform/ttlstore"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteOptions carries the shared state behind the /api/v1 middleware.
// A nil store or limiter disables that middleware.
type RouteOptions struct {
	IdempotencyStore ttlstore.Store
	IdempotencyTTL   time.Duration
	RateLimiter      *limiter.Limiter
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) error {
	if err := dto.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register request validators: %w", err)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	setupAPIV1Routes(r, cfg, services, opts)
	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	chain := []gin.HandlerFunc{}
	if opts.RateLimiter != nil {
		chain = append(chain, middleware.RateLimit(opts.RateLimiter))
	}
	chain = append(chain, middleware.ActorMiddleware(cfg.JWTSecret))
	if opts.IdempotencyStore != nil {
		chain = append(chain, middleware.Idempotency(opts.IdempotencyStore, opts.IdempotencyTTL))
	}
	v1 := r.Group("/api/v1", chain...)

	RegisterAccountRoutes(v1, service.Account)
	RegisterSaleRoutes(v1, service.Sale)
	RegisterMovementRoutes(v1, service.Movement)
	RegisterPurchaseOrderRoutes(v1, service.PurchaseOrder)
	RegisterCounterpartyRoutes(v1, service.Counterparty, service.PurchaseOrder)
	RegisterStockRoutes(v1, service.Stock, service.Integrity)
	RegisterIntegrityRoutes(v1, service.Integrity)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
