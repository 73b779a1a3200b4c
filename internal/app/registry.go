package app

import (
	"database/sql"

	"go-institute/internal/access"
	"go-institute/internal/approval"
	"go-institute/internal/audit"
	"go-institute/internal/bootstrap"
	"go-institute/internal/branch"
	"go-institute/internal/employment"
	"go-institute/internal/identity"
	"go-institute/internal/messaging/kafka"
	"go-institute/internal/middleware"
	"go-institute/internal/notification"
	"go-institute/internal/scope"
	"go-institute/internal/shared/config"
	"go-institute/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	identityRepo := identity.NewRepository(gormDB)
	employmentRepo := employment.NewRepository(gormDB)
	branchRepo := branch.NewRepository(gormDB)
	approvalRepo := approval.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Access Core ---
	guard, err := access.NewGuard(logger)
	if err != nil {
		return err
	}
	auditLogger := bootstrap.NewStdoutAuditLogger(logger)
	placement := employment.NewPlacement(employmentRepo)

	// --- Services ---
	identityService := identity.NewService(db, identityRepo, placement, guard, auditLogger, logger)
	employmentService := employment.NewService(db, employmentRepo, identityService, guard, logger)
	branchService := branch.NewService(branchRepo, rdb, logger)
	resolver := scope.NewResolver(identityService, employmentService, logger)
	approvalService := approval.NewServiceWithOutbox(db, approvalRepo, placement, counterRepo, outboxRepo, guard, auditLogger, logger)
	notificationService := notification.NewService(notificationRepo, guard, auditLogger, logger)
	auditService := audit.NewService(auditRepo, logger)

	// --- Handlers ---
	identityHandler := identity.NewHandler(identityService, logger)
	employmentHandler := employment.NewHandler(employmentService, logger)
	branchHandler := branch.NewHandler(branchService, logger)
	scopeHandler := scope.NewHandler(resolver, identityService, logger)
	accessHandler := access.NewHandler(guard, logger)
	approvalHandler := approval.NewHandler(approvalService, auditService, logger)
	notificationHandler := notification.NewHandler(notificationService, logger)

	// --- Routes Registration ---
	limit := rate.Limit(cfg.RateLimitPerSecond)

	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	api.Use(
		middleware.RateLimitByIP(limit, cfg.RateLimitBurst),
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.ResolveActor(resolver),
		middleware.ContextLogger(logger),
		middleware.RateLimitByAccount(limit, cfg.RateLimitBurst),
		middleware.Idempotency(rdb),
	)
	{
		identity.RegisterRoutes(api, identityHandler)
		employment.RegisterRoutes(api, employmentHandler)
		branch.RegisterRoutes(api, branchHandler)
		scope.RegisterRoutes(api, scopeHandler)
		access.RegisterRoutes(api, accessHandler)
		approval.RegisterRoutes(api, approvalHandler)
		notification.RegisterRoutes(api, notificationHandler)
	}

	return nil
}
