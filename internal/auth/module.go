// Package auth provides the authentication bounded context module.
// This file defines the module that encapsulates all auth setup and route registration.
package auth

import (
	"learnhub_backend/internal/auth/handler"
	"learnhub_backend/internal/auth/repository"
	"learnhub_backend/internal/auth/service"
	"learnhub_backend/internal/auth/token"
	"learnhub_backend/internal/events"
	apphttp "learnhub_backend/internal/http"
	"learnhub_backend/platform/cache"
	"learnhub_backend/platform/config"
	"learnhub_backend/platform/logger"
	"learnhub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, redisCache *cache.Cache, eventBus events.Bus, validate *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	tokens := token.NewIssuer(cfg)
	svc := service.New(repo, tokens, redisCache, eventBus, log)
	h := handler.New(svc, validate, log)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.POST("/register", m.handler.Register)
	if ctx.LoginLimiter != nil {
		authGroup.POST("/login", ctx.LoginLimiter.Limit(), m.handler.Login)
	} else {
		authGroup.POST("/login", m.handler.Login)
	}
	authGroup.POST("/refresh", m.handler.Refresh)
	authGroup.POST("/verify-email", m.handler.VerifyEmail)

	protected := ctx.Protected.Group("/auth")
	protected.POST("/logout", m.handler.Logout)
	protected.POST("/change-password", m.handler.ChangePassword)
	protected.GET("/me", m.handler.Me)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
