// Package users provides the account administration bounded context module.
package users

import (
	apphttp "learnhub_backend/internal/http"
	"learnhub_backend/internal/storage"
	"learnhub_backend/internal/users/handler"
	"learnhub_backend/internal/users/repository"
	"learnhub_backend/internal/users/service"
	"learnhub_backend/platform/logger"
	"learnhub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the users bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the users module with all its
// dependencies. uploads may be nil when object storage is not configured.
func NewModule(pool *pgxpool.Pool, uploads *storage.Service, validate *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	var uploader service.Uploader
	if uploads != nil {
		uploader = uploads
	}
	svc := service.New(repo, uploader, log)
	h := handler.New(svc, validate, log)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "users"
}

// Service returns the users service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts user routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	users := ctx.Protected.Group("/users")
	users.PATCH("/profile", m.handler.UpdateProfile)
	users.POST("/avatar-upload", m.handler.PresignAvatar)
	users.GET("/instructor/stats", ctx.RequireInstructor, m.handler.InstructorStats)

	admin := ctx.Protected.Group("/users")
	admin.Use(ctx.RequireAdmin)
	admin.GET("", m.handler.List)
	admin.PATCH("/:id/role", m.handler.ChangeRole)
	admin.PATCH("/:id/status", m.handler.SetStatus)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
