// Package courses provides the course catalog bounded context module.
package courses

import (
	"learnhub_backend/internal/courses/handler"
	"learnhub_backend/internal/courses/repository"
	"learnhub_backend/internal/courses/service"
	"learnhub_backend/internal/events"
	apphttp "learnhub_backend/internal/http"
	"learnhub_backend/internal/storage"
	"learnhub_backend/platform/logger"
	"learnhub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the courses bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the courses module with all its
// dependencies. uploads may be nil when object storage is not configured.
func NewModule(pool *pgxpool.Pool, cacheClient service.Cache, uploads *storage.Service, eventBus events.Bus, validate *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	var uploader service.Uploader
	if uploads != nil {
		uploader = uploads
	}
	svc := service.New(repo, cacheClient, uploader, eventBus, log)
	h := handler.New(svc, validate, log)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "courses"
}

// Service returns the courses service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts course catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/courses")
	public.GET("", ctx.OptionalAuth, m.handler.List)
	public.GET("/categories", m.handler.Categories)
	public.GET("/:idOrSlug", ctx.OptionalAuth, m.handler.Get)

	manage := ctx.Protected.Group("/courses")
	manage.Use(ctx.RequireInstructor)
	manage.POST("", m.handler.Create)
	manage.PATCH("/:id", m.handler.Update)
	manage.DELETE("/:id", m.handler.Delete)
	manage.POST("/:id/sections", m.handler.AddSection)
	manage.POST("/:id/thumbnail-upload", m.handler.PresignThumbnail)

	sections := ctx.Protected.Group("/sections")
	sections.Use(ctx.RequireInstructor)
	sections.POST("/:id/lessons", m.handler.AddLesson)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
