// Package enrollments provides the enrollment bounded context module.
package enrollments

import (
	"learnhub_backend/internal/enrollments/handler"
	"learnhub_backend/internal/enrollments/repository"
	"learnhub_backend/internal/events"
	apphttp "learnhub_backend/internal/http"
	"learnhub_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the enrollments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the enrollments module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	h := handler.New(repo, eventBus, log)

	return &Module{handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "enrollments"
}

// RegisterRoutes mounts enrollment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	enrollments := ctx.Protected.Group("/enrollments")
	enrollments.GET("/my-courses", m.handler.MyCourses)
	enrollments.POST("/:courseId", m.handler.Enroll)
	enrollments.GET("/:courseId", m.handler.Detail)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
