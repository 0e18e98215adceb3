// Package handler exposes the course catalog HTTP endpoints.
package handler

import (
	"strconv"

	"learnhub_backend/internal/courses/service"
	"learnhub_backend/internal/courses/transport"
	"learnhub_backend/internal/shared/pagination"
	"learnhub_backend/platform/apperr"
	"learnhub_backend/platform/httpkit"
	"learnhub_backend/platform/logger"
	"learnhub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
	log      *logger.Logger
}

func New(svc *service.Service, validate *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, validate: validate, log: log}
}

func (h *Handler) List(c *gin.Context) {
	minPrice, err := parsePriceQuery(c, "minPrice")
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	maxPrice, err := parsePriceQuery(c, "maxPrice")
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	query := service.ListQuery{
		CategorySlug: c.Query("category"),
		Level:        c.Query("level"),
		Search:       c.Query("search"),
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		Status:       c.Query("status"),
		SortBy:       c.Query("sortBy"),
		SortOrder:    c.Query("sortOrder"),
		Page:         pagination.Parse(c.Query("page"), c.Query("limit")),
	}

	page, err := h.svc.List(c.Request.Context(), query)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, page)
}

func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, categories)
}

func (h *Handler) Get(c *gin.Context) {
	var actorID *uuid.UUID
	var actorRole string
	if id := httpkit.GetIdentity(c); id.IsAuthenticated() {
		uid := id.UserID()
		actorID = &uid
		actorRole = id.Role()
	}

	resp, err := h.svc.Get(c.Request.Context(), c.Param("idOrSlug"), actorID, actorRole)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Create(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), id.UserID(), req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.CreatedMessage(c, "Course created successfully", resp)
}

func (h *Handler) Update(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	courseID, err := parseIDParam(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	var req transport.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), courseID, id.UserID(), id.Role(), req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OKMessage(c, "Course updated successfully", resp)
}

func (h *Handler) Delete(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	courseID, err := parseIDParam(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), courseID, id.UserID(), id.Role()); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OKMessage(c, "Course deleted successfully", nil)
}

func (h *Handler) AddSection(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	courseID, err := parseIDParam(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	var req transport.AddSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	resp, err := h.svc.AddSection(c.Request.Context(), courseID, id.UserID(), id.Role(), req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.CreatedMessage(c, "Section created successfully", resp)
}

func (h *Handler) AddLesson(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("Invalid section id"))
		return
	}

	var req transport.AddLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	resp, err := h.svc.AddLesson(c.Request.Context(), sectionID, id.UserID(), id.Role(), req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.CreatedMessage(c, "Lesson created successfully", resp)
}

func (h *Handler) PresignThumbnail(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	courseID, err := parseIDParam(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	var req transport.PresignThumbnailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	resp, err := h.svc.PresignThumbnail(c.Request.Context(), courseID, id.UserID(), id.Role(), req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, resp)
}

func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("Invalid course id")
	}
	return id, nil
}

func parsePriceQuery(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return nil, apperr.BadRequest("Invalid " + name + " filter")
	}
	return &value, nil
}
