// Package handler exposes the user administration HTTP endpoints.
package handler

import (
	"strconv"

	"learnhub_backend/internal/shared/pagination"
	"learnhub_backend/internal/users/service"
	"learnhub_backend/internal/users/transport"
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
	var isActive *bool
	if raw := c.Query("isActive"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			httpkit.HandleError(c, h.log, apperr.BadRequest("Invalid isActive filter"))
			return
		}
		isActive = &value
	}

	query := service.ListQuery{
		Role:     c.Query("role"),
		Search:   c.Query("search"),
		IsActive: isActive,
		Page:     pagination.Parse(c.Query("page"), c.Query("limit")),
	}

	page, err := h.svc.List(c.Request.Context(), query)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, page)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	resp, err := h.svc.UpdateProfile(c.Request.Context(), id.UserID(), req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OKMessage(c, "Profile updated successfully", resp)
}

func (h *Handler) ChangeRole(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	userID, err := parseIDParam(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	var req transport.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	resp, err := h.svc.ChangeRole(c.Request.Context(), id.UserID(), userID, req.Role)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OKMessage(c, "Role updated successfully", resp)
}

func (h *Handler) SetStatus(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	userID, err := parseIDParam(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	var req transport.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	resp, err := h.svc.SetStatus(c.Request.Context(), id.UserID(), userID, *req.IsActive)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OKMessage(c, "Status updated successfully", resp)
}

func (h *Handler) InstructorStats(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	resp, err := h.svc.InstructorStats(c.Request.Context(), id.UserID())
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) PresignAvatar(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.PresignAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	resp, err := h.svc.PresignAvatar(c.Request.Context(), id.UserID(), req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, resp)
}

func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("Invalid user id")
	}
	return id, nil
}
