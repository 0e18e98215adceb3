// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"learnhub_backend/platform/apperr"
	"learnhub_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform JSON wrapper used for every response.
type Envelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Data    interface{}        `json:"data,omitempty"`
	Errors  apperr.FieldErrors `json:"errors,omitempty"`
}

// OK sends a 200 response with the given payload.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// OKMessage sends a 200 response with a message and optional payload.
func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created sends a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// CreatedMessage sends a 201 response with a message and payload.
func CreatedMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// HandleError is the single point translating errors into HTTP responses.
// Typed *apperr.Error values map through their Kind; anything else becomes
// a 500. Internal details are logged and, in release mode, replaced with a
// generic message.
func HandleError(c *gin.Context, log *logger.Logger, err error) {
	if err == nil {
		return
	}

	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) {
		domainErr = apperr.Wrap(apperr.KindInternal, err.Error(), err)
	}

	status := domainErr.HTTPStatus()
	message := domainErr.Message

	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err.Error(),
			)
		}
		if gin.Mode() == gin.ReleaseMode {
			message = "Internal server error"
		}
	}

	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Errors:  domainErr.Fields,
	})
}

// AbortError translates the error like HandleError and aborts the chain.
func AbortError(c *gin.Context, log *logger.Logger, err error) {
	HandleError(c, log, err)
	c.Abort()
}
