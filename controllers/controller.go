// Package controllers adapts the storefront services to gin handlers.
package controllers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"shopsphere/apperror"
	"shopsphere/middleware"
	"shopsphere/services"
)

type Controller struct {
	svc *services.Services
	log *slog.Logger
}

func New(svc *services.Services, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{svc: svc, log: log}
}

// respondError writes err as {"message": ...}. Internal failures are logged
// and reported without detail.
func (h *Controller) respondError(c *gin.Context, err error) {
	status, msg := apperror.StatusOf(err)
	if status >= 500 {
		h.log.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(), "request_id", middleware.GetRequestID(c), "error", err)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"message": msg})
}

// bindJSON decodes the body into dst, answering 400 on malformed input.
func (h *Controller) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.respondError(c, apperror.Validation("Invalid request data").WithCause(err))
		return false
	}
	return true
}

func caller(c *gin.Context) services.Identity {
	id, _ := middleware.CurrentUser(c)
	return id
}
