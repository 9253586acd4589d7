package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopsphere/middleware"
	"shopsphere/services"
)

func (h *Controller) Register(c *gin.Context) {
	var input services.RegisterInput
	if !h.bindJSON(c, &input) {
		return
	}
	user, err := h.svc.Auth.Register(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *Controller) Login(c *gin.Context) {
	var input services.LoginInput
	if !h.bindJSON(c, &input) {
		return
	}
	session, err := h.svc.Auth.Login(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Controller) Logout(c *gin.Context) {
	if err := h.svc.Auth.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Controller) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
