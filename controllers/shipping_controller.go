package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopsphere/services"
)

func (h *Controller) CreateShipping(c *gin.Context) {
	var input services.CreateShippingInput
	if !h.bindJSON(c, &input) {
		return
	}
	shipping, err := h.svc.Shipping.CreateShipping(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shipping)
}

func (h *Controller) UpdateShippingStatus(c *gin.Context) {
	var input services.ShippingUpdateInput
	if !h.bindJSON(c, &input) {
		return
	}
	shipping, err := h.svc.Shipping.UpdateShippingStatus(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipping)
}

func (h *Controller) GetShipping(c *gin.Context) {
	shipping, err := h.svc.Shipping.GetShipping(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipping)
}

func (h *Controller) GetShippingByOrder(c *gin.Context) {
	shipping, err := h.svc.Shipping.GetShippingByOrder(c.Request.Context(), caller(c), c.Param("orderId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipping)
}
