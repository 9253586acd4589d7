package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Controller) GetOrdersAdmin(c *gin.Context) {
	orders, err := h.svc.Orders.ListOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
