package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopsphere/services"
)

func (h *Controller) Checkout(c *gin.Context) {
	var input services.PlaceOrderInput
	if !h.bindJSON(c, &input) {
		return
	}
	order, err := h.svc.Orders.PlaceOrder(c.Request.Context(), caller(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Controller) GetMyOrders(c *gin.Context) {
	orders, err := h.svc.Orders.ListMyOrders(c.Request.Context(), caller(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Controller) GetOrderByID(c *gin.Context) {
	order, err := h.svc.Orders.GetOrder(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Controller) PayOrder(c *gin.Context) {
	var input services.PaymentResultInput
	if !h.bindJSON(c, &input) {
		return
	}
	order, err := h.svc.Orders.PayOrder(c.Request.Context(), caller(c), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Controller) UpdateOrderAddress(c *gin.Context) {
	var input services.AddressInput
	if !h.bindJSON(c, &input) {
		return
	}
	order, err := h.svc.Orders.UpdateShippingAddress(c.Request.Context(), caller(c), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Controller) CancelOrder(c *gin.Context) {
	order, err := h.svc.Orders.CancelOrder(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
}
