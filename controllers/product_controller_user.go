package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopsphere/services"
)

func (h *Controller) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	result, err := h.svc.Catalog.ListProducts(c.Request.Context(), c.Query("keyword"), page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Controller) GetProduct(c *gin.Context) {
	product, err := h.svc.Catalog.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Controller) CreateProductReview(c *gin.Context) {
	var input services.ReviewInput
	if !h.bindJSON(c, &input) {
		return
	}
	if _, err := h.svc.Catalog.CreateReview(c.Request.Context(), caller(c), c.Param("slug"), input); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Review added"})
}
