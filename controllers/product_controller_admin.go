package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopsphere/services"
)

func (h *Controller) CreateProduct(c *gin.Context) {
	var input services.ProductInput
	if !h.bindJSON(c, &input) {
		return
	}
	product, err := h.svc.Catalog.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Controller) UpdateProduct(c *gin.Context) {
	var patch services.ProductPatch
	if !h.bindJSON(c, &patch) {
		return
	}
	product, err := h.svc.Catalog.UpdateProduct(c.Request.Context(), c.Param("slug"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Controller) DeleteProduct(c *gin.Context) {
	if err := h.svc.Catalog.DeleteProduct(c.Request.Context(), c.Param("slug")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
}
