package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopsphere/apperror"
	"shopsphere/middleware"
	"shopsphere/services"
)

const signatureHeader = "Stripe-Signature"

// maxWebhookBody caps the payload read before signature verification.
const maxWebhookBody = 64 << 10

func (h *Controller) CreatePaymentIntent(c *gin.Context) {
	var input services.PaymentIntentInput
	if !h.bindJSON(c, &input) {
		return
	}
	result, err := h.svc.Payments.CreatePaymentIntent(c.Request.Context(), caller(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleWebhook needs the body exactly as sent; the signature covers the raw
// bytes.
func (h *Controller) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		h.respondError(c, apperror.Validation("Webhook Error: %v", err))
		return
	}
	if _, err := h.svc.Payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader)); err != nil {
		if apperror.KindOf(err) == apperror.KindUnexpected {
			// The processor only distinguishes 2xx from the rest.
			h.log.ErrorContext(c.Request.Context(), "webhook processing failed",
				"request_id", middleware.GetRequestID(c), "error", err)
			_ = c.Error(err)
			c.JSON(http.StatusBadRequest, gin.H{"message": "Webhook Error: processing failed"})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
