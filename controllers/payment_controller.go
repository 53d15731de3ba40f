package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Bishal-code0731/ecom/services"
)

// Stripe signs payloads up to this size; anything bigger is rejected
// before verification.
const maxWebhookBodyBytes = 65536

type PaymentController struct {
	paymentService *services.PaymentService
	logger         *zap.Logger
}

func NewPaymentController(paymentService *services.PaymentService, logger *zap.Logger) *PaymentController {
	return &PaymentController{paymentService: paymentService, logger: logger}
}

func (pc *PaymentController) CreateIntent(c *gin.Context) {
	var req services.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	intent, err := pc.paymentService.CreateIntent(c.Request.Context(), actorFromContext(c), req.OrderID)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondOK(c, intent)
}

func (pc *PaymentController) Confirm(c *gin.Context) {
	var req services.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	order, err := pc.paymentService.ConfirmPayment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondOK(c, order)
}

// Webhook receives Stripe events. The raw body must reach signature
// verification untouched, so it is read directly rather than bound.
func (pc *PaymentController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		respondBadRequest(c, "failed to read request body")
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if err := pc.paymentService.HandleWebhook(c.Request.Context(), payload, sigHeader); err != nil {
		pc.logger.Warn("Webhook rejected", zap.Error(err))
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Message: "received"})
}

func (pc *PaymentController) Methods(c *gin.Context) {
	respondOK(c, pc.paymentService.GetPaymentMethods())
}
