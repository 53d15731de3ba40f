package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Bishal-code0731/ecom/services"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: message})
}

// respondError maps service errors to HTTP status codes. Unrecognized
// errors become a 500 with a generic message; the detail goes to the log.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validationErr   *services.ValidationError
		notFoundErr     *services.NotFoundError
		unauthorizedErr *services.UnauthorizedError
		stockErr        *services.InsufficientStockError
		transitionErr   *services.TransitionError
		verifyErr       *services.PaymentVerificationError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: validationErr.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: stockErr.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: transitionErr.Error()})
	case errors.As(err, &verifyErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: verifyErr.Error()})
	case errors.As(err, &unauthorizedErr):
		c.JSON(http.StatusForbidden, Response{Success: false, Message: unauthorizedErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, Response{Success: false, Message: notFoundErr.Error()})
	default:
		logger.Error("Unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "internal server error"})
	}
}
