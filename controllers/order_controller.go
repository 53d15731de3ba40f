package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Bishal-code0731/ecom/models"
	"github.com/Bishal-code0731/ecom/repository"
	"github.com/Bishal-code0731/ecom/services"
)

type OrderController struct {
	orderService *services.OrderService
	logger       *zap.Logger
}

func NewOrderController(orderService *services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{orderService: orderService, logger: logger}
}

// updateStatusRequest is the customer-facing body. Shipment states are
// not in the customer vocabulary; those moves belong to admins.
type updateStatusRequest struct {
	Status        *string `json:"status" binding:"omitempty,oneof=pending processing completed cancelled"`
	PaymentStatus *string `json:"payment_status" binding:"omitempty,oneof=pending paid failed refunded"`
}

// adminUpdateRequest is the admin vocabulary, which also covers shipment
// states and the order notes.
type adminUpdateRequest struct {
	Status        *string `json:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	PaymentStatus *string `json:"payment_status" binding:"omitempty,oneof=pending paid failed refunded"`
	Notes         *string `json:"notes"`
}

func actorFromContext(c *gin.Context) services.Actor {
	userID, _ := c.Get("user_id")
	id, _ := userID.(uuid.UUID)
	return services.Actor{UserID: id, Role: c.GetString("role")}
}

func (oc *OrderController) Index(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	actor := actorFromContext(c)

	result, err := oc.orderService.GetOrders(c.Request.Context(), actor.UserID, c.Query("status"), page, limit)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, result)
}

func (oc *OrderController) AdminIndex(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filters := repository.OrderFilters{Status: c.Query("status")}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			respondBadRequest(c, "invalid user_id filter")
			return
		}
		filters.UserID = &userID
	}

	result, err := oc.orderService.GetAllOrders(c.Request.Context(), actorFromContext(c), filters, page, limit)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, result)
}

func (oc *OrderController) Show(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid order id")
		return
	}

	order, err := oc.orderService.GetOrderByID(c.Request.Context(), actorFromContext(c), orderID)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, order)
}

func (oc *OrderController) Store(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	order, err := oc.orderService.CreateOrder(c.Request.Context(), actorFromContext(c).UserID, &req)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondCreated(c, order)
}

func (oc *OrderController) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid order id")
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Status == nil && req.PaymentStatus == nil {
		respondBadRequest(c, "nothing to update")
		return
	}

	var update services.StatusUpdate
	if req.Status != nil {
		status := models.OrderStatus(*req.Status)
		update.Status = &status
	}
	if req.PaymentStatus != nil {
		paymentStatus := models.PaymentStatus(*req.PaymentStatus)
		update.PaymentStatus = &paymentStatus
	}

	order, err := oc.orderService.UpdateStatus(c.Request.Context(), actorFromContext(c), orderID, update)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, order)
}

func (oc *OrderController) AdminUpdate(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid order id")
		return
	}

	var req adminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Status == nil && req.PaymentStatus == nil && req.Notes == nil {
		respondBadRequest(c, "nothing to update")
		return
	}

	update := services.StatusUpdate{Notes: req.Notes}
	if req.Status != nil {
		status := models.OrderStatus(*req.Status)
		update.Status = &status
	}
	if req.PaymentStatus != nil {
		paymentStatus := models.PaymentStatus(*req.PaymentStatus)
		update.PaymentStatus = &paymentStatus
	}

	order, err := oc.orderService.UpdateStatus(c.Request.Context(), actorFromContext(c), orderID, update)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, order)
}
