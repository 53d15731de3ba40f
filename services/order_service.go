package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Bishal-code0731/ecom/events"
	"github.com/Bishal-code0731/ecom/models"
	"github.com/Bishal-code0731/ecom/repository"
)

// Actor identifies the authenticated caller for authorization checks.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

type CreateOrderItem struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Items           []CreateOrderItem `json:"items" binding:"required,min=1,dive"`
	ShippingAddress models.Address    `json:"shipping_address" binding:"required"`
	BillingAddress  *models.Address   `json:"billing_address"`
	PaymentMethod   string            `json:"payment_method" binding:"required"`
	Notes           string            `json:"notes"`
}

// StatusUpdate carries the optional field changes for a status update.
// Nil fields are left untouched.
type StatusUpdate struct {
	Status        *models.OrderStatus
	PaymentStatus *models.PaymentStatus
	Notes         *string
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

type OrderService struct {
	store       repository.Store
	publisher   *events.Publisher
	logger      *zap.Logger
	taxRate     decimal.Decimal
	shippingFee decimal.Decimal
}

func NewOrderService(store repository.Store, publisher *events.Publisher, taxRate, shippingFee decimal.Decimal, logger *zap.Logger) *OrderService {
	return &OrderService{
		store:       store,
		publisher:   publisher,
		logger:      logger,
		taxRate:     taxRate,
		shippingFee: shippingFee,
	}
}

// CreateOrder runs the full checkout workflow inside one transaction:
// validate the cart, lock and decrement stock per product, snapshot
// effective prices into items and derive the totals. Any failure rolls
// everything back; no partial order or stock decrement is ever visible.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, &ValidationError{Message: "at least one item is required"}
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, &ValidationError{Message: fmt.Sprintf("quantity must be at least 1 for product %s", item.ProductID)}
		}
	}

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}

	order := &models.Order{
		OrderNumber:     generateOrderNumber(),
		UserID:          userID,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	}

	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		items := make([]models.OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			product, err := tx.Products().FindByIDForUpdate(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Resource: "product", ID: line.ProductID.String()}
				}
				return err
			}
			if !product.IsActive {
				return &ValidationError{Message: fmt.Sprintf("product %q is not available", product.Name)}
			}
			if product.StockQuantity < line.Quantity {
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.StockQuantity,
					Requested:   line.Quantity,
				}
			}
			if err := tx.Products().DecrementStock(ctx, product.ID, line.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return &InsufficientStockError{
						ProductID:   product.ID,
						ProductName: product.Name,
						Available:   product.StockQuantity,
						Requested:   line.Quantity,
					}
				}
				return err
			}

			unitPrice := product.EffectivePrice()
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     unitPrice,
				Total:     LineTotal(unitPrice, line.Quantity),
			})
		}

		order.Items = items
		order.Tax = TaxOn(Subtotal(items), s.taxRate)
		order.Shipping = s.shippingFee
		order.RecalculateTotals()

		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.String("total", order.Total.StringFixed(2)),
	)
	s.publisher.Publish(ctx, events.Event{
		Type:        events.TypeOrderCreated,
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		UserID:      userID.String(),
		Amount:      order.Total.StringFixed(2),
	})

	return order, nil
}

// GetOrders returns the caller's own orders, newest first.
func (s *OrderService) GetOrders(ctx context.Context, userID uuid.UUID, status string, page, limit int) (*OrderListResponse, error) {
	orders, total, err := s.store.Orders().FindByUserID(ctx, userID, status, page, limit)
	if err != nil {
		return nil, err
	}
	return &OrderListResponse{
		Orders: orders,
		Meta:   buildMeta(page, limit, total),
	}, nil
}

// GetAllOrders returns orders across all users. Admin only.
func (s *OrderService) GetAllOrders(ctx context.Context, actor Actor, filters repository.OrderFilters, page, limit int) (*OrderListResponse, error) {
	if !actor.IsAdmin() {
		return nil, &UnauthorizedError{Message: "admin access required"}
	}
	orders, total, err := s.store.Orders().FindAll(ctx, filters, page, limit)
	if err != nil {
		return nil, err
	}
	return &OrderListResponse{
		Orders: orders,
		Meta:   buildMeta(page, limit, total),
	}, nil
}

// GetOrderByID returns an order if the caller owns it or is an admin.
func (s *OrderService) GetOrderByID(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: orderID.String()}
		}
		return nil, err
	}
	if order.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, &UnauthorizedError{Message: "you do not have access to this order"}
	}
	return order, nil
}

// UpdateStatus applies a status and/or payment-status change, consulting the
// transition table. Cancelling an order restores the decremented stock of
// every item in the same transaction; the table guarantees that can happen
// at most once.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, update StatusUpdate) (*models.Order, error) {
	if update.Status != nil && !update.Status.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown order status %q", *update.Status)}
	}
	if update.PaymentStatus != nil && !update.PaymentStatus.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown payment status %q", *update.PaymentStatus)}
	}

	var updated *models.Order
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order", ID: orderID.String()}
			}
			return err
		}
		if order.UserID != actor.UserID && !actor.IsAdmin() {
			return &UnauthorizedError{Message: "you do not have access to this order"}
		}

		if update.Status != nil && *update.Status != order.Status {
			if !order.Status.CanTransitionTo(*update.Status) {
				return &TransitionError{Field: "status", From: order.Status.String(), To: update.Status.String()}
			}
			if *update.Status == models.OrderStatusCancelled {
				if err := restoreStock(ctx, tx, order); err != nil {
					return err
				}
			}
			order.Status = *update.Status
		}
		if update.PaymentStatus != nil && *update.PaymentStatus != order.PaymentStatus {
			if !order.PaymentStatus.CanTransitionTo(*update.PaymentStatus) {
				return &TransitionError{Field: "payment_status", From: order.PaymentStatus.String(), To: update.PaymentStatus.String()}
			}
			order.PaymentStatus = *update.PaymentStatus
		}
		if update.Notes != nil {
			order.Notes = *update.Notes
		}

		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", updated.ID.String()),
		zap.String("status", updated.Status.String()),
		zap.String("payment_status", updated.PaymentStatus.String()),
	)
	return updated, nil
}

// restoreStock is the compensating action for cancellation: every item's
// quantity goes back onto its product row.
func restoreStock(ctx context.Context, tx repository.Store, order *models.Order) error {
	for _, item := range order.Items {
		if err := tx.Products().IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// generateOrderNumber builds a collision-resistant human-readable number,
// e.g. ORD-1756600000-9F3A21BC.
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%d-%s", time.Now().Unix(), suffix)
}

func buildMeta(page, limit int, total int64) MetaData {
	return MetaData{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  calculateTotalPages(total, limit),
		HasMore:     total > int64(page*limit),
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
