package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Address is the structured shipping/billing snapshot stored on an order.
// It is persisted as jsonb and never mutated after the order is created.
type Address struct {
	FirstName            string `json:"first_name" binding:"required,notblank"`
	LastName             string `json:"last_name" binding:"required,notblank"`
	Email                string `json:"email" binding:"required,email"`
	ContactNumber        string `json:"contact_number" binding:"required,notblank,max=20"`
	Address              string `json:"address" binding:"required,notblank"`
	District             string `json:"district" binding:"required,notblank"`
	Landmark             string `json:"landmark,omitempty"`
	DeliveryInstructions string `json:"delivery_instructions,omitempty"`
}

func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = Address{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	Tax             decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"tax"`
	Shipping        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"shipping"`
	Total           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	ShippingAddress Address         `gorm:"type:jsonb" json:"shipping_address"`
	BillingAddress  Address         `gorm:"type:jsonb" json:"billing_address"`
	PaymentMethod   string          `gorm:"type:varchar(50)" json:"payment_method"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"-"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is an immutable purchased line. Price is the unit price captured
// at order-creation time; later catalog price changes never affect it.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Total     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`
}

// RecalculateTotals rederives subtotal and total from the materialized items.
// Totals are never trusted from input.
func (o *Order) RecalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Total)
	}
	o.Subtotal = subtotal.Round(2)
	o.Total = o.Subtotal.Add(o.Tax).Add(o.Shipping).Round(2)
}
