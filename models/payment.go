package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is the audit record for a Stripe PaymentIntent raised against an order.
type Payment struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID            uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	UserID             uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Amount             int64     `gorm:"not null" json:"amount"` // smallest currency unit
	Currency           string    `gorm:"type:varchar(10);not null" json:"currency"`
	Status             string    `gorm:"type:varchar(20);not null" json:"status"`
	StripePaymentID    *string   `gorm:"uniqueIndex" json:"stripe_payment_id,omitempty"`
	StripeEventPayload *string   `gorm:"type:jsonb" json:"-"`
	SucceededAt        *time.Time `json:"succeeded_at,omitempty"`
	FailedAt           *time.Time `json:"failed_at,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"-"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}
