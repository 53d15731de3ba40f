package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string           `gorm:"not null" json:"name"`
	Description   string           `gorm:"type:text" json:"description"`
	SKU           string           `gorm:"uniqueIndex;not null" json:"sku"`
	Price         decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"price"`
	SalePrice     *decimal.Decimal `gorm:"type:numeric(10,2)" json:"sale_price,omitempty"`
	StockQuantity int              `gorm:"not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"`
	Image         string           `json:"image,omitempty"`
	IsActive      bool             `gorm:"default:true" json:"is_active"`
	IsFeatured    bool             `gorm:"default:false" json:"is_featured"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"-"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

// EffectivePrice is the unit price a buyer pays right now: the sale price
// when one is set and lower than the list price, the list price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.LessThan(p.Price) {
		return *p.SalePrice
	}
	return p.Price
}

func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}
