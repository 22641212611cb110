package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus replaces a boolean "active" flag so every eligibility gate
// has to name the state it accepts.
type ProductStatus string

const (
	ProductActive  ProductStatus = "active"
	ProductRetired ProductStatus = "retired"
)

// LowStockThreshold is used by the dashboard low-stock counter
const LowStockThreshold = 10

type Product struct {
	BaseModel
	LotCode           string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"lot_code" validate:"required,min=1,max=50"`
	Name              string          `gorm:"type:varchar(200);not null;index" json:"name" validate:"required,min=2,max=200"`
	Price             decimal.Decimal `gorm:"type:decimal(10,2);not null;check:price > 0" json:"price" validate:"decimal_gt0"`
	AvailableQuantity int             `gorm:"not null;default:0;check:available_quantity >= 0" json:"available_quantity" validate:"gte=0"`
	IngestedAt        time.Time       `gorm:"not null" json:"ingested_at"`
	Description       string          `gorm:"type:text" json:"description" validate:"max=1000"`
	Status            ProductStatus   `gorm:"type:varchar(20);not null;default:active;index" json:"status" validate:"omitempty,oneof=active retired"`
}

// IsPurchasable reports whether the product may appear on a new purchase.
// Stock is checked separately by the StockLedger.
func (p *Product) IsPurchasable() bool {
	return p.Status == ProductActive
}

// ProductSummary is the reduced view clients see in the catalog and in
// purchase line items
type ProductSummary struct {
	ID                string          `json:"id"`
	LotCode           string          `json:"lot_code"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
	Description       string          `json:"description,omitempty"`
}

// ToSummary converts Product to ProductSummary
func (p *Product) ToSummary() ProductSummary {
	return ProductSummary{
		ID:                p.ID.String(),
		LotCode:           p.LotCode,
		Name:              p.Name,
		Price:             p.Price,
		AvailableQuantity: p.AvailableQuantity,
		Description:       p.Description,
	}
}
