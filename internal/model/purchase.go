package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseStatus string

// Only PurchaseCompleted is produced today; the other two are reserved.
const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseCancelled PurchaseStatus = "cancelled"
)

// InvoicePrefix starts every invoice number
const InvoicePrefix = "FAC"

// Purchase is the immutable header of a completed cart
type Purchase struct {
	BaseModel
	InvoiceNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;check:total > 0" json:"total"`
	Status        PurchaseStatus  `gorm:"type:varchar(20);not null;default:completed;index" json:"status"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Items         []PurchaseItem  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items"`
}

// PurchaseItem is one cart line with a frozen copy of the product's name,
// lot code and unit price at purchase time.
type PurchaseItem struct {
	BaseModel
	PurchaseID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product     *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity    int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null;check:unit_price > 0" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	ProductName string          `gorm:"type:varchar(200);not null" json:"product_name"`
	LotCode     string          `gorm:"type:varchar(50);not null" json:"lot_code"`
}

// NewPurchaseItem snapshots the product and computes the subtotal.
func NewPurchaseItem(product *Product, quantity int) PurchaseItem {
	item := PurchaseItem{
		ProductID:   product.ID,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		ProductName: product.Name,
		LotCode:     product.LotCode,
	}
	item.Recompute()
	return item
}

// Recompute sets Subtotal = Quantity x UnitPrice
func (i *PurchaseItem) Recompute() {
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumSubtotals adds up the line subtotals of a cart
func SumSubtotals(items []PurchaseItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return total
}

// GenerateInvoiceNumber builds FAC-<unix millis>-<000..999>. rnd(n) must
// return a value in [0, n).
func GenerateInvoiceNumber(now time.Time, rnd func(n int) int) string {
	return fmt.Sprintf("%s-%d-%03d", InvoicePrefix, now.UnixMilli(), rnd(1000))
}

// ProductRef is the live product reference attached to an invoice line
type ProductRef struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	LotCode     string    `json:"lot_code"`
	Description string    `json:"description,omitempty"`
}

type PurchaseItemView struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	LotCode     string          `json:"lot_code"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Product     *ProductRef     `json:"product,omitempty"`
}

// PurchaseAggregate is the response shape of a purchase with its lines
type PurchaseAggregate struct {
	ID            uuid.UUID          `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	UserID        uuid.UUID          `json:"user_id"`
	CreatedAt     time.Time          `json:"created_at"`
	Total         decimal.Decimal    `json:"total"`
	Status        PurchaseStatus     `json:"status"`
	Notes         string             `json:"notes"`
	Items         []PurchaseItemView `json:"items"`
	User          *UserSummary       `json:"user,omitempty"`
}

// ToAggregate converts a Purchase loaded with its Items (and optionally the
// User and each item's Product) to PurchaseAggregate
func (p *Purchase) ToAggregate() PurchaseAggregate {
	agg := PurchaseAggregate{
		ID:            p.ID,
		InvoiceNumber: p.InvoiceNumber,
		UserID:        p.UserID,
		CreatedAt:     p.CreatedAt,
		Total:         p.Total,
		Status:        p.Status,
		Notes:         p.Notes,
		Items:         make([]PurchaseItemView, len(p.Items)),
	}
	for i, it := range p.Items {
		view := PurchaseItemView{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			LotCode:     it.LotCode,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		}
		if it.Product != nil {
			view.Product = &ProductRef{
				ID:          it.Product.ID,
				Name:        it.Product.Name,
				LotCode:     it.Product.LotCode,
				Description: it.Product.Description,
			}
		}
		agg.Items[i] = view
	}
	if p.User != nil {
		summary := p.User.ToSummary()
		agg.User = &summary
	}
	return agg
}
