package service

import (
	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"

	"gorm.io/gorm"
)

// StockLedger guards available_quantity for a single product row. Every
// mutating call runs inside the caller's transaction.
type StockLedger interface {
	HasStock(product *model.Product, quantity int) bool
	Decrement(tx *gorm.DB, product *model.Product, quantity int, actor string) error
	Increment(tx *gorm.DB, product *model.Product, quantity int, actor string) error
}

type stockLedger struct {
	productRepo repository.ProductRepository
}

func NewStockLedger(productRepo repository.ProductRepository) StockLedger {
	return &stockLedger{productRepo: productRepo}
}

func (l *stockLedger) HasStock(product *model.Product, quantity int) bool {
	return quantity > 0 && product.AvailableQuantity >= quantity
}

// Decrement subtracts quantity with a guarded UPDATE so a concurrent writer
// can't drive the row negative even without a row lock. product is kept in
// sync with the stored value.
func (l *stockLedger) Decrement(tx *gorm.DB, product *model.Product, quantity int, actor string) error {
	if !l.HasStock(product, quantity) {
		return insufficient(product, quantity)
	}

	affected, err := l.productRepo.AdjustStock(tx, product.ID, -quantity, actor)
	if err != nil {
		return persistence("decrement stock", err)
	}
	if affected == 0 {
		// the stored row moved under us; report what is really there
		if current, err := l.productRepo.FindForUpdate(tx, product.ID); err == nil {
			product.AvailableQuantity = current.AvailableQuantity
		}
		return insufficient(product, quantity)
	}

	product.AvailableQuantity -= quantity
	return nil
}

// Increment returns units to stock (returns, cancellations, restocking)
func (l *stockLedger) Increment(tx *gorm.DB, product *model.Product, quantity int, actor string) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Tag: "gt", Message: "quantity must be greater than 0"}
	}
	if !product.IsPurchasable() {
		return &ProductInactiveError{ProductID: product.ID}
	}

	affected, err := l.productRepo.AdjustStock(tx, product.ID, quantity, actor)
	if err != nil {
		return persistence("increment stock", err)
	}
	if affected == 0 {
		return &ProductNotFoundError{ProductID: product.ID}
	}

	product.AvailableQuantity += quantity
	return nil
}

func insufficient(product *model.Product, quantity int) error {
	return &InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Available:   product.AvailableQuantity,
		Requested:   quantity,
	}
}
