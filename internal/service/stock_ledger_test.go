package service

import (
	"testing"

	"go-inventory-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStockLedger_HasStock(t *testing.T) {
	ledger := NewStockLedger(nil)
	p := &model.Product{AvailableQuantity: 5}

	cases := []struct {
		name string
		qty  int
		want bool
	}{
		{"below", 3, true},
		{"exact", 5, true},
		{"above", 6, false},
		{"zero", 0, false},
		{"negative", -1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ledger.HasStock(p, tc.qty))
		})
	}
}

func TestStockLedger_DecrementGuardsStaleRead(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "LOT-L1", "10.00", 5)

	// stock moved after p was read
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("available_quantity", 1).Error)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.ledger.Decrement(tx, p, 3, "tester")
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 1, f.stock(t, p.ID))
}

func TestStockLedger_DecrementKeepsProductInSync(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "LOT-L2", "10.00", 5)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := f.ledger.Decrement(tx, p, 2, "tester"); err != nil {
			return err
		}
		return f.ledger.Decrement(tx, p, 3, "tester")
	})
	require.NoError(t, err)

	assert.Equal(t, 0, p.AvailableQuantity)
	assert.Equal(t, 0, f.stock(t, p.ID))

	stored, err := f.products.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "tester", stored.UpdatedBy)
}

func TestStockLedger_Increment(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "LOT-L3", "10.00", 1)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.ledger.Increment(tx, p, 4, "tester")
	})
	require.NoError(t, err)
	assert.Equal(t, 5, p.AvailableQuantity)
	assert.Equal(t, 5, f.stock(t, p.ID))
}

func TestStockLedger_IncrementRejects(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "LOT-L4", "10.00", 1)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.ledger.Increment(tx, p, 0, "tester")
	})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	p.Status = model.ProductRetired
	err = f.db.Transaction(func(tx *gorm.DB) error {
		return f.ledger.Increment(tx, p, 2, "tester")
	})
	var inactive *ProductInactiveError
	assert.ErrorAs(t, err, &inactive)

	assert.Equal(t, 1, f.stock(t, p.ID))
}
