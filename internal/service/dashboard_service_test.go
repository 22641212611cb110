package service

import (
	"context"
	"testing"
	"time"

	"go-inventory-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedPurchase writes a one-line purchase with a chosen timestamp and status
func (f *fixture) seedPurchase(t *testing.T, buyer *model.User, p *model.Product, qty int, at time.Time, status model.PurchaseStatus) {
	t.Helper()
	item := model.NewPurchaseItem(p, qty)
	purchase := &model.Purchase{
		InvoiceNumber: "FAC-" + uuid.NewString(),
		UserID:        buyer.ID,
		Total:         item.Subtotal,
		Status:        status,
	}
	purchase.CreatedAt = at
	require.NoError(t, f.purchases.Create(f.db, purchase))

	item.PurchaseID = purchase.ID
	item.CreatedAt = at
	require.NoError(t, f.purchases.CreateItem(f.db, &item))
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")
	p := f.product(t, "LOT-D1", "2.00", 20)
	f.product(t, "LOT-D2", "1.00", 3)

	_, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(p, 5)))
	require.NoError(t, err)

	stats, err := NewDashboardService(f.purchases).GetDashboardStats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 1, stats.LowStockCount)
	assert.True(t, stats.TotalValuation.Equal(dec("33")), "valuation %s", stats.TotalValuation)
	assert.EqualValues(t, 1, stats.TotalPurchases)
	assert.True(t, stats.TotalSales.Equal(dec("10")))
}

func TestSalesMovement_GroupsCompletedPurchasesByDay(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")
	p := f.product(t, "LOT-S1", "2.50", 100)

	now := time.Now()
	today := now.Add(-time.Minute)
	twoDaysAgo := now.Add(-48 * time.Hour)

	f.seedPurchase(t, buyer, p, 1, today, model.PurchaseCompleted)
	f.seedPurchase(t, buyer, p, 3, today, model.PurchaseCompleted)
	f.seedPurchase(t, buyer, p, 2, twoDaysAgo, model.PurchaseCompleted)
	// neither of these may show up
	f.seedPurchase(t, buyer, p, 9, today, model.PurchaseCancelled)
	f.seedPurchase(t, buyer, p, 4, now.AddDate(0, 0, -10), model.PurchaseCompleted)

	data, err := NewDashboardService(f.purchases).GetSalesMovement(7)
	require.NoError(t, err)
	require.Len(t, data, 2)

	// sqlite DATE() reports the UTC calendar day
	assert.Equal(t, twoDaysAgo.UTC().Format("2006-01-02"), data[0].Date)
	assert.EqualValues(t, 1, data[0].Purchases)
	assert.EqualValues(t, 2, data[0].Units)
	assert.True(t, data[0].Revenue.Equal(dec("5")), "revenue %s", data[0].Revenue)

	assert.Equal(t, today.UTC().Format("2006-01-02"), data[1].Date)
	assert.EqualValues(t, 2, data[1].Purchases)
	assert.EqualValues(t, 4, data[1].Units)
	assert.True(t, data[1].Revenue.Equal(dec("10")), "revenue %s", data[1].Revenue)
}

func TestSalesMovement_Empty(t *testing.T) {
	f := newFixture(t)
	data, err := NewDashboardService(f.purchases).GetSalesMovement(7)
	require.NoError(t, err)
	assert.Empty(t, data)
}
