package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreatePurchase_DecrementsStockAndTotals(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")
	p := f.product(t, "LOT-100", "100.00", 5)

	agg, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(p, 3)))
	require.NoError(t, err)

	assert.True(t, agg.Total.Equal(dec("300.00")), "total %s", agg.Total)
	assert.Equal(t, model.PurchaseCompleted, agg.Status)
	assert.Equal(t, buyer.ID, agg.UserID)
	assert.True(t, strings.HasPrefix(agg.InvoiceNumber, "FAC-"), agg.InvoiceNumber)
	require.Len(t, agg.Items, 1)
	assert.Equal(t, p.ID, agg.Items[0].ProductID)
	assert.Equal(t, "LOT-100", agg.Items[0].LotCode)
	assert.Equal(t, p.Name, agg.Items[0].ProductName)
	assert.Equal(t, 3, agg.Items[0].Quantity)
	assert.True(t, agg.Items[0].UnitPrice.Equal(dec("100")))
	assert.True(t, agg.Items[0].Subtotal.Equal(dec("300")))
	require.NotNil(t, agg.User)
	assert.Equal(t, "ana@test.com", agg.User.Email)

	assert.Equal(t, 2, f.stock(t, p.ID))
}

func TestCreatePurchase_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")
	p := f.product(t, "LOT-200", "10.00", 2)

	_, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(p, 5)))

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, p.ID, stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, CodeInsufficientStock, ErrorCode(err))

	assert.Equal(t, 2, f.stock(t, p.ID))
	purchases, items := f.counts(t)
	assert.Zero(t, purchases)
	assert.Zero(t, items)
}

// Both lines pass the up-front check against the loaded stock; the second
// decrement is what fails, and the whole transaction rolls back.
func TestCreatePurchase_SameProductTwiceExceedingStock(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")
	p := f.product(t, "LOT-300", "10.00", 5)

	_, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(p, 3), line(p, 3)))

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 5, f.stock(t, p.ID))
	purchases, items := f.counts(t)
	assert.Zero(t, purchases)
	assert.Zero(t, items)
}

// sqlite runs with a single pooled connection, so these concurrent buyers
// queue whole transactions one after another. They check the end state, not
// an interleaving between read and write; the guarded UPDATE for that case
// is covered by TestStockLedger_DecrementGuardsStaleRead.
func TestCreatePurchase_ConcurrentBuyersNeverOversell(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "LOT-400", "5.00", 5)
	buyers := []*model.User{
		f.user(t, "Ana", "ana@test.com"),
		f.user(t, "Luis", "luis@test.com"),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(buyers))
	for i, b := range buyers {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.svc.CreatePurchase(context.Background(), id, cart(line(p, 3)))
		}(i, b.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *InsufficientStockError
		assert.ErrorAs(t, err, &stockErr)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, f.stock(t, p.ID))
}

func TestCreatePurchase_ManyConcurrentBuyersSumNeverExceedsStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "LOT-401", "1.00", 7)
	buyer := f.user(t, "Ana", "ana@test.com")

	const attempts = 12
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sold int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			if _, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(p, qty))); err == nil {
				mu.Lock()
				sold += qty
				mu.Unlock()
			}
		}(1 + i%2)
	}
	wg.Wait()

	assert.LessOrEqual(t, sold, 7)
	assert.Equal(t, 7-sold, f.stock(t, p.ID))
}

func TestCreatePurchase_EmptyCart(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")

	for _, req := range []*CreatePurchaseRequest{nil, {}, {Items: []CartItem{}}} {
		_, err := f.svc.CreatePurchase(context.Background(), buyer.ID, req)
		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.Equal(t, CodeEmptyCart, ErrorCode(err))
	}

	purchases, items := f.counts(t)
	assert.Zero(t, purchases)
	assert.Zero(t, items)
}

func TestCreatePurchase_MissingProductRollsBackEarlierLines(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")
	p := f.product(t, "LOT-500", "10.00", 5)
	missing := uuid.New()

	_, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(
		line(p, 2),
		CartItem{ProductID: missing, Quantity: 1},
	))

	var nf *ProductNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, missing, nf.ProductID)
	assert.Equal(t, 5, f.stock(t, p.ID))
	purchases, items := f.counts(t)
	assert.Zero(t, purchases)
	assert.Zero(t, items)
}

func TestCreatePurchase_RetiredProduct(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")
	p := f.product(t, "LOT-600", "10.00", 5)
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("status", model.ProductRetired).Error)

	_, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(p, 1)))

	var inactive *ProductInactiveError
	require.ErrorAs(t, err, &inactive)
	assert.Equal(t, p.ID, inactive.ProductID)
	assert.Equal(t, CodeProductInactive, ErrorCode(err))
	assert.Equal(t, 5, f.stock(t, p.ID))
}

func TestCreatePurchase_NonPositiveQuantity(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")
	p := f.product(t, "LOT-700", "10.00", 5)

	for _, qty := range []int{0, -2} {
		_, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(p, qty)))
		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, qty, stockErr.Requested)
	}
	assert.Equal(t, 5, f.stock(t, p.ID))
}

func TestCreatePurchase_NilProductIDIsValidationError(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")

	_, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(CartItem{Quantity: 1}))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "uuid_required", vErr.Tag)
}

func TestCreatePurchase_ExactDecimalTotals(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")
	a := f.product(t, "LOT-800", "19.99", 10)
	b := f.product(t, "LOT-801", "0.10", 10)

	agg, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(a, 3), line(b, 7)))
	require.NoError(t, err)

	assert.True(t, agg.Total.Equal(dec("60.67")), "total %s", agg.Total)
	sum := dec("0")
	for _, it := range agg.Items {
		expected := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		assert.True(t, it.Subtotal.Equal(expected), "subtotal %s != %s", it.Subtotal, expected)
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, agg.Total.Equal(sum))
}

func TestCreatePurchase_SnapshotSurvivesProductEdits(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")
	p := f.product(t, "LOT-900", "50.00", 5)

	agg, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(p, 1)))
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":  "Renamed",
		"price": "75.00",
	}).Error)

	invoice, err := f.svc.GetInvoice(agg.ID, buyer.ID)
	require.NoError(t, err)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "Product LOT-900", invoice.Items[0].ProductName)
	assert.True(t, invoice.Items[0].UnitPrice.Equal(dec("50")))
	assert.True(t, invoice.Total.Equal(dec("50")))
	require.NotNil(t, invoice.Items[0].Product)
	assert.Equal(t, "Renamed", invoice.Items[0].Product.Name)
}

func sequence(values ...string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		v := values[i%len(values)]
		i++
		return v
	}
}

func TestCreatePurchase_RegeneratesCollidingInvoice(t *testing.T) {
	f := newFixture(t, WithInvoiceGenerator(sequence("FAC-1-001", "FAC-1-001", "FAC-1-002")))
	buyer := f.user(t, "Ana", "ana@test.com")
	p := f.product(t, "LOT-010", "10.00", 10)

	first, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(p, 1)))
	require.NoError(t, err)
	assert.Equal(t, "FAC-1-001", first.InvoiceNumber)

	second, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(p, 2)))
	require.NoError(t, err)
	assert.Equal(t, "FAC-1-002", second.InvoiceNumber)

	assert.Equal(t, 7, f.stock(t, p.ID))
	purchases, items := f.counts(t)
	assert.EqualValues(t, 2, purchases)
	assert.EqualValues(t, 2, items)
}

func TestCreatePurchase_InvoiceRetriesExhausted(t *testing.T) {
	f := newFixture(t, WithInvoiceGenerator(func() string { return "FAC-DUP" }))
	buyer := f.user(t, "Ana", "ana@test.com")
	p := f.product(t, "LOT-011", "10.00", 10)

	_, err := f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(p, 1)))
	require.NoError(t, err)

	_, err = f.svc.CreatePurchase(context.Background(), buyer.ID, cart(line(p, 4)))
	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.ErrorIs(t, err, ErrDuplicateInvoice)
	assert.Equal(t, CodePersistence, ErrorCode(err))

	assert.Equal(t, 9, f.stock(t, p.ID))
	purchases, _ := f.counts(t)
	assert.EqualValues(t, 1, purchases)
}

// failingLedger passes through to the real ledger until failAt decrements
// have happened
type failingLedger struct {
	StockLedger
	calls  int
	failAt int
}

func (l *failingLedger) Decrement(tx *gorm.DB, p *model.Product, qty int, actor string) error {
	l.calls++
	if l.calls == l.failAt {
		return errors.New("disk on fire")
	}
	return l.StockLedger.Decrement(tx, p, qty, actor)
}

func TestCreatePurchase_FailureAfterFirstDecrementRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")
	a := f.product(t, "LOT-020", "10.00", 5)
	b := f.product(t, "LOT-021", "20.00", 5)

	ledger := &failingLedger{StockLedger: f.ledger, failAt: 2}
	svc := NewPurchaseService(f.products, f.purchases, ledger, f.db, nil)

	_, err := svc.CreatePurchase(context.Background(), buyer.ID, cart(line(a, 2), line(b, 1)))
	require.Error(t, err)
	assert.Equal(t, CodePersistence, ErrorCode(err))

	assert.Equal(t, 5, f.stock(t, a.ID))
	assert.Equal(t, 5, f.stock(t, b.ID))
	purchases, items := f.counts(t)
	assert.Zero(t, purchases)
	assert.Zero(t, items)
}

func TestCreatePurchase_CancelledContext(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "Ana", "ana@test.com")
	p := f.product(t, "LOT-030", "10.00", 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.CreatePurchase(ctx, buyer.ID, cart(line(p, 1)))
	require.Error(t, err)
	assert.Equal(t, 5, f.stock(t, p.ID))
}

func TestGetInvoice_OnlyOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Ana", "ana@test.com")
	other := f.user(t, "Luis", "luis@test.com")
	p := f.product(t, "LOT-040", "10.00", 5)

	agg, err := f.svc.CreatePurchase(context.Background(), owner.ID, cart(line(p, 1)))
	require.NoError(t, err)

	_, err = f.svc.GetInvoice(agg.ID, other.ID)
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
	assert.Equal(t, CodeNotFound, ErrorCode(err))

	got, err := f.svc.GetInvoice(agg.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, agg.InvoiceNumber, got.InvoiceNumber)
}

func TestGetMyPurchases_PaginatesOwnPurchasesOnly(t *testing.T) {
	f := newFixture(t)
	ana := f.user(t, "Ana", "ana@test.com")
	luis := f.user(t, "Luis", "luis@test.com")
	p := f.product(t, "LOT-050", "10.00", 50)

	for i := 0; i < 3; i++ {
		_, err := f.svc.CreatePurchase(context.Background(), ana.ID, cart(line(p, 1)))
		require.NoError(t, err)
	}
	_, err := f.svc.CreatePurchase(context.Background(), luis.ID, cart(line(p, 1)))
	require.NoError(t, err)

	list, err := f.svc.GetMyPurchases(ana.ID, repository.PurchaseQuery{PageQuery: repository.PageQuery{Page: 1, Limit: 2}})
	require.NoError(t, err)

	assert.Len(t, list.Purchases, 2)
	assert.EqualValues(t, 3, list.Pagination.TotalItems)
	assert.Equal(t, 2, list.Pagination.TotalPages)
	assert.True(t, list.Pagination.HasNext)
	assert.False(t, list.Pagination.HasPrev)
	assert.Nil(t, list.Statistics)
	for _, pur := range list.Purchases {
		assert.Equal(t, ana.ID, pur.UserID)
	}
}

func TestGetAllPurchases_SearchAndStatistics(t *testing.T) {
	f := newFixture(t)
	ana := f.user(t, "Ana Perez", "ana@test.com")
	luis := f.user(t, "Luis Gomez", "luis@test.com")
	p := f.product(t, "LOT-060", "12.50", 50)

	_, err := f.svc.CreatePurchase(context.Background(), ana.ID, cart(line(p, 2)))
	require.NoError(t, err)
	_, err = f.svc.CreatePurchase(context.Background(), luis.ID, cart(line(p, 1)))
	require.NoError(t, err)

	all, err := f.svc.GetAllPurchases(repository.PurchaseQuery{})
	require.NoError(t, err)
	require.NotNil(t, all.Statistics)
	assert.EqualValues(t, 2, all.Statistics.TotalPurchases)
	assert.True(t, all.Statistics.TotalSales.Equal(dec("37.50")), "sales %s", all.Statistics.TotalSales)

	found, err := f.svc.GetAllPurchases(repository.PurchaseQuery{Search: "gomez"})
	require.NoError(t, err)
	require.Len(t, found.Purchases, 1)
	assert.Equal(t, luis.ID, found.Purchases[0].UserID)
	assert.True(t, found.Statistics.TotalSales.Equal(dec("12.50")))
}
