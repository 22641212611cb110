package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory sqlite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := database.Open(database.Options{Driver: "sqlite", DSN: dsn, LogLevel: gormlogger.Silent})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db        *gorm.DB
	products  repository.ProductRepository
	purchases repository.PurchaseRepository
	users     repository.UserRepository
	ledger    StockLedger
	svc       PurchaseService
}

func newFixture(t *testing.T, opts ...PurchaseOption) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:        db,
		products:  repository.NewProductRepo(db),
		purchases: repository.NewPurchaseRepo(db),
		users:     repository.NewUserRepo(db),
	}
	f.ledger = NewStockLedger(f.products)
	f.svc = NewPurchaseService(f.products, f.purchases, f.ledger, db, nil, opts...)
	return f
}

// user inserts an account without hashing a real password
func (f *fixture) user(t *testing.T, name, email string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: email, Password: "x", Role: model.RoleClient, IsActive: true}
	require.NoError(t, f.users.Create(u))
	return u
}

func (f *fixture) product(t *testing.T, lot, price string, qty int) *model.Product {
	t.Helper()
	p := &model.Product{
		LotCode:           lot,
		Name:              "Product " + lot,
		Price:             decimal.RequireFromString(price),
		AvailableQuantity: qty,
		IngestedAt:        time.Now(),
		Status:            model.ProductActive,
	}
	require.NoError(t, f.products.Create(p))
	return p
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.products.FindByID(id)
	require.NoError(t, err)
	return p.AvailableQuantity
}

// counts returns the number of purchase and purchase item rows
func (f *fixture) counts(t *testing.T) (int64, int64) {
	t.Helper()
	var purchases, items int64
	require.NoError(t, f.db.Model(&model.Purchase{}).Count(&purchases).Error)
	require.NoError(t, f.db.Model(&model.PurchaseItem{}).Count(&items).Error)
	return purchases, items
}

func cart(lines ...CartItem) *CreatePurchaseRequest {
	return &CreatePurchaseRequest{Items: lines}
}

func line(p *model.Product, qty int) CartItem {
	return CartItem{ProductID: p.ID, Quantity: qty}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
