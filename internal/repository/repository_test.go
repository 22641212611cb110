package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go-inventory-api/internal/model"
	"go-inventory-api/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.False(t, IsDuplicateKey(errors.New("connection reset")))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicateKey(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: purchases.invoice_number")))
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	err := translate(gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	plain := errors.New("boom")
	assert.Same(t, plain, translate(plain))
}

func TestPageQuery_Normalize(t *testing.T) {
	cases := []struct {
		in   PageQuery
		want PageQuery
	}{
		{PageQuery{}, PageQuery{Page: 1, Limit: DefaultPageSize}},
		{PageQuery{Page: -4, Limit: 500}, PageQuery{Page: 1, Limit: MaxPageSize}},
		{PageQuery{Page: 3, Limit: 20}, PageQuery{Page: 3, Limit: 20}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.in.Normalize())
	}
	assert.Equal(t, 40, PageQuery{Page: 3, Limit: 20}.Offset())
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "products.name ASC", orderClause(productSortColumns, "name", "ASC", "products.created_at"))
	assert.Equal(t, "products.created_at DESC", orderClause(productSortColumns, "name; DROP TABLE products", "asc", "products.created_at"))
	assert.Equal(t, "purchases.total DESC", orderClause(purchaseSortColumns, "total", "sideways", "purchases.created_at"))
	assert.Equal(t, "purchases.created_at DESC", orderClause(purchaseSortColumns, "", "asc", "purchases.created_at"))
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		LogLevel: gormlogger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestAdjustStock_NeverGoesNegative(t *testing.T) {
	db := openDB(t)
	repo := NewProductRepo(db)
	p := &model.Product{LotCode: "LOT-1", Name: "Cafe", Price: decimal.NewFromInt(3), AvailableQuantity: 2, IngestedAt: time.Now(), Status: model.ProductActive}
	require.NoError(t, repo.Create(p))

	n, err := repo.AdjustStock(db, p.ID, -3, "t")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.AdjustStock(db, p.ID, -2, "t")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.AdjustStock(db, uuid.New(), 1, "t")
	require.NoError(t, err)
	assert.Zero(t, n)

	stored, err := repo.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AvailableQuantity)
}

func TestProductCreate_DuplicateLotCode(t *testing.T) {
	db := openDB(t)
	repo := NewProductRepo(db)
	mk := func() *model.Product {
		return &model.Product{LotCode: "LOT-DUP", Name: "Cafe", Price: decimal.NewFromInt(1), IngestedAt: time.Now(), Status: model.ProductActive}
	}
	require.NoError(t, repo.Create(mk()))
	err := repo.Create(mk())
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestPurchaseRepo_FindByIDForUser(t *testing.T) {
	db := openDB(t)
	users := NewUserRepo(db)
	purchases := NewPurchaseRepo(db)

	owner := &model.User{Name: "Ana", Email: "ana@test.com", Password: "x", Role: model.RoleClient, IsActive: true}
	require.NoError(t, users.Create(owner))

	purchase := &model.Purchase{InvoiceNumber: "FAC-1-001", UserID: owner.ID, Total: decimal.NewFromInt(5), Status: model.PurchaseCompleted}
	require.NoError(t, purchases.Create(db, purchase))

	got, err := purchases.FindByIDForUser(purchase.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "ana@test.com", got.User.Email)

	_, err = purchases.FindByIDForUser(purchase.ID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	dup := &model.Purchase{InvoiceNumber: "FAC-1-001", UserID: owner.ID, Total: decimal.NewFromInt(5), Status: model.PurchaseCompleted}
	assert.True(t, IsDuplicateKey(purchases.Create(db, dup)))
}
