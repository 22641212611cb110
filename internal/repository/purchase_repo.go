package repository

import (
	"time"

	"go-inventory-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseRepository interface {
	Create(tx *gorm.DB, purchase *model.Purchase) error
	CreateItem(tx *gorm.DB, item *model.PurchaseItem) error
	FindByID(id uuid.UUID) (*model.Purchase, error)
	FindByIDForUser(id, userID uuid.UUID) (*model.Purchase, error)
	FindAndCount(q PurchaseQuery) ([]model.Purchase, int64, error)
	SumTotal(q PurchaseQuery) (decimal.Decimal, error)
	GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error)
	GetDashboardStats() (*DashboardStats, error)
}

// SalesMovementData untuk chart data
type SalesMovementData struct {
	Date      string          `json:"date"`
	Purchases int64           `json:"purchases"`
	Units     int64           `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
	TotalPurchases int64           `json:"total_purchases"`
	TotalSales     decimal.Decimal `json:"total_sales"`
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

// Create inserts only the header row; items go through CreateItem
func (r *purchaseRepo) Create(tx *gorm.DB, purchase *model.Purchase) error {
	return translate(tx.Omit(clause.Associations).Create(purchase).Error)
}

// CreateItem recomputes the subtotal before inserting so a stale value can
// never be written
func (r *purchaseRepo) CreateItem(tx *gorm.DB, item *model.PurchaseItem) error {
	item.Recompute()
	return translate(tx.Omit(clause.Associations).Create(item).Error)
}

func (r *purchaseRepo) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("purchase_items.created_at ASC") }).
		Preload("Items.Product").
		Preload("User")
}

func (r *purchaseRepo) FindByID(id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := r.withDetails(r.db).First(&purchase, "purchases.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// FindByIDForUser returns gorm.ErrRecordNotFound when the purchase belongs
// to someone else
func (r *purchaseRepo) FindByIDForUser(id, userID uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.withDetails(r.db).
		Where("purchases.id = ? AND purchases.user_id = ?", id, userID).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) filtered(q PurchaseQuery) *gorm.DB {
	query := r.db.Model(&model.Purchase{})
	if q.UserID != nil {
		query = query.Where("purchases.user_id = ?", *q.UserID)
	}
	if q.From != nil {
		query = query.Where("purchases.created_at >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("purchases.created_at <= ?", *q.To)
	}
	if q.Search != "" {
		pattern := likePattern(q.Search)
		query = query.
			Joins("JOIN users ON users.id = purchases.user_id").
			Where("LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?", pattern, pattern)
	}
	return query
}

func (r *purchaseRepo) FindAndCount(q PurchaseQuery) ([]model.Purchase, int64, error) {
	var purchases []model.Purchase
	var total int64

	if err := r.filtered(q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := q.Normalize()
	err := r.withDetails(r.filtered(q)).
		Order(orderClause(purchaseSortColumns, q.SortBy, q.Order, "purchases.created_at")).
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&purchases).Error
	return purchases, total, err
}

func (r *purchaseRepo) SumTotal(q PurchaseQuery) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.filtered(q).Select("COALESCE(SUM(purchases.total), 0)").Row().Scan(&sum)
	return sum, err
}

func (r *purchaseRepo) GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error) {
	var results []SalesMovementData

	// Query untuk aggregate purchases per hari
	rows, err := r.db.Model(&model.Purchase{}).
		Select(`
			DATE(purchases.created_at) as date,
			COUNT(DISTINCT purchases.id) as purchases,
			COALESCE(SUM(purchase_items.quantity), 0) as units,
			COALESCE(SUM(purchase_items.subtotal), 0) as revenue
		`).
		Joins("JOIN purchase_items ON purchase_items.purchase_id = purchases.id").
		Where("purchases.created_at BETWEEN ? AND ?", startDate, endDate).
		Where("purchases.status = ?", model.PurchaseCompleted).
		Group("DATE(purchases.created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesMovementData
		if err := rows.Scan(&data.Date, &data.Purchases, &data.Units, &data.Revenue); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *purchaseRepo) GetDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats
	active := r.db.Model(&model.Product{}).Where("status = ?", model.ProductActive)

	// Total Products
	if err := active.Session(&gorm.Session{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	// Low Stock Count (stock < 10)
	if err := active.Session(&gorm.Session{}).
		Where("available_quantity < ?", model.LowStockThreshold).
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	// Total Valuation (SUM of stock * price)
	if err := active.Session(&gorm.Session{}).
		Select("COALESCE(SUM(available_quantity * price), 0)").
		Row().Scan(&stats.TotalValuation); err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.Purchase{}).Count(&stats.TotalPurchases).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Purchase{}).
		Select("COALESCE(SUM(total), 0)").
		Row().Scan(&stats.TotalSales); err != nil {
		return nil, err
	}

	return &stats, nil
}
