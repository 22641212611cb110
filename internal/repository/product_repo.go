package repository

import (
	"go-inventory-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByLotCode(lotCode string) (*model.Product, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	Update(tx *gorm.DB, product *model.Product) error
	AdjustStock(tx *gorm.DB, id uuid.UUID, delta int, updatedBy string) (int64, error)
	IsReferenced(tx *gorm.DB, id uuid.UUID) (bool, error)
	FindAndCount(q ProductQuery) ([]model.Product, int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return translate(r.db.Create(product).Error)
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByLotCode(lotCode string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "lot_code = ?", lotCode).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindForUpdate reads the row with SELECT ... FOR UPDATE inside tx.
// Drivers without row locks (sqlite) ignore the locking clause.
func (r *productRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update menerima *gorm.DB (tx) agar bisa berjalan dalam transaksi
func (r *productRepo) Update(tx *gorm.DB, product *model.Product) error {
	return translate(tx.Save(product).Error)
}

// AdjustStock adds delta to available_quantity only if the result stays
// non-negative. Zero rows affected means the guard rejected the change (or
// the id does not exist).
func (r *productRepo) AdjustStock(tx *gorm.DB, id uuid.UUID, delta int, updatedBy string) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND available_quantity + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity + ?", delta),
			"updated_by":         updatedBy,
		})
	return res.RowsAffected, res.Error
}

// IsReferenced reports whether any purchase item points at the product
func (r *productRepo) IsReferenced(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&model.PurchaseItem{}).Where("product_id = ?", id).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *productRepo) FindAndCount(q ProductQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	page := q.Normalize()
	query := r.db.Model(&model.Product{})
	if q.Search != "" {
		pattern := likePattern(q.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(lot_code) LIKE ?", pattern, pattern)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.InStockOnly {
		query = query.Where("available_quantity > 0")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order(orderClause(productSortColumns, q.SortBy, q.Order, "products.created_at")).
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&products).Error
	return products, total, err
}
