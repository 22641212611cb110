package service

import (
	"fmt"
	"time"

	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type InventoryService interface {
	CreateProduct(req *CreateProductRequest, userID, userName, userEmail string) (*model.Product, error)
	UpdateProduct(id uuid.UUID, req *UpdateProductRequest, userID, userName, userEmail string) (*model.Product, error)
	RetireProduct(id uuid.UUID, userID, userName, userEmail string) (*model.Product, error)
	RestockProduct(id uuid.UUID, quantity int, userID, userName, userEmail string) (*model.Product, error)
	GetProducts(q repository.ProductQuery) (*ProductList, error)
	GetProductByID(id uuid.UUID) (*model.Product, error)
	GetCatalog(q repository.ProductQuery) (*CatalogList, error)
}

type CreateProductRequest struct {
	LotCode           string          `json:"lot_code" validate:"required,min=1,max=50"`
	Name              string          `json:"name" validate:"required,min=2,max=200"`
	Price             decimal.Decimal `json:"price" validate:"decimal_gt0"`
	AvailableQuantity int             `json:"available_quantity" validate:"gte=0"`
	IngestedAt        *time.Time      `json:"ingested_at"`
	Description       string          `json:"description" validate:"max=1000"`
}

// UpdateProductRequest is a partial update; nil fields are left unchanged.
// omitnil keeps an explicit "" or 0 subject to the rules.
type UpdateProductRequest struct {
	LotCode           *string              `json:"lot_code" validate:"omitnil,min=1,max=50"`
	Name              *string              `json:"name" validate:"omitnil,min=2,max=200"`
	Price             *decimal.Decimal     `json:"price" validate:"omitnil,decimal_gt0"`
	AvailableQuantity *int                 `json:"available_quantity" validate:"omitnil,gte=0"`
	IngestedAt        *time.Time           `json:"ingested_at"`
	Description       *string              `json:"description" validate:"omitnil,max=1000"`
	Status            *model.ProductStatus `json:"status" validate:"omitnil,oneof=active retired"`
}

type ProductList struct {
	Products   []model.Product `json:"products"`
	Pagination Pagination      `json:"pagination"`
}

type CatalogList struct {
	Products   []model.ProductSummary `json:"products"`
	Pagination Pagination             `json:"pagination"`
}

type inventoryService struct {
	productRepo repository.ProductRepository
	ledger      StockLedger
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewInventoryService(pRepo repository.ProductRepository, ledger StockLedger, db *gorm.DB, hub *ws.Hub) InventoryService {
	return &inventoryService{
		productRepo: pRepo,
		ledger:      ledger,
		db:          db,
		wsHub:       hub,
	}
}

func (s *inventoryService) CreateProduct(req *CreateProductRequest, userID, userName, userEmail string) (*model.Product, error) {
	// 1. Validasi Struct Dasar
	if err := validate(req); err != nil {
		return nil, err
	}

	// 2. Cek Duplikasi Lot Code (advisory; the unique index is the backstop)
	if existing, err := s.productRepo.FindByLotCode(req.LotCode); err == nil && existing != nil {
		return nil, ErrDuplicateLotCode
	}

	product := &model.Product{
		LotCode:           req.LotCode,
		Name:              req.Name,
		Price:             req.Price,
		AvailableQuantity: req.AvailableQuantity,
		IngestedAt:        time.Now(),
		Description:       req.Description,
		Status:            model.ProductActive,
	}
	if req.IngestedAt != nil {
		product.IngestedAt = *req.IngestedAt
	}

	// 3. Set Audit Fields
	product.CreatedBy = userID
	product.UpdatedBy = userID

	// 4. Simpan ke Database
	if err := s.productRepo.Create(product); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrDuplicateLotCode
		}
		return nil, persistence("create product", err)
	}

	// 5. Broadcast ke WebSocket dengan user info
	s.broadcastStock("product_created", product, product.AvailableQuantity, userID, userName, userEmail,
		fmt.Sprintf("%s created product '%s'", userName, product.Name))

	return product, nil
}

func (s *inventoryService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest, userID, userName, userEmail string) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var updated *model.Product
	var oldStock int

	// Gunakan Transaction Block dengan Locking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 1. Cari & Lock Product (Pessimistic Locking)
		existing, err := s.productRepo.FindForUpdate(tx, id)
		if err != nil {
			return notFound("load product", err, ErrProductMissing)
		}
		oldStock = existing.AvailableQuantity

		// 2. Lot code is frozen once an invoice line refers to it
		if req.LotCode != nil && *req.LotCode != existing.LotCode {
			referenced, err := s.productRepo.IsReferenced(tx, id)
			if err != nil {
				return persistence("check product references", err)
			}
			if referenced {
				return ErrLotCodeLocked
			}
			existing.LotCode = *req.LotCode
		}

		// 3. Update fields
		if req.Name != nil {
			existing.Name = *req.Name
		}
		if req.Price != nil {
			existing.Price = *req.Price
		}
		if req.AvailableQuantity != nil {
			existing.AvailableQuantity = *req.AvailableQuantity
		}
		if req.IngestedAt != nil {
			existing.IngestedAt = *req.IngestedAt
		}
		if req.Description != nil {
			existing.Description = *req.Description
		}
		if req.Status != nil {
			existing.Status = *req.Status
		}
		existing.UpdatedBy = userID

		// 4. Simpan ke database (pakai tx)
		if err := s.productRepo.Update(tx, existing); err != nil {
			if repository.IsDuplicateKey(err) {
				return ErrDuplicateLotCode
			}
			return persistence("update product", err)
		}

		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 5. Broadcast only after commit
	s.broadcastStock("product_updated", updated, oldStock, userID, userName, userEmail,
		fmt.Sprintf("%s updated product '%s'", userName, updated.Name))

	return updated, nil
}

// RetireProduct is the DELETE path: the row stays for invoice history
func (s *inventoryService) RetireProduct(id uuid.UUID, userID, userName, userEmail string) (*model.Product, error) {
	var retired *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.FindForUpdate(tx, id)
		if err != nil {
			return notFound("load product", err, ErrProductMissing)
		}
		if existing.Status == model.ProductRetired {
			retired = existing
			return nil
		}
		existing.Status = model.ProductRetired
		existing.UpdatedBy = userID
		if err := s.productRepo.Update(tx, existing); err != nil {
			return persistence("retire product", err)
		}
		retired = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStock("product_retired", retired, retired.AvailableQuantity, userID, userName, userEmail,
		fmt.Sprintf("%s retired product '%s'", userName, retired.Name))
	return retired, nil
}

// RestockProduct adds units through the StockLedger
func (s *inventoryService) RestockProduct(id uuid.UUID, quantity int, userID, userName, userEmail string) (*model.Product, error) {
	var product *model.Product
	var oldStock int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.FindForUpdate(tx, id)
		if err != nil {
			return notFound("load product", err, ErrProductMissing)
		}
		oldStock = existing.AvailableQuantity
		if err := s.ledger.Increment(tx, existing, quantity, userID); err != nil {
			return err
		}
		product = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStock("product_restocked", product, oldStock, userID, userName, userEmail,
		fmt.Sprintf("%s added %d units of '%s'", userName, quantity, product.Name))
	return product, nil
}

func (s *inventoryService) GetProducts(q repository.ProductQuery) (*ProductList, error) {
	if q.SortBy == "" {
		q.SortBy = "ingested_at"
	}
	products, total, err := s.productRepo.FindAndCount(q)
	if err != nil {
		return nil, persistence("list products", err)
	}
	return &ProductList{Products: products, Pagination: NewPagination(q.PageQuery, total)}, nil
}

func (s *inventoryService) GetProductByID(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound("find product", err, ErrProductMissing)
	}
	return product, nil
}

// GetCatalog lists what a client can buy right now
func (s *inventoryService) GetCatalog(q repository.ProductQuery) (*CatalogList, error) {
	q.Status = model.ProductActive
	q.InStockOnly = true
	if q.SortBy == "" {
		q.SortBy = "name"
		if q.Order == "" {
			q.Order = "asc"
		}
	}

	products, total, err := s.productRepo.FindAndCount(q)
	if err != nil {
		return nil, persistence("list catalog", err)
	}

	summaries := make([]model.ProductSummary, len(products))
	for i := range products {
		summaries[i] = products[i].ToSummary()
	}
	return &CatalogList{Products: summaries, Pagination: NewPagination(q.PageQuery, total)}, nil
}

func (s *inventoryService) broadcastStock(action string, p *model.Product, oldStock int, userID, userName, userEmail, message string) {
	s.wsHub.Publish(ws.Event{
		Type:   ws.EventStockUpdate,
		Action: action,
		Data: map[string]interface{}{
			"id":        p.ID,
			"lot_code":  p.LotCode,
			"name":      p.Name,
			"old_stock": oldStock,
			"new_stock": p.AvailableQuantity,
			"price":     p.Price,
			"status":    p.Status,
		},
		User:    &ws.Actor{ID: userID, Name: userName, Email: userEmail},
		Message: message,
	})
	log.WithFields(log.Fields{"action": action, "product_id": p.ID}).Debug("stock update broadcast")
}
