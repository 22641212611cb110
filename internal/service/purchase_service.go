package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/ws"
	"go-inventory-api/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// maxInvoiceAttempts bounds how often a colliding invoice number is
// regenerated before the purchase fails
const maxInvoiceAttempts = 3

type PurchaseService interface {
	CreatePurchase(ctx context.Context, userID uuid.UUID, req *CreatePurchaseRequest) (*model.PurchaseAggregate, error)
	GetMyPurchases(userID uuid.UUID, q repository.PurchaseQuery) (*PurchaseList, error)
	GetInvoice(purchaseID, userID uuid.UUID) (*model.PurchaseAggregate, error)
	GetAllPurchases(q repository.PurchaseQuery) (*PurchaseList, error)
}

type CartItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity"`
}

type CreatePurchaseRequest struct {
	Items []CartItem `json:"items" validate:"dive"`
	Notes string     `json:"notes" validate:"max=500"`
}

type PurchaseStatistics struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalPurchases int64           `json:"total_purchases"`
}

type PurchaseList struct {
	Purchases  []model.PurchaseAggregate `json:"purchases"`
	Pagination Pagination                `json:"pagination"`
	Statistics *PurchaseStatistics       `json:"statistics,omitempty"`
}

type PurchaseOption func(*purchaseService)

// WithInvoiceGenerator replaces the FAC-<millis>-<rand> generator
func WithInvoiceGenerator(gen func() string) PurchaseOption {
	return func(s *purchaseService) { s.newInvoice = gen }
}

func WithClock(now func() time.Time) PurchaseOption {
	return func(s *purchaseService) { s.now = now }
}

type purchaseService struct {
	productRepo  repository.ProductRepository
	purchaseRepo repository.PurchaseRepository
	ledger       StockLedger
	db           *gorm.DB
	wsHub        *ws.Hub
	now          func() time.Time
	newInvoice   func() string
}

func NewPurchaseService(pRepo repository.ProductRepository, purRepo repository.PurchaseRepository, ledger StockLedger, db *gorm.DB, hub *ws.Hub, opts ...PurchaseOption) PurchaseService {
	s := &purchaseService{
		productRepo:  pRepo,
		purchaseRepo: purRepo,
		ledger:       ledger,
		db:           db,
		wsHub:        hub,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newInvoice == nil {
		s.newInvoice = func() string { return model.GenerateInvoiceNumber(s.now(), rand.Intn) }
	}
	return s
}

// CreatePurchase turns a cart into a committed purchase. Any returned error
// means nothing was written.
func (s *purchaseService) CreatePurchase(ctx context.Context, userID uuid.UUID, req *CreatePurchaseRequest) (*model.PurchaseAggregate, error) {
	// 1. Reject an empty cart before touching storage
	if req == nil || len(req.Items) == 0 {
		metrics.PurchasesTotal.WithLabelValues(CodeEmptyCart).Inc()
		return nil, ErrEmptyCart
	}
	if err := validate(req); err != nil {
		metrics.PurchasesTotal.WithLabelValues(CodeValidation).Inc()
		return nil, err
	}

	// 2. Run the transaction, regenerating the invoice number on collision
	var (
		purchase *model.Purchase
		err      error
	)
	for attempt := 1; attempt <= maxInvoiceAttempts; attempt++ {
		purchase, err = s.createOnce(ctx, userID, req)
		if !errors.Is(err, ErrDuplicateInvoice) {
			break
		}
		metrics.InvoiceCollisions.Inc()
		log.WithFields(log.Fields{"user_id": userID, "attempt": attempt}).Warn("invoice number collision, regenerating")
	}
	if errors.Is(err, ErrDuplicateInvoice) {
		err = persistence("create purchase", fmt.Errorf("%d attempts: %w", maxInvoiceAttempts, err))
	}
	if err != nil {
		metrics.PurchasesTotal.WithLabelValues(ErrorCode(err)).Inc()
		return nil, err
	}

	// 3. Side effects happen only after commit
	units := 0
	for _, it := range purchase.Items {
		units += it.Quantity
	}
	revenue, _ := purchase.Total.Float64()
	metrics.PurchasesTotal.WithLabelValues("ok").Inc()
	metrics.UnitsSold.Add(float64(units))
	metrics.Revenue.Add(revenue)

	// 4. Read-after-commit for the full aggregate
	agg := s.reload(purchase)
	s.broadcastPurchase(agg)

	log.WithFields(log.Fields{
		"purchase_id": agg.ID,
		"invoice":     agg.InvoiceNumber,
		"user_id":     userID,
		"total":       agg.Total.String(),
	}).Info("purchase created")

	return &agg, nil
}

// createOnce is one attempt of the cart-to-purchase transaction
func (s *purchaseService) createOnce(ctx context.Context, userID uuid.UUID, req *CreatePurchaseRequest) (*model.Purchase, error) {
	var created *model.Purchase
	actor := userID.String()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A. Load (and lock) each product once, validating every line in order
		products := make(map[uuid.UUID]*model.Product, len(req.Items))
		items := make([]model.PurchaseItem, 0, len(req.Items))
		for _, line := range req.Items {
			product, ok := products[line.ProductID]
			if !ok {
				p, err := s.productRepo.FindForUpdate(tx, line.ProductID)
				if err != nil {
					return notFound("load product", err, &ProductNotFoundError{ProductID: line.ProductID})
				}
				product = p
				products[line.ProductID] = p
			}

			if !product.IsPurchasable() {
				return &ProductInactiveError{ProductID: product.ID}
			}
			if !s.ledger.HasStock(product, line.Quantity) {
				return insufficient(product, line.Quantity)
			}

			// B. Snapshot name, lot code and price into the line
			items = append(items, model.NewPurchaseItem(product, line.Quantity))
		}

		// C. Header
		purchase := &model.Purchase{
			InvoiceNumber: s.newInvoice(),
			UserID:        userID,
			Total:         model.SumSubtotals(items),
			Status:        model.PurchaseCompleted,
			Notes:         req.Notes,
		}
		purchase.CreatedBy = actor
		purchase.UpdatedBy = actor
		if err := s.purchaseRepo.Create(tx, purchase); err != nil {
			if repository.IsDuplicateKey(err) {
				return ErrDuplicateInvoice
			}
			return persistence("create purchase", err)
		}

		// D. Item then decrement, line by line
		for i := range items {
			items[i].PurchaseID = purchase.ID
			items[i].CreatedBy = actor
			if err := s.purchaseRepo.CreateItem(tx, &items[i]); err != nil {
				return persistence("create purchase item", err)
			}
			if err := s.ledger.Decrement(tx, products[items[i].ProductID], items[i].Quantity, actor); err != nil {
				return err
			}
		}

		purchase.Items = items
		created = purchase
		return nil
	})

	if err != nil {
		if !IsDomainError(err) {
			err = persistence("purchase transaction", err)
		}
		return nil, err
	}
	return created, nil
}

// reload fetches the committed purchase with user and product summaries.
// The purchase is already durable, so a failed read falls back to what was
// written.
func (s *purchaseService) reload(purchase *model.Purchase) model.PurchaseAggregate {
	stored, err := s.purchaseRepo.FindByID(purchase.ID)
	if err != nil {
		log.WithError(err).WithField("purchase_id", purchase.ID).Warn("reload purchase after commit")
		return purchase.ToAggregate()
	}
	return stored.ToAggregate()
}

func (s *purchaseService) broadcastPurchase(agg model.PurchaseAggregate) {
	type stockLine struct {
		ProductID uuid.UUID `json:"product_id"`
		Name      string    `json:"name"`
		Quantity  int       `json:"quantity"`
	}
	lines := make([]stockLine, len(agg.Items))
	for i, it := range agg.Items {
		lines[i] = stockLine{ProductID: it.ProductID, Name: it.ProductName, Quantity: it.Quantity}
	}

	var actor *ws.Actor
	if agg.User != nil {
		actor = &ws.Actor{ID: agg.User.ID.String(), Name: agg.User.Name, Email: agg.User.Email}
	}

	s.wsHub.Publish(ws.Event{
		Type:   ws.EventPurchaseCreated,
		Action: "purchase_created",
		Data: map[string]interface{}{
			"id":             agg.ID,
			"invoice_number": agg.InvoiceNumber,
			"total":          agg.Total,
			"items":          lines,
		},
		User:    actor,
		Message: fmt.Sprintf("purchase %s created", agg.InvoiceNumber),
	})
}

func (s *purchaseService) GetMyPurchases(userID uuid.UUID, q repository.PurchaseQuery) (*PurchaseList, error) {
	q.UserID = &userID
	q.Search = ""
	return s.list(q, false)
}

func (s *purchaseService) GetInvoice(purchaseID, userID uuid.UUID) (*model.PurchaseAggregate, error) {
	purchase, err := s.purchaseRepo.FindByIDForUser(purchaseID, userID)
	if err != nil {
		return nil, notFound("find purchase", err, ErrPurchaseNotFound)
	}
	agg := purchase.ToAggregate()
	return &agg, nil
}

func (s *purchaseService) GetAllPurchases(q repository.PurchaseQuery) (*PurchaseList, error) {
	return s.list(q, true)
}

func (s *purchaseService) list(q repository.PurchaseQuery, withStats bool) (*PurchaseList, error) {
	purchases, total, err := s.purchaseRepo.FindAndCount(q)
	if err != nil {
		return nil, persistence("list purchases", err)
	}

	out := &PurchaseList{
		Purchases:  make([]model.PurchaseAggregate, len(purchases)),
		Pagination: NewPagination(q.PageQuery, total),
	}
	for i := range purchases {
		out.Purchases[i] = purchases[i].ToAggregate()
	}

	if withStats {
		sum, err := s.purchaseRepo.SumTotal(q)
		if err != nil {
			return nil, persistence("sum purchases", err)
		}
		out.Statistics = &PurchaseStatistics{TotalSales: sum, TotalPurchases: total}
	}
	return out, nil
}
