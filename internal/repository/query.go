package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"go-inventory-api/internal/model"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageQuery is the 1-based page/limit pair shared by list endpoints
type PageQuery struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit into their valid ranges
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return q
}

func (q PageQuery) Offset() int {
	n := q.Normalize()
	return (n.Page - 1) * n.Limit
}

// ProductQuery filters product listings
type ProductQuery struct {
	PageQuery
	Search string
	Status model.ProductStatus
	// InStockOnly restricts to rows with available_quantity > 0
	InStockOnly bool
	SortBy      string
	Order       string
}

// PurchaseQuery filters purchase listings. UserID narrows to one buyer;
// Search matches buyer name or email.
type PurchaseQuery struct {
	PageQuery
	UserID *uuid.UUID
	From   *time.Time
	To     *time.Time
	Search string
	SortBy string
	Order  string
}

var productSortColumns = map[string]string{
	"name":               "products.name",
	"price":              "products.price",
	"available_quantity": "products.available_quantity",
	"lot_code":           "products.lot_code",
	"ingested_at":        "products.ingested_at",
	"created_at":         "products.created_at",
}

var purchaseSortColumns = map[string]string{
	"created_at":     "purchases.created_at",
	"total":          "purchases.total",
	"invoice_number": "purchases.invoice_number",
}

// orderClause builds an ORDER BY from an allow-list so user input never
// reaches the SQL text. An unknown sortBy gets the fallback column, newest
// first, whatever order was asked for.
func orderClause(columns map[string]string, sortBy, order, fallback string) string {
	col, ok := columns[sortBy]
	if !ok {
		return fallback + " DESC"
	}
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
