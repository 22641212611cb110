package handler

import (
	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

func productQuery(c *fiber.Ctx) repository.ProductQuery {
	return repository.ProductQuery{
		PageQuery: pageQuery(c),
		Search:    c.Query("search"),
		Status:    model.ProductStatus(c.Query("status")),
		SortBy:    c.Query("sort_by"),
		Order:     c.Query("order"),
	}
}

// CreateProduct
// POST /api/v1/products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.service.CreateProduct(&req, getUserID(c), getUserName(c), getUserEmail(c))
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, fiber.StatusCreated, "Product created", product)
}

// UpdateProduct
// PUT /api/v1/products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	updated, err := h.service.UpdateProduct(productID, &req, getUserID(c), getUserName(c), getUserEmail(c))
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, fiber.StatusOK, "Product updated", updated)
}

// DeleteProduct retires the product; purchase history keeps referencing it
// DELETE /api/v1/products/:id
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	retired, err := h.service.RetireProduct(productID, getUserID(c), getUserName(c), getUserEmail(c))
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, fiber.StatusOK, "Product retired", retired)
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

// RestockProduct
// POST /api/v1/products/:id/restock
func (h *InventoryHandler) RestockProduct(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	var req restockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.service.RestockProduct(productID, req.Quantity, getUserID(c), getUserName(c), getUserEmail(c))
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, fiber.StatusOK, "Stock updated", product)
}

// GET /api/v1/products
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	list, err := h.service.GetProducts(productQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Products retrieved", list)
}

// GET /api/v1/products/:id
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	product, err := h.service.GetProductByID(productID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Product retrieved", product)
}

// GetCatalog lists active, in-stock products for clients
// GET /api/v1/products/catalog
func (h *InventoryHandler) GetCatalog(c *fiber.Ctx) error {
	list, err := h.service.GetCatalog(productQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Catalog retrieved", list)
}
