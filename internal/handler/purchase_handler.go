package handler

import (
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(s service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

// CreatePurchase
// POST /api/v1/purchases
func (h *PurchaseHandler) CreatePurchase(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, service.ErrInvalidToken)
	}

	var req service.CreatePurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	purchase, err := h.service.CreatePurchase(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, fiber.StatusCreated, "Purchase completed", purchase)
}

// GetMyPurchases
// GET /api/v1/purchases/my-purchases
func (h *PurchaseHandler) GetMyPurchases(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, service.ErrInvalidToken)
	}

	list, err := h.service.GetMyPurchases(userID, repository.PurchaseQuery{
		PageQuery: pageQuery(c),
		SortBy:    c.Query("sort_by"),
		Order:     c.Query("order"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Purchase history retrieved", list)
}

// GetInvoice returns one of the caller's own purchases
// GET /api/v1/purchases/invoice/:id
func (h *PurchaseHandler) GetInvoice(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, service.ErrInvalidToken)
	}

	purchaseID, err := parseUUID(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid purchase ID")
	}

	invoice, err := h.service.GetInvoice(purchaseID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Invoice retrieved", invoice)
}

// GetAllPurchases
// GET /api/v1/purchases/admin/all?from=YYYY-MM-DD&to=YYYY-MM-DD&search=
func (h *PurchaseHandler) GetAllPurchases(c *fiber.Ctx) error {
	from, err := parseDate(c.Query("from"), false)
	if err != nil {
		return badRequest(c, "Invalid from date, use YYYY-MM-DD")
	}
	to, err := parseDate(c.Query("to"), true)
	if err != nil {
		return badRequest(c, "Invalid to date, use YYYY-MM-DD")
	}

	list, err := h.service.GetAllPurchases(repository.PurchaseQuery{
		PageQuery: pageQuery(c),
		From:      from,
		To:        to,
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		Order:     c.Query("order"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Purchases retrieved", list)
}
