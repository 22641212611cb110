package handler

import (
	"time"

	"go-inventory-api/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return "system" // Fallback jika tidak ada (shouldn't happen in protected routes)
	}
	return userID
}

func getUserName(c *fiber.Ctx) string {
	userName, ok := c.Locals("user_name").(string)
	if !ok {
		return "Unknown"
	}
	return userName
}

func getUserEmail(c *fiber.Ctx) string {
	userEmail, _ := c.Locals("user_email").(string)
	return userEmail
}

// currentUserID parses the authenticated user's id
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(getUserID(c))
}

// Helper untuk parse UUID dari string
func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

func pageQuery(c *fiber.Ctx) repository.PageQuery {
	return repository.PageQuery{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", repository.DefaultPageSize),
	}.Normalize()
}

// parseDate accepts YYYY-MM-DD or RFC3339. endOfDay moves a bare date to
// 23:59:59.999 so "to" is inclusive.
func parseDate(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, nil
}
