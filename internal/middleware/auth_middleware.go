package middleware

import (
	"strings"

	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

func deny(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "code": code, "message": message})
}

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(userRepo repository.UserRepository, tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return deny(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return deny(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format. Use: Bearer <token>")
		}

		// Validate token
		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			return deny(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
		}

		// The account may have been disabled since the token was issued
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return deny(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "User not found")
		}
		if !user.IsActive {
			return deny(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "User account is inactive")
		}

		// Set user info in context for downstream handlers
		c.Locals("user_id", user.ID.String())
		c.Locals("user_email", user.Email)
		c.Locals("user_name", user.Name)
		c.Locals("user_role", string(user.Role))

		return c.Next()
	}
}

// RequireRole allows the request through when the authenticated user has
// one of roles
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(string)
		if !ok {
			return deny(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		}

		for _, r := range roles {
			if string(r) == role {
				return c.Next()
			}
		}

		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		return deny(c, fiber.StatusForbidden, "FORBIDDEN", "Forbidden: requires role "+strings.Join(names, " or "))
	}
}

// RequirePrivilege checks the role's static privilege set
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(string)
		if !ok {
			return deny(c, fiber.StatusForbidden, "FORBIDDEN", "No privileges found")
		}

		if model.Role(role).HasPrivilege(requiredPrivilege) {
			return c.Next()
		}

		return deny(c, fiber.StatusForbidden, "FORBIDDEN", "Forbidden: requires '"+requiredPrivilege+"' privilege")
	}
}
