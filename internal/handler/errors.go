package handler

import (
	"go-inventory-api/internal/service"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

var statusByCode = map[string]int{
	service.CodeValidation:        fiber.StatusBadRequest,
	service.CodeEmptyCart:         fiber.StatusBadRequest,
	service.CodeProductNotFound:   fiber.StatusNotFound,
	service.CodeProductInactive:   fiber.StatusConflict,
	service.CodeInsufficientStock: fiber.StatusConflict,
	service.CodeDuplicateInvoice:  fiber.StatusInternalServerError,
	service.CodeDuplicateLotCode:  fiber.StatusConflict,
	service.CodeLotCodeLocked:     fiber.StatusConflict,
	service.CodeEmailExists:       fiber.StatusConflict,
	service.CodePersistence:       fiber.StatusInternalServerError,
	service.CodeNotFound:          fiber.StatusNotFound,
	service.CodeUnauthorized:      fiber.StatusUnauthorized,
	service.CodeForbidden:         fiber.StatusForbidden,
}

// StatusFor maps a service error code to its HTTP status
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// respondError renders every failure as
// {"success": false, "code", "message", "details"}
func respondError(c *fiber.Ctx, err error) error {
	code := service.ErrorCode(err)
	status := StatusFor(code)

	message := err.Error()
	if status >= fiber.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"code":   code,
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
		message = "Internal Server Error"
	}

	body := fiber.Map{
		"success": false,
		"code":    code,
		"message": message,
	}
	if details := service.ErrorDetails(err); details != nil {
		body["details"] = details
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, message string) error {
	return respondError(c, &service.ValidationError{Message: message})
}

func respondOK(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}
