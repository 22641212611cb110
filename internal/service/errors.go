package service

import (
	"errors"
	"fmt"

	"go-inventory-api/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stable error codes returned to API clients
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeEmptyCart         = "EMPTY_CART"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeProductInactive   = "PRODUCT_INACTIVE"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeDuplicateInvoice  = "DUPLICATE_INVOICE"
	CodeDuplicateLotCode  = "DUPLICATE_LOT_CODE"
	CodeLotCodeLocked     = "LOT_CODE_LOCKED"
	CodeEmailExists       = "EMAIL_EXISTS"
	CodePersistence       = "PERSISTENCE_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInternal          = "INTERNAL_ERROR"
)

var (
	ErrEmptyCart          = errors.New("cart must contain at least one item")
	ErrDuplicateInvoice   = errors.New("invoice number already exists")
	ErrDuplicateLotCode   = errors.New("lot code already exists")
	ErrLotCodeLocked      = errors.New("lot code cannot change once the product has been purchased")
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrProductMissing     = errors.New("product not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ValidationError reports the first field that failed validation
type ValidationError struct {
	Field   string
	Tag     string
	Message string
	Fields  []*validator.ErrorResponse
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", e.Field, e.Tag)
}

// newValidationError wraps validator output; nil when errs is empty
func newValidationError(errs []*validator.ErrorResponse) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Field: errs[0].FailedField, Tag: errs[0].Tag, Fields: errs}
}

func validate(req interface{}) error {
	return newValidationError(validator.ValidateStruct(req))
}

type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

type ProductInactiveError struct {
	ProductID uuid.UUID
}

func (e *ProductInactiveError) Error() string {
	return fmt.Sprintf("product %s is not available", e.ProductID)
}

type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID.String()
	}
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", name, e.Available, e.Requested)
}

// PersistenceError is a storage failure the service cannot recover from
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// notFound turns gorm.ErrRecordNotFound into target, anything else into a
// PersistenceError
func notFound(op string, err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return persistence(op, err)
}

// ErrorCode maps err to its stable client-facing code
func ErrorCode(err error) string {
	var (
		validationErr *ValidationError
		notFoundErr   *ProductNotFoundError
		inactiveErr   *ProductInactiveError
		stockErr      *InsufficientStockError
		persistErr    *PersistenceError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return CodeValidation
	case errors.Is(err, ErrEmptyCart):
		return CodeEmptyCart
	case errors.As(err, &notFoundErr):
		return CodeProductNotFound
	case errors.As(err, &inactiveErr):
		return CodeProductInactive
	case errors.As(err, &stockErr):
		return CodeInsufficientStock
	case errors.As(err, &persistErr):
		// checked before the sentinels it may wrap (exhausted invoice retries)
		return CodePersistence
	case errors.Is(err, ErrDuplicateInvoice):
		return CodeDuplicateInvoice
	case errors.Is(err, ErrDuplicateLotCode):
		return CodeDuplicateLotCode
	case errors.Is(err, ErrLotCodeLocked):
		return CodeLotCodeLocked
	case errors.Is(err, ErrEmailExists):
		return CodeEmailExists
	case errors.Is(err, ErrPurchaseNotFound), errors.Is(err, ErrProductMissing), errors.Is(err, ErrUserNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		return CodeUnauthorized
	case errors.Is(err, ErrUserInactive):
		return CodeForbidden
	default:
		return CodeInternal
	}
}

// IsDomainError is true for every error the services raise on purpose
func IsDomainError(err error) bool {
	code := ErrorCode(err)
	return code != "" && code != CodeInternal
}

// ErrorDetails returns the structured fields a client needs to explain the
// failure, or nil
func ErrorDetails(err error) map[string]interface{} {
	var (
		validationErr *ValidationError
		notFoundErr   *ProductNotFoundError
		inactiveErr   *ProductInactiveError
		stockErr      *InsufficientStockError
	)

	switch {
	case errors.As(err, &validationErr):
		if len(validationErr.Fields) == 0 {
			return nil
		}
		return map[string]interface{}{"field": validationErr.Field, "tag": validationErr.Tag, "fields": validationErr.Fields}
	case errors.As(err, &notFoundErr):
		return map[string]interface{}{"product_id": notFoundErr.ProductID}
	case errors.As(err, &inactiveErr):
		return map[string]interface{}{"product_id": inactiveErr.ProductID}
	case errors.As(err, &stockErr):
		return map[string]interface{}{
			"product_id":   stockErr.ProductID,
			"product_name": stockErr.ProductName,
			"available":    stockErr.Available,
			"requested":    stockErr.Requested,
		}
	}
	return nil
}
