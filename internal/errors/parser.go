package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorInfo is a parsed, client-safe view of a backend error
type ErrorInfo struct {
	Code    string
	Message string
}

// PostgreSQL SQLSTATE classes we translate for clients
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// ParseError converts a raw database or service error into a coded,
// user-presentable ErrorInfo without leaking internals. The context string
// names the operation ("create store", "assign product") and steers the
// fallback messages.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "An internal error occurred"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: notFoundCode(context), Message: notFoundMessage(context)}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return parseUniqueViolation(pqErr, context)
		case pgForeignKeyViolation:
			return parseForeignKeyViolation(pqErr, context)
		case pgNotNullViolation:
			return ErrorInfo{
				Code:    ValidationRequired,
				Message: "Required field missing: " + pqErr.Column,
			}
		case pgCheckViolation:
			return ErrorInfo{
				Code:    ValidationInvalidRange,
				Message: "A value is outside its allowed range",
			}
		}
	}

	// SQLite in tests reports constraint failures as plain strings
	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "unique constraint") || strings.Contains(errLower, "duplicate key") {
		return parseUniqueViolationText(errLower, context)
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "The backend is temporarily unreachable. Please try again",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

// ParseAndRespond parses an error and responds in one call
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}

func parseUniqueViolation(pqErr *pq.Error, context string) ErrorInfo {
	return parseUniqueViolationText(strings.ToLower(pqErr.Constraint+" "+pqErr.Detail), context)
}

func parseUniqueViolationText(errLower, context string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email is already registered"}
	case strings.Contains(errLower, "username"):
		return ErrorInfo{Code: AuthUsernameExists, Message: "This username is already taken"}
	case strings.Contains(errLower, "barcode") && strings.Contains(errLower, "store"):
		return ErrorInfo{Code: StoreProductExists, Message: "This product is already assigned to the store"}
	case strings.Contains(errLower, "barcode"):
		return ErrorInfo{Code: ProductBarcodeExists, Message: "A product with this barcode already exists"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
}

func parseForeignKeyViolation(pqErr *pq.Error, context string) ErrorInfo {
	refLower := strings.ToLower(pqErr.Constraint + " " + pqErr.Detail)
	switch {
	case strings.Contains(refLower, "store"):
		return ErrorInfo{Code: StoreNotFound, Message: "The referenced store does not exist"}
	case strings.Contains(refLower, "barcode") || strings.Contains(refLower, "product"):
		return ErrorInfo{Code: ProductNotFound, Message: "The referenced product does not exist"}
	case strings.Contains(refLower, "user"):
		return ErrorInfo{Code: ResourceNotFound, Message: "The referenced user does not exist"}
	}
	return ErrorInfo{Code: ResourceConflict, Message: "The operation conflicts with related data"}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "product"):
		return ProductNotFound
	case strings.Contains(contextLower, "store"):
		return StoreNotFound
	}
	return ResourceNotFound
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "store"):
		return "Store not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	}
	return "The requested record was not found"
}

func defaultMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "create"), strings.Contains(contextLower, "assign"):
		return "Failed to save the record. Please try again later"
	case strings.Contains(contextLower, "update"):
		return "Failed to update the record. Please try again later"
	case strings.Contains(contextLower, "delete"), strings.Contains(contextLower, "remove"):
		return "Failed to delete the record. Please try again later"
	case strings.Contains(contextLower, "lookup"), strings.Contains(contextLower, "scan"):
		return "Failed to load store data. Please try again"
	}
	return "An internal error occurred. Please try again later"
}
