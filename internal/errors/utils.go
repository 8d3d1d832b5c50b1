package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgconn"
)

// error categories for classification
const (
	CategoryDatabase   = "database"
	CategoryNetwork    = "network"
	CategoryValidation = "validation"
	CategoryProvider   = "provider"
	CategoryConfig     = "configuration"
	CategoryTimeout    = "timeout"
	CategoryUnknown    = "unknown"
)

var production atomic.Bool

// switches response sanitization on; called once from main after config is loaded
func SetProduction(enabled bool) {
	production.Store(enabled)
}

// wraps err as a configuration failure
func Configuration(op string, err error) error {
	return &Error{Kind: KindConfiguration, Op: op, Err: err}
}

// wraps err as a provider (embedding/generation) failure
func Provider(op string, err error) error {
	return &Error{Kind: KindProvider, Op: op, Err: err}
}

// wraps err as a vector store failure
func StoreUnavailable(op string, err error) error {
	return &Error{Kind: KindStoreUnavailable, Op: op, Err: err}
}

// builds a validation failure from a message
func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// returns the Kind of the outermost tagged error in the chain, or "" if untagged
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}

// true for failures a retrieval step may absorb and continue without context
func IsDegradable(err error) bool {
	kind := KindOf(err)
	return kind == KindProvider || kind == KindStoreUnavailable
}

// analyzes an error and returns its category and sanitized message
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	isProduction := production.Load()

	switch KindOf(err) {
	case KindValidation:
		return ErrorInfo{CategoryValidation, err.Error()}
	case KindConfiguration:
		return ErrorInfo{
			category:  CategoryConfig,
			sanitized: ternary(isProduction, "service is not configured", err.Error()),
		}
	case KindStoreUnavailable:
		return ErrorInfo{
			category:  CategoryDatabase,
			sanitized: ternary(isProduction, "database operation failed", err.Error()),
		}
	}

	// context errors
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{
			category:  CategoryTimeout,
			sanitized: ternary(isProduction, "request timed out", err.Error()),
		}
	}

	if errors.Is(err, context.Canceled) {
		return ErrorInfo{
			category:  CategoryTimeout,
			sanitized: ternary(isProduction, "request canceled", err.Error()),
		}
	}

	if KindOf(err) == KindProvider {
		return ErrorInfo{
			category:  CategoryProvider,
			sanitized: ternary(isProduction, "completion provider request failed", err.Error()),
		}
	}

	// database errors (pgx-specific)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ErrorInfo{
			category:  CategoryDatabase,
			sanitized: ternary(isProduction, "database operation failed", err.Error()),
		}
	}

	// fallback to string matching for unknown error types
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline") {
		return ErrorInfo{
			category:  CategoryTimeout,
			sanitized: ternary(isProduction, "request timed out", err.Error()),
		}
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dial") {
		return ErrorInfo{
			category:  CategoryNetwork,
			sanitized: ternary(isProduction, "connection error occurred", err.Error()),
		}
	}

	return ErrorInfo{
		category:  CategoryUnknown,
		sanitized: ternary(isProduction, "an error occurred", err.Error()),
	}
}

// ternary helper for cleaner conditional assignment
func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}

	return falseVal
}
