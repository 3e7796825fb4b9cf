package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every failure surfaced by the core matches exactly one of
// these through errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failure")
)

var (
	ErrEmptyCart           = errors.New("cart has no items")
	ErrInvalidQuantity     = errors.New("quantity must be between 1 and 10000")
	ErrInvalidPayment      = errors.New("invalid payment")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInactive     = errors.New("product is archived")
	ErrBarcodeExists       = errors.New("product with this barcode already exists")
	ErrSaleNotFound        = errors.New("sale not found")
	ErrDuplicateSaleNumber = errors.New("sale number already used")
	// ErrIdempotencyKeyUsed is reported by storage when another request
	// committed a sale with the same idempotency key first.
	ErrIdempotencyKeyUsed = errors.New("idempotency key already used")
	// ErrIdempotencyMismatch rejects a key reused for a different cashier or cart.
	ErrIdempotencyMismatch = errors.New("idempotency key belongs to a different sale")
	ErrInvalidTransition   = errors.New("invalid status transition")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrInvalidRole        = errors.New("invalid role")
	ErrSelfModification   = errors.New("cannot deactivate or delete your own account")
	ErrLastAdmin          = errors.New("at least one active admin is required")

	ErrCategoryExists   = errors.New("category already exists")
	ErrSupplierNotFound = errors.New("supplier not found")

	ErrForbidden = errors.New("access forbidden")

	// ErrTxConflict marks a transaction aborted by a concurrent write. The
	// same request can be sent again.
	ErrTxConflict = errors.New("conflicting concurrent update, please retry")
)

// ValidationError reports malformed or semantically invalid input. It is
// never retried.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Reason
	}
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// PersistenceError reports a storage failure: connectivity loss, constraint
// violation or an aborted transaction.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Invalid wraps cause as a ValidationError.
func Invalid(cause error, format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...), Err: cause}
}

// Persistence wraps err as a PersistenceError unless it already carries a
// classification.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrPersistence) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
