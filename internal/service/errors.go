package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrEmptyCart          = errors.New("active cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress for this cart")
	ErrMissingUser        = errors.New("session carries no user id")
	ErrNoQRSession        = errors.New("no open qr payment for the active cart")
	ErrQRAmountChanged    = errors.New("cart total changed since the qr code was issued")
)

// ValidationError carries a message that can be shown to the cashier as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
