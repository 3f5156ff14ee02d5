package order

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes failures returned by Session operations.
type ErrorCode string

const (
	// CodeInvalidArgument marks a caller bug: non-positive quantity or unknown item id.
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// CodeItemUnavailable marks an add of an item that is sold out.
	CodeItemUnavailable ErrorCode = "ITEM_UNAVAILABLE"

	// CodeEmptyCart marks a commit with nothing in the cart.
	CodeEmptyCart ErrorCode = "EMPTY_CART"

	// CodeNotFound marks a decrement of an item that is not in the cart.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeTokenExhausted marks a token generator that kept returning used tokens.
	CodeTokenExhausted ErrorCode = "TOKEN_EXHAUSTED"
)

// Error is returned by every failing Session operation. A failed operation
// never changes session state.
type Error struct {
	Code    ErrorCode
	Message string

	// ItemID identifies the offending item, if any.
	ItemID string
}

// Sentinels for errors.Is. Matching compares codes only.
var (
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrItemUnavailable = &Error{Code: CodeItemUnavailable, Message: "item unavailable"}
	ErrEmptyCart       = &Error{Code: CodeEmptyCart, Message: "cart is empty"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "item not in cart"}
	ErrTokenExhausted  = &Error{Code: CodeTokenExhausted, Message: "no unique token available"}
)

func (e *Error) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("%s: %s (item=%s)", e.Code, e.Message, e.ItemID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

// IsRecoverable reports whether err is an expected condition that the
// presentation layer should show as a warning rather than a bug.
func IsRecoverable(err error) bool {
	switch CodeOf(err) {
	case CodeItemUnavailable, CodeEmptyCart, CodeNotFound:
		return true
	}
	return false
}

func newError(code ErrorCode, itemID, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), ItemID: itemID}
}
