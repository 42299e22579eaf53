package domain

import "errors"

// Error kinds. Every error surfaced by the services unwraps to one of these.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Error is a client-safe error message bound to its kind
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation returns an ErrInvalidInput error with the given message
func Validation(message string) error {
	return &Error{Kind: ErrInvalidInput, Message: message}
}

// Auth errors
var (
	ErrInvalidCredentials   = &Error{Kind: ErrUnauthorized, Message: "invalid username or password"}
	ErrTokenInvalid         = &Error{Kind: ErrUnauthorized, Message: "invalid access token"}
	ErrTokenExpired         = &Error{Kind: ErrUnauthorized, Message: "access token expired"}
	ErrTokenMissing         = &Error{Kind: ErrUnauthorized, Message: "access token required"}
	ErrInsufficientRole     = &Error{Kind: ErrForbidden, Message: "you don't have permission to access this resource"}
	ErrUsernameTaken        = &Error{Kind: ErrDuplicateEntry, Message: "username already exists"}
	ErrEmailTaken           = &Error{Kind: ErrDuplicateEntry, Message: "email already exists"}
	ErrUserAlreadyExists    = &Error{Kind: ErrDuplicateEntry, Message: "username or email already exists"}
	ErrUserNotFound         = &Error{Kind: ErrNotFound, Message: "user not found"}
	ErrCurrentPasswordWrong = &Error{Kind: ErrInvalidInput, Message: "current password is incorrect"}
	ErrPasswordTooLong      = &Error{Kind: ErrInvalidInput, Message: "password must be at most 72 bytes"}
	ErrInvalidRoleOrUser    = &Error{Kind: ErrInvalidInput, Message: "invalid role or user not found"}
	ErrCannotDeactivateSelf = &Error{Kind: ErrInvalidInput, Message: "cannot deactivate your own account"}
)

// Loan errors
var (
	ErrLoanNotFound         = &Error{Kind: ErrNotFound, Message: "loan not found"}
	ErrInvalidPaymentAmount = &Error{Kind: ErrInvalidInput, Message: "invalid payment amount"}
	ErrConcurrentUpdate     = &Error{Kind: ErrDuplicateEntry, Message: "loan was modified concurrently, please retry"}
)
