package apperrors

import (
	"errors"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")

	ErrAdminAlreadyExists   = errors.New("admin already exists")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrCredentialsInvalid   = errors.New("invalid username or password")
	ErrSessionTokenInvalid  = errors.New("session token is invalid")
	ErrSessionTokenNotFound = errors.New("session token not found")

	ErrHistoryEntryNotFound   = errors.New("point history entry not found")
	ErrBalanceInsufficient    = errors.New("insufficient point balance")
	ErrDuplicateSourceHistory = errors.New("source history entry already consumed")
	ErrTransactionInvalid     = errors.New("point transaction is invalid")
	ErrBelowMinimumUsage      = errors.New("points below minimum usage")
)
