package account

import "errors"

var (
	ErrAccountDoesNotExist        = errors.New("account does not exist")
	ErrAccountAlreadyExists       = errors.New("account already exists")
	ErrInvalidOrExpiredResetToken = errors.New("invalid or expired token")
)
