package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateName     = errors.New("item name already exists")
	ErrUnavailable       = errors.New("service unavailable")
)
