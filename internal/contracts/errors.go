package contracts

import "errors"

var (
	ErrNotFound  = errors.New("contract analysis not found")
	ErrInvalidID = errors.New("invalid contract analysis id")
)
