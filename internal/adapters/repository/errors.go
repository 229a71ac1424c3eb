package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("key not found")
	ErrStoreClosed = errors.New("store closed")
	ErrInvalidKey  = errors.New("invalid key")
)
