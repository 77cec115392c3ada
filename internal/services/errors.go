// internal/services/errors.go
package services

import "errors"

var (
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrMissingFields    = errors.New("missing required fields")
	ErrAmountMismatch   = errors.New("payment amount mismatch")
	ErrInvalidSignature = errors.New("invalid transaction signature")
	ErrInvalidPayer     = errors.New("invalid payer address")
	ErrPriceOutOfRange  = errors.New("price out of range")
	ErrStorageDisabled  = errors.New("object storage is not configured")
	ErrFileAccessDenied = errors.New("file link is missing, expired or for another file")
)
