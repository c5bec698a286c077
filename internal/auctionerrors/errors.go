package auctionerrors

import "errors"

// Validation errors, correctable by the caller
var (
	ErrMissingField       = errors.New("required auction field missing")
	ErrInvalidWindow      = errors.New("invalid auction time window")
	ErrConflictingAuction = errors.New("seller already has an active auction")
	ErrStillActive        = errors.New("auction has not ended yet")
	ErrInvalidID          = errors.New("invalid id format")
	ErrInvalidState       = errors.New("auction is not open for bidding")
	ErrBidTooLow          = errors.New("bid amount too low")
)

// Lookup errors
var (
	ErrNotFound = errors.New("record not found")
)

// Infrastructure errors, retryable where the operation is idempotent
var (
	ErrAssetUploadFailed = errors.New("asset upload failed")
	ErrTimeout           = errors.New("operation timed out")
	ErrPersistence       = errors.New("persistence failure")
)
