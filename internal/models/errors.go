package models

import (
	"errors"
)

var (
	ErrNoRecord       = errors.New("models: no matching record found")
	ErrUserNotFound   = errors.New("models: user not found")
	ErrItemNotFound   = errors.New("models: item not found")
	ErrRentalNotFound = errors.New("models: rental not found")
	ErrReviewNotFound = errors.New("models: review not found")

	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")

	ErrForbidden         = errors.New("caller is not allowed to perform this operation")
	ErrInvalidTransition = errors.New("illegal rental status transition")

	ErrInvalidInterval      = errors.New("rental end must be after start")
	ErrItemInvalid          = errors.New("item name and positive hourly price are required")
	ErrRejectReasonRequired = errors.New("reject reason is required")
	ErrRatingOutOfRange     = errors.New("rating must be between 1 and 5")
	ErrAmountMismatch       = errors.New("payment amount does not match rental total")

	ErrItemCommitted   = errors.New("item is already committed to another rental")
	ErrAlreadyReviewed = errors.New("rental already has a review")

	ErrEditWindowExpired = errors.New("review edit window has expired")
)
