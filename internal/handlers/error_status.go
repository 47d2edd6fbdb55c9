package handlers

import (
	"errors"
	"net/http"

	"rentalBack/internal/models"
)

// coreErrorStatus maps the typed failures from the services onto HTTP
// statuses. Unknown errors are reported as 0 so the caller can log and
// answer 500.
func coreErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrRentalNotFound),
		errors.Is(err, models.ErrReviewNotFound),
		errors.Is(err, models.ErrNoRecord):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, models.ErrItemCommitted),
		errors.Is(err, models.ErrAlreadyReviewed):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidInterval),
		errors.Is(err, models.ErrItemInvalid),
		errors.Is(err, models.ErrRejectReasonRequired),
		errors.Is(err, models.ErrRatingOutOfRange),
		errors.Is(err, models.ErrAmountMismatch):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrEditWindowExpired):
		return http.StatusForbidden
	case errors.Is(err, models.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return 0
}

// respondError writes the mapped status for a typed failure and
// reports whether it handled the error.
func respondError(w http.ResponseWriter, err error) bool {
	status := coreErrorStatus(err)
	if status == 0 {
		return false
	}
	http.Error(w, err.Error(), status)
	return true
}
