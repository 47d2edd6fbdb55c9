package fsm

import (
	"context"
	"database/sql"

	"rentalBack/internal/models"
)

// Status constants used by the rental lifecycle state machine.
const (
	StatusWaiting  = "waiting"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusPaid     = "paid"
	StatusRenting  = "renting"
	StatusReturned = "returned"
	StatusCanceled = "canceled"
)

// Terminal statuses have no outgoing transitions; a rental never leaves
// one of them. Cancellation is only reachable before handover.
var transitions = map[string]map[string]struct{}{
	StatusWaiting: {
		StatusApproved: {},
		StatusRejected: {},
		StatusCanceled: {},
	},
	StatusApproved: {
		StatusPaid:     {},
		StatusCanceled: {},
	},
	StatusPaid: {
		StatusRenting:  {},
		StatusCanceled: {},
	},
	StatusRenting: {
		StatusReturned: {},
	},
	StatusRejected: {},
	StatusReturned: {},
	StatusCanceled: {},
}

// CanTransition returns whether a rental can move from the current
// status to the target status.
func CanTransition(from, to string) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// IsTerminal reports whether no further transition is legal from status.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// Apply updates a rental status using optimistic validation. The WHERE
// clause carries the expected prior status; zero affected rows means a
// concurrent writer moved the rental first and the caller must surface
// the conflict rather than retry.
func Apply(ctx context.Context, tx *sql.Tx, rentalID int, fromStatus, toStatus string) error {
	if !CanTransition(fromStatus, toStatus) {
		return models.ErrInvalidTransition
	}
	res, err := tx.ExecContext(ctx, `UPDATE rentals SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`, toStatus, rentalID, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
