package repositories

import (
	"context"
	"database/sql"
	"errors"

	"rentalBack/internal/fsm"
	"rentalBack/internal/models"
)

type RentalRepository struct {
	DB    *sql.DB
	Items *ItemRepository
}

func (r *RentalRepository) CreateRental(ctx context.Context, rental models.Rental) (models.Rental, error) {
	query := `
		INSERT INTO rentals (item_id, renter_id, status, total_price, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		rental.ItemID, rental.RenterID, fsm.StatusWaiting,
		rental.TotalPrice, rental.StartDate, rental.EndDate,
	).Scan(&rental.ID, &rental.CreatedAt)
	if err != nil {
		return models.Rental{}, err
	}
	rental.Status = fsm.StatusWaiting
	return rental, nil
}

func (r *RentalRepository) GetRentalByID(ctx context.Context, id int) (models.Rental, error) {
	query := `
		SELECT rt.id, rt.item_id, rt.renter_id, i.user_id, rt.status, rt.total_price,
		       rt.start_date, rt.end_date, rt.reject_reason,
		       i.name, u.nickname,
		       rt.created_at, rt.updated_at
		FROM rentals rt
		JOIN items i ON rt.item_id = i.id
		JOIN users u ON rt.renter_id = u.id
		WHERE rt.id = $1
	`
	var rental models.Rental
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&rental.ID, &rental.ItemID, &rental.RenterID, &rental.OwnerID,
		&rental.Status, &rental.TotalPrice,
		&rental.StartDate, &rental.EndDate, &rental.RejectReason,
		&rental.ItemName, &rental.RenterName,
		&rental.CreatedAt, &rental.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Rental{}, models.ErrRentalNotFound
		}
		return models.Rental{}, err
	}
	return rental, nil
}

func (r *RentalRepository) GetRentalsByRenterID(ctx context.Context, renterID int) ([]models.Rental, error) {
	query := `
		SELECT rt.id, rt.item_id, rt.renter_id, i.user_id, rt.status, rt.total_price,
		       rt.start_date, rt.end_date, rt.reject_reason, i.name,
		       rt.created_at, rt.updated_at
		FROM rentals rt
		JOIN items i ON rt.item_id = i.id
		WHERE rt.renter_id = $1
		ORDER BY rt.created_at DESC
	`
	return r.scanRentals(ctx, query, renterID)
}

func (r *RentalRepository) GetRentalsByOwnerID(ctx context.Context, ownerID int) ([]models.Rental, error) {
	query := `
		SELECT rt.id, rt.item_id, rt.renter_id, i.user_id, rt.status, rt.total_price,
		       rt.start_date, rt.end_date, rt.reject_reason, i.name,
		       rt.created_at, rt.updated_at
		FROM rentals rt
		JOIN items i ON rt.item_id = i.id
		WHERE i.user_id = $1
		ORDER BY rt.created_at DESC
	`
	return r.scanRentals(ctx, query, ownerID)
}

func (r *RentalRepository) scanRentals(ctx context.Context, query string, arg int) ([]models.Rental, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rentals := []models.Rental{}
	for rows.Next() {
		var rental models.Rental
		err := rows.Scan(
			&rental.ID, &rental.ItemID, &rental.RenterID, &rental.OwnerID,
			&rental.Status, &rental.TotalPrice,
			&rental.StartDate, &rental.EndDate, &rental.RejectReason, &rental.ItemName,
			&rental.CreatedAt, &rental.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, rental)
	}
	return rentals, rows.Err()
}

// Approve moves the rental to approved and commits the item in one
// transaction. The item write is conditional on it still being
// available; when another approval won the race the transaction rolls
// back and ErrItemCommitted is returned.
func (r *RentalRepository) Approve(ctx context.Context, rentalID, itemID int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fsm.Apply(ctx, tx, rentalID, fsm.StatusWaiting, fsm.StatusApproved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrInvalidTransition
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE rentals SET reject_reason = NULL WHERE id = $1`, rentalID); err != nil {
		return err
	}
	committed, err := r.Items.TryCommit(ctx, tx, itemID)
	if err != nil {
		return err
	}
	if !committed {
		return models.ErrItemCommitted
	}
	return tx.Commit()
}

func (r *RentalRepository) Reject(ctx context.Context, rentalID int, reason string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fsm.Apply(ctx, tx, rentalID, fsm.StatusWaiting, fsm.StatusRejected); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrInvalidTransition
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE rentals SET reject_reason = $1 WHERE id = $2`, reason, rentalID); err != nil {
		return err
	}
	return tx.Commit()
}

// Cancel terminates the rental and, when the item was committed on its
// behalf, releases the lock in the same transaction.
func (r *RentalRepository) Cancel(ctx context.Context, rentalID int, fromStatus string, releaseItemID int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fsm.Apply(ctx, tx, rentalID, fromStatus, fsm.StatusCanceled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrInvalidTransition
		}
		return err
	}
	if releaseItemID != 0 {
		if err := r.Items.Release(ctx, tx, releaseItemID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *RentalRepository) Start(ctx context.Context, rentalID int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fsm.Apply(ctx, tx, rentalID, fsm.StatusPaid, fsm.StatusRenting); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrInvalidTransition
		}
		return err
	}
	return tx.Commit()
}

func (r *RentalRepository) CompleteReturn(ctx context.Context, rentalID, itemID int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fsm.Apply(ctx, tx, rentalID, fsm.StatusRenting, fsm.StatusReturned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrInvalidTransition
		}
		return err
	}
	if err := r.Items.Release(ctx, tx, itemID); err != nil {
		return err
	}
	return tx.Commit()
}
