package repositories

import (
	"context"
	"database/sql"
	"errors"

	"rentalBack/internal/fsm"
	"rentalBack/internal/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func (r *PaymentRepository) GetPaymentByRentalID(ctx context.Context, rentalID int) (models.Payment, error) {
	query := `
		SELECT id, rental_id, payment_key, order_id, amount, status, created_at
		FROM payments WHERE rental_id = $1
	`
	var p models.Payment
	err := r.DB.QueryRowContext(ctx, query, rentalID).Scan(
		&p.ID, &p.RentalID, &p.PaymentKey, &p.OrderID, &p.Amount, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, models.ErrNoRecord
		}
		return models.Payment{}, err
	}
	return p, nil
}

// ConfirmPaid moves the rental from approved to paid and records the
// payment row in one transaction. The unique index on payments.rental_id
// and the conditional status update together keep this to one payment
// per rental even under retried confirmations.
func (r *PaymentRepository) ConfirmPaid(ctx context.Context, p models.Payment) (models.Payment, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Payment{}, err
	}
	defer tx.Rollback()

	if err := fsm.Apply(ctx, tx, p.RentalID, fsm.StatusApproved, fsm.StatusPaid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, models.ErrInvalidTransition
		}
		return models.Payment{}, err
	}

	query := `
		INSERT INTO payments (rental_id, payment_key, order_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, query,
		p.RentalID, p.PaymentKey, p.OrderID, p.Amount, models.PaymentStatusDone,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return models.Payment{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Payment{}, err
	}
	p.Status = models.PaymentStatusDone
	return p, nil
}
