package services

import (
	"context"
	"errors"

	"rentalBack/internal/fsm"
	"rentalBack/internal/models"
)

type PaymentStore interface {
	GetPaymentByRentalID(ctx context.Context, rentalID int) (models.Payment, error)
	ConfirmPaid(ctx context.Context, p models.Payment) (models.Payment, error)
}

// PaymentProvider is the external confirm endpoint; *TossService is the
// production implementation.
type PaymentProvider interface {
	ConfirmPayment(ctx context.Context, paymentKey, orderID string, amount int) error
}

type PaymentService struct {
	PaymentRepo PaymentStore
	RentalRepo  RentalStore
	Provider    PaymentProvider
	Notifiers   []RentalEventNotifier
}

// Confirm verifies and settles the charge for an approved rental.
// Replaying a confirmation for an already paid rental returns the
// existing payment, so clients may retry after a network loss without
// double-charging.
func (s *PaymentService) Confirm(ctx context.Context, req models.PaymentConfirmRequest) (models.Payment, error) {
	rental, err := s.RentalRepo.GetRentalByID(ctx, req.RentalID)
	if err != nil {
		return models.Payment{}, err
	}

	if rental.Status == fsm.StatusPaid {
		payment, err := s.PaymentRepo.GetPaymentByRentalID(ctx, rental.ID)
		if err == nil {
			return payment, nil
		}
		if !errors.Is(err, models.ErrNoRecord) {
			return models.Payment{}, err
		}
		// paid without a payment row should not happen; fall through to
		// the transition error below
	}
	if rental.Status != fsm.StatusApproved {
		return models.Payment{}, models.ErrInvalidTransition
	}

	// amount is checked against the stored total before the provider is
	// ever contacted
	if req.Amount != rental.TotalPrice {
		return models.Payment{}, models.ErrAmountMismatch
	}

	if err := s.Provider.ConfirmPayment(ctx, req.PaymentKey, req.OrderID, req.Amount); err != nil {
		return models.Payment{}, err
	}

	payment, err := s.PaymentRepo.ConfirmPaid(ctx, models.Payment{
		RentalID:   rental.ID,
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			// a concurrent confirmation won; the rental is paid, return
			// the payment it recorded
			return s.PaymentRepo.GetPaymentByRentalID(ctx, rental.ID)
		}
		return models.Payment{}, err
	}

	rental.Status = fsm.StatusPaid
	for _, n := range s.Notifiers {
		n.RentalEvent(ctx, rental, EventPaid)
	}
	return payment, nil
}
