package services

import (
	"context"
	"strings"
	"time"

	"rentalBack/internal/fsm"
	"rentalBack/internal/models"
	"rentalBack/internal/repositories"
)

// RentalStore is the slice of RentalRepository the lifecycle needs. The
// mutating methods own their transactions and perform the conditional
// status writes.
type RentalStore interface {
	CreateRental(ctx context.Context, rental models.Rental) (models.Rental, error)
	GetRentalByID(ctx context.Context, id int) (models.Rental, error)
	GetRentalsByRenterID(ctx context.Context, renterID int) ([]models.Rental, error)
	GetRentalsByOwnerID(ctx context.Context, ownerID int) ([]models.Rental, error)
	Approve(ctx context.Context, rentalID, itemID int) error
	Reject(ctx context.Context, rentalID int, reason string) error
	Cancel(ctx context.Context, rentalID int, fromStatus string, releaseItemID int) error
	Start(ctx context.Context, rentalID int) error
	CompleteReturn(ctx context.Context, rentalID, itemID int) error
}

type ItemStore interface {
	GetItemByID(ctx context.Context, id int) (models.Item, error)
}

type UserStore interface {
	GetUserByID(ctx context.Context, id int) (models.User, error)
}

// RentalEventNotifier receives lifecycle events for push/websocket
// delivery. Implementations must not block and must swallow their own
// errors; a failed notification never fails the transition.
type RentalEventNotifier interface {
	RentalEvent(ctx context.Context, rental models.Rental, event string)
}

const (
	EventApproved = "rental_approved"
	EventRejected = "rental_rejected"
	EventPaid     = "rental_paid"
	EventStarted  = "rental_started"
	EventReturned = "rental_returned"
	EventCanceled = "rental_canceled"
)

type RentalService struct {
	RentalRepo RentalStore
	ItemRepo   ItemStore
	UserRepo   UserStore
	Cache      *repositories.ItemCache
	Notifiers  []RentalEventNotifier
}

// ceilHours charges any started hour in full, with a one hour minimum.
func ceilHours(start, end time.Time) int {
	d := end.Sub(start)
	hours := int(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	if hours < 1 {
		hours = 1
	}
	return hours
}

// RequestRental creates a rental in waiting state. The item is not
// locked here; several competing requests may wait on the same item and
// the lock is only taken when the owner approves one of them.
func (s *RentalService) RequestRental(ctx context.Context, renterID int, req models.RentalRequest) (models.Rental, error) {
	if _, err := s.UserRepo.GetUserByID(ctx, renterID); err != nil {
		return models.Rental{}, err
	}
	item, err := s.ItemRepo.GetItemByID(ctx, req.ItemID)
	if err != nil {
		return models.Rental{}, err
	}
	if item.UserID == renterID {
		return models.Rental{}, models.ErrForbidden
	}
	if !req.EndDate.After(req.StartDate) {
		return models.Rental{}, models.ErrInvalidInterval
	}
	if item.Status != models.ItemStatusAvailable {
		return models.Rental{}, models.ErrItemCommitted
	}

	rental := models.Rental{
		ItemID:     item.ID,
		RenterID:   renterID,
		OwnerID:    item.UserID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		TotalPrice: ceilHours(req.StartDate, req.EndDate) * item.Price,
	}
	created, err := s.RentalRepo.CreateRental(ctx, rental)
	if err != nil {
		return models.Rental{}, err
	}
	created.OwnerID = item.UserID
	created.ItemName = item.Name
	return created, nil
}

// Decide resolves a waiting rental. Approval commits the item; when a
// concurrent approval on another waiting rental already committed it,
// the conditional write loses and ErrItemCommitted is surfaced.
func (s *RentalService) Decide(ctx context.Context, rentalID, ownerID int, decision models.RentalDecision) (models.Rental, error) {
	rental, err := s.RentalRepo.GetRentalByID(ctx, rentalID)
	if err != nil {
		return models.Rental{}, err
	}
	if rental.OwnerID != ownerID {
		return models.Rental{}, models.ErrForbidden
	}
	if rental.Status != fsm.StatusWaiting {
		return models.Rental{}, models.ErrInvalidTransition
	}

	if decision.Approved {
		if err := s.RentalRepo.Approve(ctx, rental.ID, rental.ItemID); err != nil {
			return models.Rental{}, err
		}
		rental.Status = fsm.StatusApproved
		rental.RejectReason = nil
		s.Cache.Invalidate(ctx, rental.ItemID)
		s.notify(ctx, rental, EventApproved)
		return rental, nil
	}

	reason := strings.TrimSpace(decision.RejectReason)
	if reason == "" {
		return models.Rental{}, models.ErrRejectReasonRequired
	}
	if err := s.RentalRepo.Reject(ctx, rental.ID, reason); err != nil {
		return models.Rental{}, err
	}
	rental.Status = fsm.StatusRejected
	rental.RejectReason = &reason
	s.notify(ctx, rental, EventRejected)
	return rental, nil
}

// Cancel is the renter's escape valve before handover. Once the item
// has been handed over (renting) or the rental completed, cancellation
// is no longer legal.
func (s *RentalService) Cancel(ctx context.Context, rentalID, renterID int) (models.Rental, error) {
	rental, err := s.RentalRepo.GetRentalByID(ctx, rentalID)
	if err != nil {
		return models.Rental{}, err
	}
	if rental.RenterID != renterID {
		return models.Rental{}, models.ErrForbidden
	}
	if !fsm.CanTransition(rental.Status, fsm.StatusCanceled) {
		return models.Rental{}, models.ErrInvalidTransition
	}

	// the item was committed on this rental's behalf only after approval
	releaseItemID := 0
	if rental.Status == fsm.StatusApproved || rental.Status == fsm.StatusPaid {
		releaseItemID = rental.ItemID
	}
	if err := s.RentalRepo.Cancel(ctx, rental.ID, rental.Status, releaseItemID); err != nil {
		return models.Rental{}, err
	}
	rental.Status = fsm.StatusCanceled
	if releaseItemID != 0 {
		s.Cache.Invalidate(ctx, releaseItemID)
	}
	s.notify(ctx, rental, EventCanceled)
	return rental, nil
}

// Start confirms the handover; only the owner can do it, and only once
// payment is settled.
func (s *RentalService) Start(ctx context.Context, rentalID, ownerID int) (models.Rental, error) {
	rental, err := s.RentalRepo.GetRentalByID(ctx, rentalID)
	if err != nil {
		return models.Rental{}, err
	}
	if rental.OwnerID != ownerID {
		return models.Rental{}, models.ErrForbidden
	}
	if rental.Status != fsm.StatusPaid {
		return models.Rental{}, models.ErrInvalidTransition
	}
	if err := s.RentalRepo.Start(ctx, rental.ID); err != nil {
		return models.Rental{}, err
	}
	rental.Status = fsm.StatusRenting
	s.notify(ctx, rental, EventStarted)
	return rental, nil
}

// CompleteReturn ends the rental and releases the item lock. Either
// side of the transaction may record the return.
func (s *RentalService) CompleteReturn(ctx context.Context, rentalID, callerID int) (models.Rental, error) {
	rental, err := s.RentalRepo.GetRentalByID(ctx, rentalID)
	if err != nil {
		return models.Rental{}, err
	}
	if rental.OwnerID != callerID && rental.RenterID != callerID {
		return models.Rental{}, models.ErrForbidden
	}
	if rental.Status != fsm.StatusRenting {
		return models.Rental{}, models.ErrInvalidTransition
	}
	if err := s.RentalRepo.CompleteReturn(ctx, rental.ID, rental.ItemID); err != nil {
		return models.Rental{}, err
	}
	rental.Status = fsm.StatusReturned
	s.Cache.Invalidate(ctx, rental.ItemID)
	s.notify(ctx, rental, EventReturned)
	return rental, nil
}

func (s *RentalService) GetMyRentals(ctx context.Context, renterID int) ([]models.Rental, error) {
	return s.RentalRepo.GetRentalsByRenterID(ctx, renterID)
}

func (s *RentalService) GetReceivedRequests(ctx context.Context, ownerID int) ([]models.Rental, error) {
	return s.RentalRepo.GetRentalsByOwnerID(ctx, ownerID)
}

func (s *RentalService) notify(ctx context.Context, rental models.Rental, event string) {
	for _, n := range s.Notifiers {
		n.RentalEvent(ctx, rental, event)
	}
}
