package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentalBack/internal/fsm"
	"rentalBack/internal/models"
)

type fakeReviewStore struct {
	reviews map[int]models.Review
	nextID  int
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{reviews: map[int]models.Review{}, nextID: 1}
}

func (f *fakeReviewStore) CreateReview(ctx context.Context, rev models.Review) (models.Review, error) {
	for _, r := range f.reviews {
		if r.RentalID == rev.RentalID {
			return models.Review{}, models.ErrAlreadyReviewed
		}
	}
	rev.ID = f.nextID
	rev.CreatedAt = time.Now()
	f.nextID++
	f.reviews[rev.ID] = rev
	return rev, nil
}

func (f *fakeReviewStore) ExistsByRentalID(ctx context.Context, rentalID int) (bool, error) {
	for _, r := range f.reviews {
		if r.RentalID == rentalID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewStore) GetReviewByID(ctx context.Context, id int) (models.Review, error) {
	rev, ok := f.reviews[id]
	if !ok {
		return models.Review{}, models.ErrReviewNotFound
	}
	return rev, nil
}

func (f *fakeReviewStore) GetReviewsByItemID(ctx context.Context, itemID int) ([]models.Review, error) {
	out := []models.Review{}
	for _, r := range f.reviews {
		if r.ItemID == itemID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewStore) UpdateReview(ctx context.Context, rev models.Review) error {
	if _, ok := f.reviews[rev.ID]; !ok {
		return models.ErrReviewNotFound
	}
	f.reviews[rev.ID] = rev
	return nil
}

func (f *fakeReviewStore) DeleteReview(ctx context.Context, id int) error {
	if _, ok := f.reviews[id]; !ok {
		return models.ErrReviewNotFound
	}
	delete(f.reviews, id)
	return nil
}

var reviewRentalEnd = time.Date(2024, 5, 3, 18, 0, 0, 0, time.UTC)

func newReviewServiceForTest(rentalStatus string) (*ReviewService, *fakeReviewStore, *fakeRentalStore) {
	rentals := newFakeRentalStore()
	rentals.rentals[1] = models.Rental{
		ID: 1, ItemID: 10, RenterID: 1, OwnerID: 2,
		Status:  rentalStatus,
		EndDate: reviewRentalEnd,
	}
	reviews := newFakeReviewStore()
	svc := &ReviewService{
		ReviewRepo: reviews,
		RentalRepo: rentals,
		Now:        func() time.Time { return reviewRentalEnd.Add(time.Hour) },
	}
	return svc, reviews, rentals
}

func TestCreateReview(t *testing.T) {
	svc, _, _ := newReviewServiceForTest(fsm.StatusReturned)

	review, err := svc.CreateReview(context.Background(), 1, models.ReviewRequest{RentalID: 1, Rating: 5, Content: "great drill"})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if review.ItemID != 10 || review.ReviewerID != 1 {
		t.Fatalf("review not linked to rental: %+v", review)
	}

	// one review per rental
	_, err = svc.CreateReview(context.Background(), 1, models.ReviewRequest{RentalID: 1, Rating: 4})
	if !errors.Is(err, models.ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestCreateReviewRenterOnly(t *testing.T) {
	svc, _, _ := newReviewServiceForTest(fsm.StatusReturned)

	_, err := svc.CreateReview(context.Background(), 2, models.ReviewRequest{RentalID: 1, Rating: 5})
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for owner, got %v", err)
	}
}

func TestCreateReviewRequiresReturnedRental(t *testing.T) {
	for _, status := range []string{fsm.StatusWaiting, fsm.StatusApproved, fsm.StatusPaid, fsm.StatusRenting, fsm.StatusCanceled} {
		svc, _, _ := newReviewServiceForTest(status)
		_, err := svc.CreateReview(context.Background(), 1, models.ReviewRequest{RentalID: 1, Rating: 5})
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Fatalf("status %s: expected ErrInvalidTransition, got %v", status, err)
		}
	}
}

func TestCreateReviewRatingBounds(t *testing.T) {
	svc, _, _ := newReviewServiceForTest(fsm.StatusReturned)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.CreateReview(context.Background(), 1, models.ReviewRequest{RentalID: 1, Rating: rating})
		if !errors.Is(err, models.ErrRatingOutOfRange) {
			t.Fatalf("rating %d: expected ErrRatingOutOfRange, got %v", rating, err)
		}
	}
}

func TestUpdateReviewWithinWindow(t *testing.T) {
	svc, reviews, _ := newReviewServiceForTest(fsm.StatusReturned)

	created, err := svc.CreateReview(context.Background(), 1, models.ReviewRequest{RentalID: 1, Rating: 3, Content: "ok"})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	stored := reviews.reviews[created.ID]
	stored.RentalEndDate = reviewRentalEnd
	reviews.reviews[created.ID] = stored

	// two days after the end date is inside the window
	svc.Now = func() time.Time { return reviewRentalEnd.Add(48 * time.Hour) }
	updated, err := svc.UpdateReview(context.Background(), created.ID, 1, 4, "better after cleaning")
	if err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	if updated.Rating != 4 || updated.Content != "better after cleaning" {
		t.Fatalf("update not applied: %+v", updated)
	}

	// four days after is past it
	svc.Now = func() time.Time { return reviewRentalEnd.Add(4 * 24 * time.Hour) }
	_, err = svc.UpdateReview(context.Background(), created.ID, 1, 5, "late edit")
	if !errors.Is(err, models.ErrEditWindowExpired) {
		t.Fatalf("expected ErrEditWindowExpired, got %v", err)
	}
}

func TestUpdateReviewAuthorOnly(t *testing.T) {
	svc, reviews, _ := newReviewServiceForTest(fsm.StatusReturned)
	created, err := svc.CreateReview(context.Background(), 1, models.ReviewRequest{RentalID: 1, Rating: 3})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	stored := reviews.reviews[created.ID]
	stored.RentalEndDate = reviewRentalEnd
	reviews.reviews[created.ID] = stored

	_, err = svc.UpdateReview(context.Background(), created.ID, 2, 1, "sabotage")
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDeleteReviewAuthorOnly(t *testing.T) {
	svc, _, _ := newReviewServiceForTest(fsm.StatusReturned)
	created, err := svc.CreateReview(context.Background(), 1, models.ReviewRequest{RentalID: 1, Rating: 3})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	if err := svc.DeleteReview(context.Background(), created.ID, 2); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteReview(context.Background(), created.ID, 1); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}
	if err := svc.DeleteReview(context.Background(), created.ID, 1); !errors.Is(err, models.ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound after delete, got %v", err)
	}
}
