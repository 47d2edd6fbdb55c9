package services

import (
	"context"
	"time"

	"rentalBack/internal/fsm"
	"rentalBack/internal/models"
)

// reviewEditWindow is how long after the rental's end date a review may
// still be edited.
const reviewEditWindow = 3 * 24 * time.Hour

type ReviewStore interface {
	CreateReview(ctx context.Context, rev models.Review) (models.Review, error)
	ExistsByRentalID(ctx context.Context, rentalID int) (bool, error)
	GetReviewByID(ctx context.Context, id int) (models.Review, error)
	GetReviewsByItemID(ctx context.Context, itemID int) ([]models.Review, error)
	UpdateReview(ctx context.Context, rev models.Review) error
	DeleteReview(ctx context.Context, id int) error
}

type ReviewService struct {
	ReviewRepo ReviewStore
	RentalRepo RentalStore

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *ReviewService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateReview lets the renter leave exactly one review per returned
// rental.
func (s *ReviewService) CreateReview(ctx context.Context, reviewerID int, req models.ReviewRequest) (models.Review, error) {
	rental, err := s.RentalRepo.GetRentalByID(ctx, req.RentalID)
	if err != nil {
		return models.Review{}, err
	}
	if rental.RenterID != reviewerID {
		return models.Review{}, models.ErrForbidden
	}
	exists, err := s.ReviewRepo.ExistsByRentalID(ctx, rental.ID)
	if err != nil {
		return models.Review{}, err
	}
	if exists {
		return models.Review{}, models.ErrAlreadyReviewed
	}
	if rental.Status != fsm.StatusReturned {
		return models.Review{}, models.ErrInvalidTransition
	}
	if req.Rating < 1 || req.Rating > 5 {
		return models.Review{}, models.ErrRatingOutOfRange
	}

	return s.ReviewRepo.CreateReview(ctx, models.Review{
		RentalID:   rental.ID,
		ItemID:     rental.ItemID,
		ReviewerID: reviewerID,
		Rating:     req.Rating,
		Content:    req.Content,
	})
}

// UpdateReview allows the author to edit within the window after the
// rental ended.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, editorID, rating int, content string) (models.Review, error) {
	review, err := s.ReviewRepo.GetReviewByID(ctx, reviewID)
	if err != nil {
		return models.Review{}, err
	}
	if review.ReviewerID != editorID {
		return models.Review{}, models.ErrForbidden
	}
	if s.now().After(review.RentalEndDate.Add(reviewEditWindow)) {
		return models.Review{}, models.ErrEditWindowExpired
	}
	if rating < 1 || rating > 5 {
		return models.Review{}, models.ErrRatingOutOfRange
	}

	review.Rating = rating
	review.Content = content
	if err := s.ReviewRepo.UpdateReview(ctx, review); err != nil {
		return models.Review{}, err
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, callerID int) error {
	review, err := s.ReviewRepo.GetReviewByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.ReviewerID != callerID {
		return models.ErrForbidden
	}
	return s.ReviewRepo.DeleteReview(ctx, review.ID)
}

func (s *ReviewService) GetReviewsByItemID(ctx context.Context, itemID int) ([]models.Review, error) {
	return s.ReviewRepo.GetReviewsByItemID(ctx, itemID)
}
