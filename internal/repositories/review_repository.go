package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"rentalBack/internal/models"
)

type ReviewRepository struct {
	DB *sql.DB
}

func (r *ReviewRepository) CreateReview(ctx context.Context, rev models.Review) (models.Review, error) {
	query := `
		INSERT INTO reviews (rental_id, item_id, reviewer_id, rating, content, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		rev.RentalID, rev.ItemID, rev.ReviewerID, rev.Rating, rev.Content,
	).Scan(&rev.ID, &rev.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "reviews_rental_id_key") {
			return models.Review{}, models.ErrAlreadyReviewed
		}
		return models.Review{}, err
	}
	return rev, nil
}

func (r *ReviewRepository) ExistsByRentalID(ctx context.Context, rentalID int) (bool, error) {
	var x int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM reviews WHERE rental_id = $1 LIMIT 1`, rentalID).Scan(&x)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ReviewRepository) GetReviewByID(ctx context.Context, id int) (models.Review, error) {
	query := `
		SELECT rv.id, rv.rental_id, rv.item_id, rv.reviewer_id, rv.rating, rv.content,
		       rt.end_date, rv.created_at, rv.updated_at
		FROM reviews rv
		JOIN rentals rt ON rv.rental_id = rt.id
		WHERE rv.id = $1
	`
	var rev models.Review
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&rev.ID, &rev.RentalID, &rev.ItemID, &rev.ReviewerID, &rev.Rating, &rev.Content,
		&rev.RentalEndDate, &rev.CreatedAt, &rev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Review{}, models.ErrReviewNotFound
		}
		return models.Review{}, err
	}
	return rev, nil
}

func (r *ReviewRepository) GetReviewsByItemID(ctx context.Context, itemID int) ([]models.Review, error) {
	query := `
		SELECT rv.id, rv.rental_id, rv.reviewer_id, rv.rating, rv.content,
		       u.nickname, u.avatar_url,
		       rv.created_at, rv.updated_at
		FROM reviews rv
		JOIN users u ON rv.reviewer_id = u.id
		WHERE rv.item_id = $1
		ORDER BY rv.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var rev models.Review
		err := rows.Scan(&rev.ID, &rev.RentalID, &rev.ReviewerID, &rev.Rating, &rev.Content,
			&rev.ReviewerName, &rev.ReviewerAvatar,
			&rev.CreatedAt, &rev.UpdatedAt)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

func (r *ReviewRepository) UpdateReview(ctx context.Context, rev models.Review) error {
	query := `
		UPDATE reviews
		SET rating = $1, content = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.DB.ExecContext(ctx, query, rev.Rating, rev.Content, rev.ID)
	return err
}

func (r *ReviewRepository) DeleteReview(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	return err
}
