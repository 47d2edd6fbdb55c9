package repositories

import (
	"context"
	"database/sql"
	"errors"

	"rentalBack/internal/models"
)

type ItemRepository struct {
	DB *sql.DB
}

func (r *ItemRepository) CreateItem(ctx context.Context, item models.Item) (models.Item, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Item{}, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO items (user_id, name, description, category, price, deposit, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, query,
		item.UserID, item.Name, item.Description, item.Category,
		item.Price, item.Deposit, models.ItemStatusAvailable,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return models.Item{}, err
	}
	for _, img := range item.Images {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO item_images (item_id, name, path) VALUES ($1, $2, $3)`,
			item.ID, img.Name, img.Path,
		)
		if err != nil {
			return models.Item{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Item{}, err
	}
	item.Status = models.ItemStatusAvailable
	return item, nil
}

func (r *ItemRepository) GetItemByID(ctx context.Context, id int) (models.Item, error) {
	query := `
		SELECT i.id, i.user_id, i.name, i.description, i.category, i.price, i.deposit, i.status,
		       u.nickname, u.avatar_url,
		       COALESCE(AVG(rv.rating), 0),
		       i.created_at, i.updated_at
		FROM items i
		JOIN users u ON i.user_id = u.id
		LEFT JOIN reviews rv ON rv.item_id = i.id
		WHERE i.id = $1
		GROUP BY i.id, u.nickname, u.avatar_url
	`
	var item models.Item
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.UserID, &item.Name, &item.Description, &item.Category,
		&item.Price, &item.Deposit, &item.Status,
		&item.Owner.Nickname, &item.Owner.AvatarURL,
		&item.AvgRating,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Item{}, models.ErrItemNotFound
		}
		return models.Item{}, err
	}
	item.Owner.ID = item.UserID

	images, err := r.getItemImages(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	item.Images = images
	return item, nil
}

func (r *ItemRepository) getItemImages(ctx context.Context, itemID int) ([]models.ItemImage, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT name, path FROM item_images WHERE item_id = $1`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []models.ItemImage{}
	for rows.Next() {
		var img models.ItemImage
		if err := rows.Scan(&img.Name, &img.Path); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *ItemRepository) GetFilteredItems(ctx context.Context, filter models.ItemFilterRequest) (models.ItemListResponse, error) {
	query := `
		SELECT i.id, i.user_id, i.name, i.description, i.category, i.price, i.deposit, i.status,
		       u.nickname, u.avatar_url, i.created_at,
		       COUNT(*) OVER ()
		FROM items i
		JOIN users u ON i.user_id = u.id
		WHERE i.status <> $1
		  AND ($2 = 0 OR i.price >= $2)
		  AND ($3 = 0 OR i.price <= $3)
		  AND (cardinality($4::text[]) = 0 OR i.category = ANY($4))
		ORDER BY i.created_at DESC
		LIMIT $5 OFFSET $6
	`
	categories := filter.Categories
	if categories == nil {
		categories = []string{}
	}
	offset := (filter.Page - 1) * filter.Limit
	rows, err := r.DB.QueryContext(ctx, query,
		models.ItemStatusHidden, filter.PriceFrom, filter.PriceTo, categories, filter.Limit, offset,
	)
	if err != nil {
		return models.ItemListResponse{}, err
	}
	defer rows.Close()

	resp := models.ItemListResponse{Items: []models.Item{}}
	for rows.Next() {
		var item models.Item
		err := rows.Scan(
			&item.ID, &item.UserID, &item.Name, &item.Description, &item.Category,
			&item.Price, &item.Deposit, &item.Status,
			&item.Owner.Nickname, &item.Owner.AvatarURL, &item.CreatedAt,
			&resp.Total,
		)
		if err != nil {
			return models.ItemListResponse{}, err
		}
		item.Owner.ID = item.UserID
		resp.Items = append(resp.Items, item)
	}
	return resp, rows.Err()
}

func (r *ItemRepository) GetItemsByUserID(ctx context.Context, userID int) ([]models.Item, error) {
	query := `
		SELECT id, user_id, name, description, category, price, deposit, status, created_at, updated_at
		FROM items WHERE user_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		err := rows.Scan(
			&item.ID, &item.UserID, &item.Name, &item.Description, &item.Category,
			&item.Price, &item.Deposit, &item.Status, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ItemRepository) UpdateItem(ctx context.Context, item models.Item) error {
	query := `
		UPDATE items
		SET name = $1, description = $2, category = $3, price = $4, deposit = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.DB.ExecContext(ctx, query,
		item.Name, item.Description, item.Category, item.Price, item.Deposit, item.ID,
	)
	return err
}

// Withdraw hides a listing. Only allowed while the item is not
// committed to an active rental.
func (r *ItemRepository) Withdraw(ctx context.Context, itemID int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE items SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		models.ItemStatusHidden, itemID, models.ItemStatusAvailable,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrItemCommitted
	}
	return nil
}

func (r *ItemRepository) Republish(ctx context.Context, itemID int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE items SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		models.ItemStatusAvailable, itemID, models.ItemStatusHidden,
	)
	return err
}

// TryCommit marks the item as exclusively reserved for one rental. The
// conditional WHERE is the whole mutual-exclusion guard: when two
// approvals race, the second one sees zero affected rows and must
// surface a conflict, never retry.
func (r *ItemRepository) TryCommit(ctx context.Context, tx *sql.Tx, itemID int) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE items SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		models.ItemStatusRented, itemID, models.ItemStatusAvailable,
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Release returns a committed item to the available pool.
func (r *ItemRepository) Release(ctx context.Context, tx *sql.Tx, itemID int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE items SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.ItemStatusAvailable, itemID,
	)
	return err
}
