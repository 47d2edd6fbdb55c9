package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"rentalBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (name, nickname, phone, email, password, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		user.Name, user.Nickname, user.Phone, user.Email, user.Password,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "users_email_key") {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT id, name, nickname, phone, email, password, avatar_url, fcm_token, created_at, updated_at
		FROM users WHERE email = $1
	`
	var user models.User
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Nickname, &user.Phone, &user.Email,
		&user.Password, &user.AvatarURL, &user.FCMToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	query := `
		SELECT id, name, nickname, phone, email, avatar_url, fcm_token, created_at, updated_at
		FROM users WHERE id = $1
	`
	var user models.User
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Nickname, &user.Phone, &user.Email,
		&user.AvatarURL, &user.FCMToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) SaveSession(ctx context.Context, userID int, session models.Session) error {
	query := `
		INSERT INTO sessions (user_id, refresh_token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET refresh_token = $2, expires_at = $3
	`
	_, err := r.DB.ExecContext(ctx, query, userID, session.RefreshToken, session.ExpiresAt)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, int, error) {
	query := `SELECT user_id, refresh_token, expires_at FROM sessions WHERE refresh_token = $1`
	var (
		session models.Session
		userID  int
	)
	err := r.DB.QueryRowContext(ctx, query, refreshToken).Scan(&userID, &session.RefreshToken, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, 0, models.ErrNoRecord
		}
		return models.Session{}, 0, err
	}
	if time.Now().After(session.ExpiresAt) {
		return models.Session{}, 0, models.ErrNoRecord
	}
	return session, userID, nil
}

func (r *UserRepository) UpdateFCMToken(ctx context.Context, userID int, token string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET fcm_token = $1, updated_at = NOW() WHERE id = $2`, token, userID)
	return err
}
