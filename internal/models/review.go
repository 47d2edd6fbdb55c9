package models

import (
	"time"
)

type Review struct {
	ID             int        `json:"id"`
	RentalID       int        `json:"rental_id,omitempty"`
	ItemID         int        `json:"item_id,omitempty"`
	ReviewerID     int        `json:"reviewer_id,omitempty"`
	Rating         int        `json:"rating"`
	Content        string     `json:"content"`
	ReviewerName   string     `json:"reviewer_name,omitempty"`
	ReviewerAvatar *string    `json:"reviewer_avatar,omitempty"`
	RentalEndDate  time.Time  `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

type ReviewRequest struct {
	RentalID int    `json:"rental_id"`
	Rating   int    `json:"rating"`
	Content  string `json:"content"`
}
