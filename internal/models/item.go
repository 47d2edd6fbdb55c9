package models

import (
	"time"
)

// Item statuses. The status column is written only by the rental
// lifecycle (approval commits, return/cancel releases); "hidden" is the
// owner withdrawing the listing.
const (
	ItemStatusAvailable = "available"
	ItemStatusRented    = "rented"
	ItemStatusHidden    = "hidden"
)

type Item struct {
	ID          int     `json:"id"`
	UserID      int     `json:"user_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       int     `json:"price"` // per hour, in minor currency units
	Deposit     int     `json:"deposit"`
	Status      string  `json:"status"`
	Owner       struct {
		ID        int     `json:"id"`
		Nickname  string  `json:"nickname"`
		AvatarURL *string `json:"avatar_url,omitempty"`
	} `json:"owner"`
	Images    []ItemImage `json:"images"`
	AvgRating float64     `json:"avg_rating"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

type ItemImage struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type ItemFilterRequest struct {
	Categories []string `json:"categories"`
	PriceFrom  int      `json:"price_from"`
	PriceTo    int      `json:"price_to"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
}

type ItemListResponse struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}
