package models

import (
	"time"
)

type Rental struct {
	ID           int        `json:"id"`
	ItemID       int        `json:"item_id"`
	RenterID     int        `json:"renter_id"`
	OwnerID      int        `json:"owner_id"`
	Status       string     `json:"status"`
	TotalPrice   int        `json:"total_price"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
	RejectReason *string    `json:"reject_reason,omitempty"`
	ItemName     string     `json:"item_name,omitempty"`
	RenterName   string     `json:"renter_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type RentalRequest struct {
	ItemID    int       `json:"item_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type RentalDecision struct {
	Approved     bool   `json:"approved"`
	RejectReason string `json:"reject_reason,omitempty"`
}
