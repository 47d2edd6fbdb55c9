package models

import "time"

const (
	PaymentStatusDone     = "DONE"
	PaymentStatusCanceled = "CANCELED"
	PaymentStatusAborted  = "ABORTED"
)

type Payment struct {
	ID         int       `json:"id"`
	RentalID   int       `json:"rental_id"`
	PaymentKey string    `json:"payment_key"`
	OrderID    string    `json:"order_id"`
	Amount     int       `json:"amount"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type PaymentConfirmRequest struct {
	RentalID   int    `json:"rental_id"`
	PaymentKey string `json:"payment_key"`
	OrderID    string `json:"order_id"`
	Amount     int    `json:"amount"`
}
