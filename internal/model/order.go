package model

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusSent      = "sent"
)

type Order struct {
	ID               string     `json:"id" db:"id"`
	CustomerName     string     `json:"customer_name" db:"customer_name"`
	CustomerEmail    string     `json:"customer_email" db:"customer_email"`
	ConfirmationCode string     `json:"confirmation_code" db:"confirmation_code"`
	Status           string     `json:"status" db:"status"`
	TotalAmount      float64    `json:"total_amount" db:"total_amount"`
	Notes            string     `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
}

// OrderLine is a price snapshot: product name and unit price are copied at
// order time so later catalog edits never change an issued invoice.
type OrderLine struct {
	ID          string  `json:"id" db:"id"`
	OrderID     string  `json:"order_id" db:"order_id"`
	ProductID   string  `json:"product_id" db:"product_id"`
	ProductName string  `json:"product_name" db:"product_name"`
	Quantity    int     `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
}
