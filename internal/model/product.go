package model

import "time"

type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	Currency  string    `json:"currency" db:"currency"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Optional additional price points in other currencies.
	ExtraPrices []ProductPrice `json:"extra_prices,omitempty" db:"-"`
}

type ProductPrice struct {
	ProductID string  `json:"-" db:"product_id"`
	Currency  string  `json:"currency" db:"currency"`
	Price     float64 `json:"price" db:"price"`
}
