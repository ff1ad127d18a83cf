package domain

import "github.com/google/uuid"

// ProductQuote is the computed price breakdown for a prospective purchase.
// It lives for the duration of a request and is never persisted.
type ProductQuote struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Quantity      int       `json:"quantity"`
	ProductAmount float64   `json:"product_amount"`
	BaseFee       float64   `json:"base_fee"`
	DeliveryFee   float64   `json:"delivery_fee"`
	TotalAmount   float64   `json:"total_amount"`
}
