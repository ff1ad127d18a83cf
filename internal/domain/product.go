package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       float64
	Stock       int
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

// DecreaseStock fails without touching stock when quantity exceeds what is
// available; stock never goes below zero.
func (p *Product) DecreaseStock(quantity int) error {
	if !p.HasStock(quantity) {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (p *Product) IncreaseStock(quantity int) {
	p.Stock += quantity
}
