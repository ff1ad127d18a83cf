package cache

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/angeeelvega/payment-app-backend/internal/domain"
)

type ProductCache interface {
	Get(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	Set(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, productID uuid.UUID) error
}

var ErrCacheMiss = errors.New("cache miss")
