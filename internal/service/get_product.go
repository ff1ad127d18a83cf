package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/angeeelvega/payment-app-backend/internal/domain"
)

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.getProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, persistence(err)
	}
	return products, nil
}
