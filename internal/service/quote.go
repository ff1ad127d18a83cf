package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/angeeelvega/payment-app-backend/internal/cache"
	"github.com/angeeelvega/payment-app-backend/internal/domain"
	"github.com/angeeelvega/payment-app-backend/internal/repository"
)

// QuoteProduct computes the price breakdown for a prospective purchase.
func (s *Service) QuoteProduct(ctx context.Context, productID uuid.UUID, quantity int) (*domain.ProductQuote, error) {
	if quantity < 1 {
		return nil, validation("Quantity must be at least 1")
	}

	product, err := s.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.buildQuote(product, quantity), nil
}

// buildQuote is the single pricing rule: transaction creation quotes through
// the same function, so both call sites always agree on the breakdown.
func (s *Service) buildQuote(product *domain.Product, quantity int) *domain.ProductQuote {
	productAmount := product.Price * float64(quantity)
	return &domain.ProductQuote{
		ProductID:     product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		Quantity:      quantity,
		ProductAmount: productAmount,
		BaseFee:       s.cfg.BaseFee,
		DeliveryFee:   s.cfg.DeliveryFee,
		TotalAmount:   productAmount + s.cfg.BaseFee + s.cfg.DeliveryFee,
	}
}

// getProduct reads through the cache when one is configured. Cache failures
// degrade to the repository; they never fail the request.
func (s *Service) getProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	if s.products != nil {
		product, err := s.products.Get(ctx, productID)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("product cache read failed for %s: %v", productID, err)
		}
	}

	product, err := s.repo.GetProductByID(ctx, productID)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, notFound("Product not found: %s", productID)
	}
	if err != nil {
		return nil, persistence(err)
	}

	if s.products != nil {
		if err := s.products.Set(ctx, product); err != nil {
			log.Printf("product cache write failed for %s: %v", productID, err)
		}
	}
	return product, nil
}
