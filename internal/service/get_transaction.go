package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/angeeelvega/payment-app-backend/internal/domain"
	"github.com/angeeelvega/payment-app-backend/internal/repository"
)

func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	trx, err := s.repo.GetTransactionByID(ctx, id)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		return nil, notFound("Transaction not found: %s", id)
	}
	if err != nil {
		return nil, persistence(err)
	}
	return trx, nil
}

// GetTransactionDelivery returns the delivery scheduled for an approved
// transaction. Transactions that never reached APPROVED have none.
func (s *Service) GetTransactionDelivery(ctx context.Context, transactionID uuid.UUID) (*domain.Delivery, error) {
	delivery, err := s.repo.GetDeliveryByTransactionID(ctx, transactionID)
	if errors.Is(err, repository.ErrDeliveryNotFound) {
		return nil, notFound("Delivery not found for transaction: %s", transactionID)
	}
	if err != nil {
		return nil, persistence(err)
	}
	return delivery, nil
}
