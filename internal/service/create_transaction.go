package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angeeelvega/payment-app-backend/internal/domain"
	"github.com/angeeelvega/payment-app-backend/internal/repository"
)

type CreateTransactionInput struct {
	CustomerEmail      string
	CustomerFirstName  string
	CustomerLastName   string
	CustomerAddress    string
	CustomerDocumentID string
	CustomerCity       string
	ProductID          uuid.UUID
	Quantity           int
}

// CreateTransaction validates stock, prices the purchase and persists a new
// PENDING transaction. Stock is checked here but only decremented on approved
// payment, so concurrent pending transactions can over-commit; the catalog is
// authoritative at charge time.
func (s *Service) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	if input.Quantity < 1 {
		return nil, validation("Quantity must be at least 1")
	}

	product, err := s.repo.GetProductByID(ctx, input.ProductID)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, notFound("Product not found: %s", input.ProductID)
	}
	if err != nil {
		return nil, persistence(err)
	}

	if !product.HasStock(input.Quantity) {
		return nil, validation("Insufficient stock for %s. Requested: %d, Available: %d",
			product.Name, input.Quantity, product.Stock)
	}

	quote := s.buildQuote(product, input.Quantity)

	customerCity := strings.TrimSpace(input.CustomerCity)
	if customerCity == "" {
		customerCity = "N/A"
	}

	trx := &domain.Transaction{
		ID:                 uuid.New(),
		TransactionNumber:  generateTransactionNumber(),
		CustomerEmail:      input.CustomerEmail,
		CustomerFirstName:  input.CustomerFirstName,
		CustomerLastName:   input.CustomerLastName,
		CustomerAddress:    input.CustomerAddress,
		CustomerDocumentID: input.CustomerDocumentID,
		CustomerCity:       customerCity,
		ProductID:          input.ProductID,
		Quantity:           input.Quantity,
		ProductAmount:      quote.ProductAmount,
		BaseFee:            quote.BaseFee,
		DeliveryFee:        quote.DeliveryFee,
		TotalAmount:        quote.TotalAmount,
		Status:             domain.TransactionStatusPending,
	}

	if err := s.repo.CreateTransaction(ctx, trx); err != nil {
		return nil, persistence(err)
	}

	log.Printf("transaction created id=%s number=%s total=%v", trx.ID, trx.TransactionNumber, trx.TotalAmount)
	return trx, nil
}

// generateTransactionNumber builds the human-readable reference sent to the
// gateway: prefix + millisecond timestamp + random suffix.
func generateTransactionNumber() string {
	return fmt.Sprintf("TRX-%d-%04d", time.Now().UnixMilli(), rand.Intn(10000))
}
