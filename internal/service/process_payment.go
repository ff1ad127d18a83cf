package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angeeelvega/payment-app-backend/internal/domain"
	"github.com/angeeelvega/payment-app-backend/internal/gateway"
	"github.com/angeeelvega/payment-app-backend/internal/repository"
)

const deliveryLeadTime = 3 * 24 * time.Hour

type ProcessPaymentInput struct {
	TransactionID uuid.UUID
	CardToken     string
	CardHolder    string
	Installments  int
	CustomerEmail string
}

// ProcessPayment drives a pending transaction to a terminal state: validate,
// charge through the gateway, then finalize transaction/stock/delivery in a
// single storage transaction.
func (s *Service) ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*domain.Transaction, error) {
	trx, err := s.repo.GetTransactionByID(ctx, input.TransactionID)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		return nil, notFound("Transaction not found: %s", input.TransactionID)
	}
	if err != nil {
		return nil, persistence(err)
	}

	if !trx.IsPending() {
		return nil, invalidState("Transaction is not in pending status")
	}

	// The one validation failure that still mutates the transaction: a
	// malformed token leaves an ERROR record behind so the attempt is visible.
	if input.CardToken == "" || !strings.HasPrefix(input.CardToken, "tok_") {
		trx.MarkError("Invalid card token format")
		if err := s.repo.FinalizeFailure(ctx, trx, nil); err != nil {
			log.Printf("failed to persist token-format error for %s: %v", trx.ID, err)
		}
		s.countPayment("error")
		return nil, validation(`Invalid card token format. Must start with "tok_"`)
	}

	log.Printf("charging gateway for transaction %s amount=%v %s reference=%s",
		trx.ID, trx.TotalAmount, s.cfg.Currency, trx.TransactionNumber)

	start := time.Now()
	result := s.gateway.Charge(ctx, gateway.ChargeRequest{
		Amount:        trx.TotalAmount,
		Currency:      s.cfg.Currency,
		CardToken:     input.CardToken,
		CardHolder:    input.CardHolder,
		Installments:  input.Installments,
		Reference:     trx.TransactionNumber,
		CustomerEmail: input.CustomerEmail,
	})
	if s.metrics != nil {
		s.metrics.GatewayLatencyMS.Observe(float64(time.Since(start).Milliseconds()))
	}

	if !result.Success {
		return nil, s.finalizeDecline(ctx, trx, result)
	}

	return s.finalizeApproval(ctx, trx, input.CardToken, result)
}

func (s *Service) finalizeDecline(ctx context.Context, trx *domain.Transaction, result gateway.ChargeResult) error {
	message := result.ErrorMessage
	if message == "" {
		message = "Payment declined"
	}

	trx.Decline(message)
	event, err := outboxEvent(trx, "payment.declined", map[string]any{
		"transaction_id":     trx.ID,
		"transaction_number": trx.TransactionNumber,
		"reason":             message,
		"gateway_status":     result.Status,
	})
	if err != nil {
		return persistence(err)
	}

	if err := s.repo.FinalizeFailure(ctx, trx, event); err != nil {
		if errors.Is(err, repository.ErrTransactionNotPending) {
			return invalidState("Transaction is not in pending status")
		}
		return persistence(err)
	}

	// A charge that is still PENDING after the poll budget is ambiguous, not
	// declined; callers get a distinct failure class for it.
	if result.Status == "PENDING" {
		s.countPayment("timeout")
		return gatewayFailure(message)
	}

	s.countPayment("declined")
	log.Printf("payment declined for transaction %s: %s", trx.ID, message)
	return declined(message)
}

func (s *Service) finalizeApproval(ctx context.Context, trx *domain.Transaction, cardToken string, result gateway.ChargeResult) (*domain.Transaction, error) {
	paymentReference := result.Reference
	if paymentReference == "" {
		paymentReference = trx.TransactionNumber
	}

	trx.Approve(result.TransactionID, paymentReference)
	trx.PaymentMethod = "CARD ****" + lastFour(cardToken)

	delivery := &domain.Delivery{
		ID:                    uuid.New(),
		TransactionID:         trx.ID,
		CustomerEmail:         trx.CustomerEmail,
		CustomerDocumentID:    trx.CustomerDocumentID,
		ProductID:             trx.ProductID,
		Quantity:              trx.Quantity,
		Address:               trx.CustomerAddress,
		City:                  trx.CustomerCity,
		Status:                domain.DeliveryStatusPending,
		EstimatedDeliveryDate: time.Now().Add(deliveryLeadTime),
	}

	event, err := outboxEvent(trx, "payment.approved", map[string]any{
		"transaction_id":         trx.ID,
		"transaction_number":     trx.TransactionNumber,
		"payment_transaction_id": trx.PaymentTransactionID,
		"product_id":             trx.ProductID,
		"quantity":               trx.Quantity,
		"total_amount":           trx.TotalAmount,
		"currency":               s.cfg.Currency,
	})
	if err != nil {
		return nil, persistence(err)
	}

	if err := s.repo.FinalizeApproval(ctx, trx, delivery, event); err != nil {
		if errors.Is(err, repository.ErrTransactionNotPending) {
			return nil, invalidState("Transaction is not in pending status")
		}
		return nil, persistence(err)
	}

	if s.products != nil {
		if err := s.products.Delete(ctx, trx.ProductID); err != nil {
			log.Printf("product cache invalidation failed for %s: %v", trx.ProductID, err)
		}
	}

	s.countPayment("approved")
	log.Printf("payment approved for transaction %s gateway_id=%s", trx.ID, trx.PaymentTransactionID)
	return trx, nil
}

func outboxEvent(trx *domain.Transaction, eventType string, payload map[string]any) (*repository.OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &repository.OutboxEvent{
		AggregateID: trx.ID.String(),
		EventType:   eventType,
		Payload:     data,
	}, nil
}

func (s *Service) countPayment(outcome string) {
	if s.metrics != nil {
		s.metrics.Payments.WithLabelValues(outcome).Inc()
	}
}

func lastFour(token string) string {
	if len(token) < 4 {
		return token
	}
	return token[len(token)-4:]
}
