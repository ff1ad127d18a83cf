package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/angeeelvega/payment-app-backend/internal/cache"
	"github.com/angeeelvega/payment-app-backend/internal/domain"
	"github.com/angeeelvega/payment-app-backend/internal/gateway"
	"github.com/angeeelvega/payment-app-backend/internal/repository"
)

// MockStore implements repository.Store for testing
type MockStore struct {
	Transaction *domain.Transaction
	GetTrxErr   error
	Product      *domain.Product
	GetProdErr   error
	GetProdCalls int
	Products     []*domain.Product
	ListErr     error
	Delivery    *domain.Delivery
	GetDelErr   error

	CreateErr            error
	CreatedTransaction   *domain.Transaction // captures the transaction passed to CreateTransaction
	FinalizeApprovalErr  error
	FinalizedTransaction *domain.Transaction
	FinalizedDelivery    *domain.Delivery
	FinalizedEvent       *repository.OutboxEvent
	FinalizeFailureErr   error
	FailedTransaction    *domain.Transaction
	FailureEvent         *repository.OutboxEvent
	FailureEventSet      bool
	FinalizeCalls        int
}

func (m *MockStore) CreateTransaction(_ context.Context, trx *domain.Transaction) error {
	m.CreatedTransaction = trx
	return m.CreateErr
}

func (m *MockStore) GetTransactionByID(_ context.Context, _ uuid.UUID) (*domain.Transaction, error) {
	return m.Transaction, m.GetTrxErr
}

func (m *MockStore) FinalizeApproval(_ context.Context, trx *domain.Transaction, delivery *domain.Delivery, event *repository.OutboxEvent) error {
	m.FinalizeCalls++
	m.FinalizedTransaction = trx
	m.FinalizedDelivery = delivery
	m.FinalizedEvent = event
	return m.FinalizeApprovalErr
}

func (m *MockStore) FinalizeFailure(_ context.Context, trx *domain.Transaction, event *repository.OutboxEvent) error {
	m.FinalizeCalls++
	m.FailedTransaction = trx
	m.FailureEvent = event
	m.FailureEventSet = event != nil
	return m.FinalizeFailureErr
}

func (m *MockStore) GetProductByID(_ context.Context, _ uuid.UUID) (*domain.Product, error) {
	m.GetProdCalls++
	return m.Product, m.GetProdErr
}

func (m *MockStore) ListProducts(_ context.Context) ([]*domain.Product, error) {
	return m.Products, m.ListErr
}

func (m *MockStore) GetDeliveryByTransactionID(_ context.Context, _ uuid.UUID) (*domain.Delivery, error) {
	return m.Delivery, m.GetDelErr
}

func (m *MockStore) GetUnprocessedEvents(_ context.Context, _ int) ([]*repository.OutboxEvent, error) {
	return nil, nil
}

func (m *MockStore) MarkEventAsProcessed(_ context.Context, _ int64) error {
	return nil
}

func (m *MockStore) RunMigrations(*repository.Credentials) error {
	return nil
}

func (m *MockStore) Close() error {
	return nil
}

// MockGateway implements PaymentGateway for testing
type MockGateway struct {
	Result      gateway.ChargeResult
	ChargeCalls int
	LastRequest gateway.ChargeRequest // captures the request passed to Charge
}

func (m *MockGateway) Charge(_ context.Context, req gateway.ChargeRequest) gateway.ChargeResult {
	m.ChargeCalls++
	m.LastRequest = req
	return m.Result
}

func (m *MockGateway) TransactionStatus(_ context.Context, _ string) gateway.ChargeResult {
	return m.Result
}

// MockCache implements cache.ProductCache for testing
type MockCache struct {
	Product     *domain.Product
	GetErr      error
	SetErr      error
	DeleteErr   error
	SetCalls    int
	DeleteCalls int
	DeletedID   uuid.UUID
}

func (m *MockCache) Get(_ context.Context, _ uuid.UUID) (*domain.Product, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.Product == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.Product, nil
}

func (m *MockCache) Set(_ context.Context, product *domain.Product) error {
	m.SetCalls++
	if m.SetErr == nil {
		m.Product = product
	}
	return m.SetErr
}

func (m *MockCache) Delete(_ context.Context, id uuid.UUID) error {
	m.DeleteCalls++
	m.DeletedID = id
	if m.DeleteErr == nil {
		m.Product = nil
	}
	return m.DeleteErr
}
