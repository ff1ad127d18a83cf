package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angeeelvega/payment-app-backend/internal/domain"
	"github.com/angeeelvega/payment-app-backend/internal/repository"
)

var testConfig = Config{
	BaseFee:     5000,
	DeliveryFee: 8000,
	Currency:    "COP",
}

func testProduct() *domain.Product {
	return &domain.Product{
		ID:          uuid.New(),
		Name:        "Laptop Gamer",
		Description: "High-end gaming laptop",
		Price:       100000,
		Stock:       10,
	}
}

func TestQuoteProduct(t *testing.T) {
	product := testProduct()
	store := &MockStore{Product: product}
	svc := New(store, &MockGateway{}, nil, testConfig, nil)

	quote, err := svc.QuoteProduct(context.Background(), product.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, product.ID, quote.ProductID)
	assert.Equal(t, 2, quote.Quantity)
	assert.Equal(t, 200000.0, quote.ProductAmount)
	assert.Equal(t, 5000.0, quote.BaseFee)
	assert.Equal(t, 8000.0, quote.DeliveryFee)
	assert.Equal(t, 213000.0, quote.TotalAmount)
}

func TestQuoteProduct_QuantityBelowOne(t *testing.T) {
	svc := New(&MockStore{Product: testProduct()}, &MockGateway{}, nil, testConfig, nil)

	_, err := svc.QuoteProduct(context.Background(), uuid.New(), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestQuoteProduct_UnknownProduct(t *testing.T) {
	store := &MockStore{GetProdErr: repository.ErrProductNotFound}
	svc := New(store, &MockGateway{}, nil, testConfig, nil)

	_, err := svc.QuoteProduct(context.Background(), uuid.New(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

// The quote and a created transaction must agree on every amount: both go
// through the same pricing function.
func TestQuoteMatchesCreatedTransaction(t *testing.T) {
	product := testProduct()
	store := &MockStore{Product: product}
	svc := New(store, &MockGateway{}, nil, testConfig, nil)

	quote, err := svc.QuoteProduct(context.Background(), product.ID, 3)
	require.NoError(t, err)

	trx, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		CustomerEmail: "buyer@example.com",
		ProductID:     product.ID,
		Quantity:      3,
	})
	require.NoError(t, err)

	assert.Equal(t, quote.ProductAmount, trx.ProductAmount)
	assert.Equal(t, quote.BaseFee, trx.BaseFee)
	assert.Equal(t, quote.DeliveryFee, trx.DeliveryFee)
	assert.Equal(t, quote.TotalAmount, trx.TotalAmount)
}

func TestQuoteProduct_CacheHitSkipsRepository(t *testing.T) {
	product := testProduct()
	store := &MockStore{GetProdErr: errors.New("repository should not be hit")}
	productCache := &MockCache{Product: product}
	svc := New(store, &MockGateway{}, productCache, testConfig, nil)

	quote, err := svc.QuoteProduct(context.Background(), product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, product.Price, quote.Price)
	assert.Equal(t, 0, store.GetProdCalls)
}

func TestQuoteProduct_CacheMissFillsCache(t *testing.T) {
	product := testProduct()
	store := &MockStore{Product: product}
	productCache := &MockCache{}
	svc := New(store, &MockGateway{}, productCache, testConfig, nil)

	_, err := svc.QuoteProduct(context.Background(), product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, store.GetProdCalls)
	assert.Equal(t, 1, productCache.SetCalls)
}

func TestQuoteProduct_CacheFailureDegradesToRepository(t *testing.T) {
	product := testProduct()
	store := &MockStore{Product: product}
	productCache := &MockCache{GetErr: errors.New("redis unavailable"), SetErr: errors.New("redis unavailable")}
	svc := New(store, &MockGateway{}, productCache, testConfig, nil)

	quote, err := svc.QuoteProduct(context.Background(), product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, product.Price, quote.Price)
	assert.Equal(t, 1, store.GetProdCalls)
}
