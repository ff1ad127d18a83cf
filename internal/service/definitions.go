package service

import (
	"context"

	"github.com/angeeelvega/payment-app-backend/internal/cache"
	"github.com/angeeelvega/payment-app-backend/internal/gateway"
	"github.com/angeeelvega/payment-app-backend/internal/repository"
	"github.com/angeeelvega/payment-app-backend/pkg/metrics"
)

// PaymentGateway is the charge protocol the service depends on; the concrete
// client lives in internal/gateway.
type PaymentGateway interface {
	Charge(ctx context.Context, req gateway.ChargeRequest) gateway.ChargeResult
	TransactionStatus(ctx context.Context, gatewayTxID string) gateway.ChargeResult
}

// Config carries the pricing parameters shared by the quote endpoint and
// transaction creation, plus the settlement currency sent to the gateway.
type Config struct {
	BaseFee     float64
	DeliveryFee float64
	Currency    string
}

type Service struct {
	repo     repository.Store
	gateway  PaymentGateway
	products cache.ProductCache
	cfg      Config
	metrics  *metrics.PaymentMetrics
}

// New wires the payment service. productCache and paymentMetrics may be nil;
// both are optional concerns.
func New(repo repository.Store, gw PaymentGateway, productCache cache.ProductCache, cfg Config, paymentMetrics *metrics.PaymentMetrics) *Service {
	return &Service{
		repo:     repo,
		gateway:  gw,
		products: productCache,
		cfg:      cfg,
		metrics:  paymentMetrics,
	}
}
