package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angeeelvega/payment-app-backend/internal/domain"
	"github.com/angeeelvega/payment-app-backend/internal/service"
)

// PaymentService is the use-case surface the handlers depend on; the concrete
// implementation lives in internal/service.
type PaymentService interface {
	CreateTransaction(ctx context.Context, input service.CreateTransactionInput) (*domain.Transaction, error)
	ProcessPayment(ctx context.Context, input service.ProcessPaymentInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetTransactionDelivery(ctx context.Context, transactionID uuid.UUID) (*domain.Delivery, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	QuoteProduct(ctx context.Context, productID uuid.UUID, quantity int) (*domain.ProductQuote, error)
}

type TransactionHandler struct {
	service PaymentService
	timeout time.Duration
}

func NewTransactionHandler(svc PaymentService, timeout time.Duration) *TransactionHandler {
	return &TransactionHandler{
		service: svc,
		timeout: timeout,
	}
}

type CreateTransactionRequestDTO struct {
	CustomerEmail      string `json:"customer_email"`
	CustomerFirstName  string `json:"customer_first_name"`
	CustomerLastName   string `json:"customer_last_name"`
	CustomerAddress    string `json:"customer_address"`
	CustomerDocumentID string `json:"customer_document_id"`
	CustomerCity       string `json:"customer_city"`
	ProductID          string `json:"product_id"`
	Quantity           int    `json:"quantity"`
}

type ProcessPaymentRequestDTO struct {
	CardToken     string `json:"card_token"`
	CardHolder    string `json:"card_holder"`
	Installments  int    `json:"installments"`
	CustomerEmail string `json:"customer_email"`
}

type DeliveryResponseDTO struct {
	ID                    string `json:"id"`
	Status                string `json:"status"`
	Address               string `json:"address"`
	City                  string `json:"city"`
	EstimatedDeliveryDate string `json:"estimated_delivery_date"`
}

type TransactionResponseDTO struct {
	ID                   string               `json:"id"`
	TransactionNumber    string               `json:"transaction_number"`
	Status               string               `json:"status"`
	StatusMessage        string               `json:"status_message,omitempty"`
	CustomerEmail        string               `json:"customer_email"`
	ProductID            string               `json:"product_id"`
	Quantity             int                  `json:"quantity"`
	ProductAmount        float64              `json:"product_amount"`
	BaseFee              float64              `json:"base_fee"`
	DeliveryFee          float64              `json:"delivery_fee"`
	TotalAmount          float64              `json:"total_amount"`
	PaymentTransactionID string               `json:"payment_transaction_id,omitempty"`
	PaymentReference     string               `json:"payment_reference,omitempty"`
	PaymentMethod        string               `json:"payment_method,omitempty"`
	CreatedAt            string               `json:"created_at"`
	Delivery             *DeliveryResponseDTO `json:"delivery,omitempty"`
}

// POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateTransactionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_email", "customer_email must be a valid email address")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a valid uuid")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	trx, err := h.service.CreateTransaction(ctx, service.CreateTransactionInput{
		CustomerEmail:      req.CustomerEmail,
		CustomerFirstName:  req.CustomerFirstName,
		CustomerLastName:   req.CustomerLastName,
		CustomerAddress:    req.CustomerAddress,
		CustomerDocumentID: req.CustomerDocumentID,
		CustomerCity:       req.CustomerCity,
		ProductID:          productID,
		Quantity:           req.Quantity,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, convertTransaction(trx, nil))
}

// POST /api/v1/transactions/{transaction_id}/payment
func (h *TransactionHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	transactionID, err := uuid.Parse(chi.URLParam(r, "transaction_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_transaction_id", "transaction_id must be a valid uuid")
		return
	}

	var req ProcessPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	installments := req.Installments
	if installments < 1 {
		installments = 1
	}

	log.Printf("payment requested transaction=%s request_id=%s", transactionID, getRequestID(r.Context()))

	trx, err := h.service.ProcessPayment(ctx, service.ProcessPaymentInput{
		TransactionID: transactionID,
		CardToken:     req.CardToken,
		CardHolder:    req.CardHolder,
		Installments:  installments,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertTransaction(trx, h.lookupDelivery(ctx, trx)))
}

// GET /api/v1/transactions/{transaction_id}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	transactionID, err := uuid.Parse(chi.URLParam(r, "transaction_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_transaction_id", "transaction_id must be a valid uuid")
		return
	}

	trx, err := h.service.GetTransaction(ctx, transactionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertTransaction(trx, h.lookupDelivery(ctx, trx)))
}

// lookupDelivery embeds the delivery for approved transactions; anything that
// never reached APPROVED has none and the field stays absent.
func (h *TransactionHandler) lookupDelivery(ctx context.Context, trx *domain.Transaction) *domain.Delivery {
	if !trx.IsApproved() {
		return nil
	}
	delivery, err := h.service.GetTransactionDelivery(ctx, trx.ID)
	if err != nil {
		// transaction is still a valid response without its delivery
		return nil
	}
	return delivery
}

func convertTransaction(trx *domain.Transaction, delivery *domain.Delivery) TransactionResponseDTO {
	dto := TransactionResponseDTO{
		ID:                   trx.ID.String(),
		TransactionNumber:    trx.TransactionNumber,
		Status:               trx.Status.String(),
		StatusMessage:        trx.StatusMessage,
		CustomerEmail:        trx.CustomerEmail,
		ProductID:            trx.ProductID.String(),
		Quantity:             trx.Quantity,
		ProductAmount:        trx.ProductAmount,
		BaseFee:              trx.BaseFee,
		DeliveryFee:          trx.DeliveryFee,
		TotalAmount:          trx.TotalAmount,
		PaymentTransactionID: trx.PaymentTransactionID,
		PaymentReference:     trx.PaymentReference,
		PaymentMethod:        trx.PaymentMethod,
		CreatedAt:            trx.CreatedAt.Format(time.RFC3339),
	}
	if delivery != nil {
		dto.Delivery = &DeliveryResponseDTO{
			ID:                    delivery.ID.String(),
			Status:                string(delivery.Status),
			Address:               delivery.Address,
			City:                  delivery.City,
			EstimatedDeliveryDate: delivery.EstimatedDeliveryDate.Format(time.RFC3339),
		}
	}
	return dto
}
