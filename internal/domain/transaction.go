package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "PENDING"
	TransactionStatusApproved TransactionStatus = "APPROVED"
	TransactionStatusDeclined TransactionStatus = "DECLINED"
	TransactionStatusError    TransactionStatus = "ERROR"
)

func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusApproved || s == TransactionStatusDeclined || s == TransactionStatusError
}

// String representation (for logging)
func (s TransactionStatus) String() string {
	return string(s)
}

// Transaction is the record of one purchase attempt, from creation through
// payment resolution. Customer fields are a point-in-time snapshot, not a
// live reference.
type Transaction struct {
	ID                 uuid.UUID
	TransactionNumber  string
	CustomerEmail      string
	CustomerFirstName  string
	CustomerLastName   string
	CustomerAddress    string
	CustomerDocumentID string
	CustomerCity       string
	ProductID          uuid.UUID
	Quantity           int
	ProductAmount      float64
	BaseFee            float64
	DeliveryFee        float64
	TotalAmount        float64

	Status               TransactionStatus
	PaymentTransactionID string
	PaymentReference     string
	PaymentMethod        string
	StatusMessage        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Approve, Decline and MarkError are the only mutators of Status. They are
// called by the payment service; the terminal state is persisted with a
// conditional update so a concurrent attempt cannot overwrite it.

func (t *Transaction) Approve(paymentTransactionID, paymentReference string) {
	t.Status = TransactionStatusApproved
	t.PaymentTransactionID = paymentTransactionID
	t.PaymentReference = paymentReference
	t.StatusMessage = "Payment approved successfully"
}

func (t *Transaction) Decline(reason string) {
	t.Status = TransactionStatusDeclined
	t.StatusMessage = reason
}

func (t *Transaction) MarkError(message string) {
	t.Status = TransactionStatusError
	t.StatusMessage = message
}

func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

func (t *Transaction) IsApproved() bool {
	return t.Status == TransactionStatusApproved
}
