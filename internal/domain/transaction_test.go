package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newPendingTransaction() *Transaction {
	return &Transaction{
		ID:                uuid.New(),
		TransactionNumber: "TRX-1700000000000-0042",
		ProductID:         uuid.New(),
		Quantity:          2,
		ProductAmount:     200000,
		BaseFee:           1000,
		DeliveryFee:       5000,
		TotalAmount:       206000,
		Status:            TransactionStatusPending,
	}
}

func TestApprove(t *testing.T) {
	trx := newPendingTransaction()

	trx.Approve("gw-123", "REF-456")

	assert.Equal(t, TransactionStatusApproved, trx.Status)
	assert.Equal(t, "gw-123", trx.PaymentTransactionID)
	assert.Equal(t, "REF-456", trx.PaymentReference)
	assert.Equal(t, "Payment approved successfully", trx.StatusMessage)
	assert.True(t, trx.IsApproved())
	assert.False(t, trx.IsPending())
}

func TestDecline(t *testing.T) {
	trx := newPendingTransaction()

	trx.Decline("Insufficient funds")

	assert.Equal(t, TransactionStatusDeclined, trx.Status)
	assert.Equal(t, "Insufficient funds", trx.StatusMessage)
	assert.False(t, trx.IsPending())
}

func TestMarkError(t *testing.T) {
	trx := newPendingTransaction()

	trx.MarkError("Invalid card token format")

	assert.Equal(t, TransactionStatusError, trx.Status)
	assert.Equal(t, "Invalid card token format", trx.StatusMessage)
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, TransactionStatusPending.IsTerminal())
	assert.True(t, TransactionStatusApproved.IsTerminal())
	assert.True(t, TransactionStatusDeclined.IsTerminal())
	assert.True(t, TransactionStatusError.IsTerminal())
}
