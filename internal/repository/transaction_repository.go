package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/angeeelvega/payment-app-backend/internal/domain"
)

func (r *Repository) CreateTransaction(ctx context.Context, trx *domain.Transaction) error {
	query := `INSERT INTO transactions (
	              id, transaction_number,
	              customer_email, customer_first_name, customer_last_name,
	              customer_address, customer_document_id, customer_city,
	              product_id, quantity,
	              product_amount, base_fee, delivery_fee, total_amount,
	              status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())`

	_, err := r.db.ExecContext(ctx, query,
		trx.ID,
		trx.TransactionNumber,
		trx.CustomerEmail,
		trx.CustomerFirstName,
		trx.CustomerLastName,
		trx.CustomerAddress,
		trx.CustomerDocumentID,
		trx.CustomerCity,
		trx.ProductID,
		trx.Quantity,
		trx.ProductAmount,
		trx.BaseFee,
		trx.DeliveryFee,
		trx.TotalAmount,
		trx.Status)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *Repository) GetTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, transaction_number,
	                 customer_email, customer_first_name, customer_last_name,
	                 customer_address, customer_document_id, customer_city,
	                 product_id, quantity,
	                 product_amount, base_fee, delivery_fee, total_amount,
	                 status, payment_transaction_id, payment_reference, payment_method, status_message,
	                 created_at, updated_at
	          FROM transactions WHERE id = $1`

	var trx domain.Transaction
	var paymentTxID, paymentRef, paymentMethod, statusMessage sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&trx.ID,
		&trx.TransactionNumber,
		&trx.CustomerEmail,
		&trx.CustomerFirstName,
		&trx.CustomerLastName,
		&trx.CustomerAddress,
		&trx.CustomerDocumentID,
		&trx.CustomerCity,
		&trx.ProductID,
		&trx.Quantity,
		&trx.ProductAmount,
		&trx.BaseFee,
		&trx.DeliveryFee,
		&trx.TotalAmount,
		&trx.Status,
		&paymentTxID,
		&paymentRef,
		&paymentMethod,
		&statusMessage,
		&trx.CreatedAt,
		&trx.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query transaction by id: %w", err)
	}

	trx.PaymentTransactionID = paymentTxID.String
	trx.PaymentReference = paymentRef.String
	trx.PaymentMethod = paymentMethod.String
	trx.StatusMessage = statusMessage.String
	return &trx, nil
}

// FinalizeApproval commits the whole approval in one storage transaction:
// the PENDING->APPROVED conditional update, the stock decrement, the delivery
// row and the outbox event. A crash can no longer leave an approved
// transaction without its inventory adjustment.
func (r *Repository) FinalizeApproval(ctx context.Context, trx *domain.Transaction, delivery *domain.Delivery, event *OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approval tx: %w", err)
	}
	defer tx.Rollback()

	if err := updateTerminalStatus(ctx, tx, trx); err != nil {
		return err
	}

	if err := decrementStock(ctx, tx, trx.ProductID, trx.Quantity); err != nil {
		return err
	}

	if err := insertDelivery(ctx, tx, delivery); err != nil {
		return err
	}

	if event != nil {
		if err := insertOutboxEvent(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approval tx: %w", err)
	}
	return nil
}

// FinalizeFailure persists a DECLINED or ERROR terminal state, again guarded
// by the PENDING condition so concurrent attempts cannot double-finalize.
func (r *Repository) FinalizeFailure(ctx context.Context, trx *domain.Transaction, event *OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin failure tx: %w", err)
	}
	defer tx.Rollback()

	if err := updateTerminalStatus(ctx, tx, trx); err != nil {
		return err
	}

	if event != nil {
		if err := insertOutboxEvent(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failure tx: %w", err)
	}
	return nil
}

// updateTerminalStatus is the compare-and-swap on status: it only writes when
// the row is still PENDING and reports ErrTransactionNotPending otherwise.
func updateTerminalStatus(ctx context.Context, tx *sql.Tx, trx *domain.Transaction) error {
	query := `UPDATE transactions
	          SET status = $2,
	              payment_transaction_id = NULLIF($3, ''),
	              payment_reference = NULLIF($4, ''),
	              payment_method = NULLIF($5, ''),
	              status_message = NULLIF($6, ''),
	              updated_at = NOW()
	          WHERE id = $1 AND status = 'PENDING'`

	res, err := tx.ExecContext(ctx, query,
		trx.ID,
		trx.Status,
		trx.PaymentTransactionID,
		trx.PaymentReference,
		trx.PaymentMethod,
		trx.StatusMessage)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction status rows: %w", err)
	}
	if rows == 0 {
		return ErrTransactionNotPending
	}
	return nil
}

// decrementStock applies the stock adjustment with a guard that keeps stock
// non-negative. A missing product or insufficient stock does not abort the
// approval: the charge is already captured, so the gap is logged and the
// rest of the finalization proceeds.
func decrementStock(ctx context.Context, tx *sql.Tx, productID uuid.UUID, quantity int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`,
		productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock rows: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
			return fmt.Errorf("check product existence: %w", err)
		}
		if !exists {
			log.Printf("product not found for stock update: %s", productID)
		} else {
			log.Printf("insufficient stock for product %s, stock left unchanged (quantity %d)", productID, quantity)
		}
	}
	return nil
}
