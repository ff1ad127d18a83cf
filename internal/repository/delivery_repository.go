package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angeeelvega/payment-app-backend/internal/domain"
)

func insertDelivery(ctx context.Context, tx *sql.Tx, d *domain.Delivery) error {
	query := `INSERT INTO deliveries (
	              id, transaction_id, customer_email, customer_document_id,
	              product_id, quantity, address, city, status,
	              estimated_delivery_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`

	_, err := tx.ExecContext(ctx, query,
		d.ID,
		d.TransactionID,
		d.CustomerEmail,
		d.CustomerDocumentID,
		d.ProductID,
		d.Quantity,
		d.Address,
		d.City,
		d.Status,
		d.EstimatedDeliveryDate)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func (r *Repository) GetDeliveryByTransactionID(ctx context.Context, transactionID uuid.UUID) (*domain.Delivery, error) {
	query := `SELECT id, transaction_id, customer_email, customer_document_id,
	                 product_id, quantity, address, city, status,
	                 estimated_delivery_date, delivered_at, created_at, updated_at
	          FROM deliveries WHERE transaction_id = $1`

	var d domain.Delivery
	var estimated, delivered sql.NullTime
	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&d.ID,
		&d.TransactionID,
		&d.CustomerEmail,
		&d.CustomerDocumentID,
		&d.ProductID,
		&d.Quantity,
		&d.Address,
		&d.City,
		&d.Status,
		&estimated,
		&delivered,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeliveryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query delivery by transaction id: %w", err)
	}

	d.EstimatedDeliveryDate = estimated.Time
	d.DeliveredAt = delivered.Time
	return &d, nil
}
