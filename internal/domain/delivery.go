package domain

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusInTransit DeliveryStatus = "IN_TRANSIT"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusCancelled DeliveryStatus = "CANCELLED"
)

// Delivery is created once per approved transaction (1:1 on TransactionID).
type Delivery struct {
	ID                    uuid.UUID
	TransactionID         uuid.UUID
	CustomerEmail         string
	CustomerDocumentID    string
	ProductID             uuid.UUID
	Quantity              int
	Address               string
	City                  string
	Status                DeliveryStatus
	EstimatedDeliveryDate time.Time
	DeliveredAt           time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (d *Delivery) MarkInTransit() {
	d.Status = DeliveryStatusInTransit
}

func (d *Delivery) MarkDelivered() {
	d.Status = DeliveryStatusDelivered
	d.DeliveredAt = time.Now()
}

func (d *Delivery) Cancel() {
	d.Status = DeliveryStatusCancelled
}
