package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы ценового предложения.
const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusRejected = "rejected"
)

// PriceOffer — ценовое предложение мастера по заявке.
// Amount задаётся в минорных единицах валюты. Мастер подаёт по заявке
// не более одного предложения.
type PriceOffer struct {
	ID           uuid.UUID `db:"id" json:"id"`
	JobID        uuid.UUID `db:"job_id" json:"job_id"`
	TechnicianID uuid.UUID `db:"technician_id" json:"technician_id"`
	Amount       int64     `db:"amount" json:"amount"`
	Message      string    `db:"message" json:"message"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
