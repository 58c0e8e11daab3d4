package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы заявки. Открытые статусы (waiting_for_offers, pending) принимают
// предложения мастеров; отменить можно только заявку в статусе pending.
const (
	JobStatusWaitingForOffers = "waiting_for_offers"
	JobStatusPending          = "pending"
	JobStatusAssigned         = "assigned"
	JobStatusCompleted        = "completed"
	JobStatusCancelled        = "cancelled"
)

// Job — заявка заказчика на выполнение бытовой услуги.
// FinalPrice заполняется при принятии предложения (в минорных единицах валюты).
type Job struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	CustomerID   uuid.UUID  `db:"customer_id" json:"customer_id"`
	CategoryID   uuid.UUID  `db:"category_id" json:"category_id"`
	AddressID    uuid.UUID  `db:"address_id" json:"address_id"`
	TechnicianID *uuid.UUID `db:"technician_id" json:"technician_id,omitempty"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description"`
	Status       string     `db:"status" json:"status"`
	ScheduledAt  *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	FinalPrice   *int64     `db:"final_price" json:"final_price,omitempty"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt  *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	Photos       []JobPhoto `json:"photos,omitempty"`
}

// IsOpen сообщает, принимает ли заявка предложения мастеров.
func (j *Job) IsOpen() bool {
	return j.Status == JobStatusWaitingForOffers || j.Status == JobStatusPending
}

// JobPhoto — фотография к заявке (до или после выполнения работ).
type JobPhoto struct {
	ID        uuid.UUID `db:"id" json:"id"`
	JobID     uuid.UUID `db:"job_id" json:"job_id"`
	FilePath  string    `db:"file_path" json:"file_path"`
	IsBefore  bool      `db:"is_before" json:"is_before"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
