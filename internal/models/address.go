package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerAddress — адрес заказчика. Адрес по умолчанию подставляется
// в новые заявки, если адрес не указан явно.
type CustomerAddress struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CustomerID uuid.UUID `db:"customer_id" json:"customer_id"`
	Label      string    `db:"label" json:"label"`
	City       string    `db:"city" json:"city"`
	District   string    `db:"district" json:"district"`
	Street     string    `db:"street" json:"street"`
	Details    string    `db:"details" json:"details"`
	Latitude   *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude  *float64  `db:"longitude" json:"longitude,omitempty"`
	IsDefault  bool      `db:"is_default" json:"is_default"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
