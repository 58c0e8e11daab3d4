package models

import (
	"time"

	"github.com/google/uuid"
)

// Category — категория бытовых услуг (сантехника, электрика и т.д.).
type Category struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TechnicianSkill связывает мастера с категорией, в которой он работает.
type TechnicianSkill struct {
	TechnicianID uuid.UUID `db:"technician_id" json:"technician_id"`
	CategoryID   uuid.UUID `db:"category_id" json:"category_id"`
}
