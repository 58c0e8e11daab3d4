package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли авторов отзыва. По одной заявке допускается не более одного отзыва
// с каждой стороны.
const (
	ReviewerRoleCustomer   = "customer"
	ReviewerRoleTechnician = "technician"
)

// Review — отзыв по завершённой заявке с оценкой от 1 до 5.
type Review struct {
	ID           uuid.UUID `db:"id" json:"id"`
	JobID        uuid.UUID `db:"job_id" json:"job_id"`
	ReviewerRole string    `db:"reviewer_role" json:"reviewer_role"`
	ReviewerID   uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	Rating       int       `db:"rating" json:"rating"`
	Comment      string    `db:"comment" json:"comment"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
