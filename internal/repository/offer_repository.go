package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/repository/common"
)

// ErrDuplicateOffer возвращается при повторном предложении мастера по заявке.
var ErrDuplicateOffer = apperror.New(apperror.ErrCodeDuplicateOffer, "предложение по этой заявке уже отправлено")

// OfferRepository отвечает за ценовые предложения мастеров.
type OfferRepository struct {
	db *sqlx.DB
}

// NewOfferRepository создаёт экземпляр репозитория.
func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// Create сохраняет новое предложение мастера по заявке. Мастер подаёт по
// заявке только одно предложение: уникальность (job_id, technician_id)
// обеспечивается ограничением БД, повтор отклоняется как ErrDuplicateOffer.
// Заявка блокируется разделяемой блокировкой, чтобы статус не сменился
// параллельным принятием или отменой.
func (r *OfferRepository) Create(ctx context.Context, offer *models.PriceOffer) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var job models.Job
		err := tx.GetContext(ctx, &job, `SELECT * FROM jobs WHERE id = $1 FOR SHARE`, offer.JobID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrJobNotFound
			}
			return fmt.Errorf("offer repository: lock job %w", err)
		}
		if !job.IsOpen() {
			return apperror.New(apperror.ErrCodeInvalidState, "заявка не принимает предложения")
		}

		query := `
			INSERT INTO price_offers (job_id, technician_id, amount, message, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, status, created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, query,
			offer.JobID, offer.TechnicianID, offer.Amount, offer.Message, models.OfferStatusPending,
		).Scan(&offer.ID, &offer.Status, &offer.CreatedAt, &offer.UpdatedAt); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return ErrDuplicateOffer
			}
			return fmt.Errorf("offer repository: create %w", err)
		}

		return nil
	})
}

// GetByID возвращает предложение по идентификатору.
func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PriceOffer, error) {
	return common.GetByID[models.PriceOffer](ctx, r.db, "price_offers", id, apperror.ErrOfferNotFound)
}

// ListByJob возвращает предложения по заявке, последние первыми.
func (r *OfferRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.PriceOffer, error) {
	var offers []models.PriceOffer
	err := r.db.SelectContext(ctx, &offers, `
		SELECT * FROM price_offers WHERE job_id = $1 ORDER BY created_at DESC
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("offer repository: list by job %w", err)
	}
	return offers, nil
}

// ListByTechnician возвращает предложения мастера.
func (r *OfferRepository) ListByTechnician(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.PriceOffer, error) {
	var offers []models.PriceOffer
	err := r.db.SelectContext(ctx, &offers, `
		SELECT * FROM price_offers WHERE technician_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, technicianID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("offer repository: list by technician %w", err)
	}
	return offers, nil
}
