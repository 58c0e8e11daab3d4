package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/repository/common"
)

// ErrDuplicateReview возвращается при повторном отзыве той же стороны.
var ErrDuplicateReview = apperror.New(apperror.ErrCodeDuplicateReview, "отзыв по этой заявке уже оставлен")

// ReviewRepository отвечает за отзывы и агрегаты рейтинга мастеров.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository создаёт экземпляр репозитория.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create сохраняет отзыв. Уникальность (job_id, reviewer_role) обеспечивается
// ограничением БД; при отзыве заказчика той же транзакцией пересчитывается
// рейтинг мастера.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review, technicianID uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO reviews (job_id, reviewer_role, reviewer_id, rating, comment)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`
		err := tx.QueryRowxContext(
			ctx, query,
			review.JobID, review.ReviewerRole, review.ReviewerID, review.Rating, review.Comment,
		).Scan(&review.ID, &review.CreatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return ErrDuplicateReview
			}
			return fmt.Errorf("review repository: create %w", err)
		}

		if review.ReviewerRole == models.ReviewerRoleCustomer {
			if _, err := tx.ExecContext(ctx, `
				UPDATE technicians t
				SET rating = agg.avg_rating, review_count = agg.cnt
				FROM (
					SELECT COALESCE(AVG(rv.rating), 0) AS avg_rating, COUNT(*) AS cnt
					FROM reviews rv
					JOIN jobs j ON j.id = rv.job_id
					WHERE j.technician_id = $1 AND rv.reviewer_role = $2
				) agg
				WHERE t.id = $1
			`, technicianID, models.ReviewerRoleCustomer); err != nil {
				return fmt.Errorf("review repository: update rating %w", err)
			}
		}

		return nil
	})
}

// GetByID возвращает отзыв по идентификатору.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return common.GetByID[models.Review](ctx, r.db, "reviews", id,
		apperror.New(apperror.ErrCodeNotFound, "отзыв не найден"))
}

// ListByJob возвращает отзывы по заявке.
func (r *ReviewRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews WHERE job_id = $1 ORDER BY created_at
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("review repository: list by job %w", err)
	}
	return reviews, nil
}

// ListForTechnician возвращает отзывы заказчиков о мастере.
func (r *ReviewRepository) ListForTechnician(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT rv.* FROM reviews rv
		JOIN jobs j ON j.id = rv.job_id
		WHERE j.technician_id = $1 AND rv.reviewer_role = $2
		ORDER BY rv.created_at DESC LIMIT $3 OFFSET $4
	`, technicianID, models.ReviewerRoleCustomer, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("review repository: list for technician %w", err)
	}
	return reviews, nil
}
