package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/repository/common"
)

// JobRepository отвечает за заявки и их фотографии.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository создаёт экземпляр репозитория.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create создаёт заявку в статусе waiting_for_offers.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (customer_id, category_id, address_id, title, description, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, status, created_at, updated_at
	`
	if job.Status == "" {
		job.Status = models.JobStatusWaitingForOffers
	}
	if err := r.db.QueryRowxContext(
		ctx, query,
		job.CustomerID, job.CategoryID, job.AddressID, job.Title, job.Description, job.ScheduledAt, job.Status,
	).Scan(&job.ID, &job.Status, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return fmt.Errorf("job repository: create %w", err)
	}
	return nil
}

// GetByID возвращает заявку по идентификатору.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return common.GetByID[models.Job](ctx, r.db, "jobs", id, apperror.ErrJobNotFound)
}

// ListByCustomer возвращает заявки заказчика, последние первыми.
func (r *JobRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.SelectContext(ctx, &jobs, `
		SELECT * FROM jobs WHERE customer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("job repository: list by customer %w", err)
	}
	return jobs, nil
}

// ListByTechnician возвращает заявки, назначенные мастеру.
func (r *JobRepository) ListByTechnician(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.SelectContext(ctx, &jobs, `
		SELECT * FROM jobs WHERE technician_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, technicianID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("job repository: list by technician %w", err)
	}
	return jobs, nil
}

// ListOpen возвращает открытые заявки, опционально по категории.
// Открытыми считаются заявки, принимающие предложения мастеров.
func (r *JobRepository) ListOpen(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]models.Job, error) {
	var jobs []models.Job
	query := `
		SELECT * FROM jobs
		WHERE status IN ('waiting_for_offers', 'pending')
		  AND ($1::uuid IS NULL OR category_id = $1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	err := r.db.SelectContext(ctx, &jobs, query, categoryID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("job repository: list open %w", err)
	}
	return jobs, nil
}

// ListOpenForTechnician возвращает открытые заявки, подходящие мастеру
// по его категориям услуг.
func (r *JobRepository) ListOpenForTechnician(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.Job, error) {
	var jobs []models.Job
	query := `
		SELECT j.* FROM jobs j
		JOIN technician_skills ts ON ts.category_id = j.category_id
		WHERE j.status IN ('waiting_for_offers', 'pending')
		  AND ts.technician_id = $1
		ORDER BY j.created_at DESC LIMIT $2 OFFSET $3
	`
	err := r.db.SelectContext(ctx, &jobs, query, technicianID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("job repository: list open for technician %w", err)
	}
	return jobs, nil
}

// MarkPending переводит заявку из waiting_for_offers в pending.
// Перевод выполняется условным UPDATE, чтобы не затереть чужой статус.
func (r *JobRepository) MarkPending(ctx context.Context, jobID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, jobID, models.JobStatusPending, models.JobStatusWaitingForOffers)
	if err != nil {
		return fmt.Errorf("job repository: mark pending %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperror.New(apperror.ErrCodeInvalidState, "заявка не принимает перевод в pending")
	}
	return nil
}

// AddPhoto сохраняет запись о фотографии заявки.
func (r *JobRepository) AddPhoto(ctx context.Context, photo *models.JobPhoto) error {
	query := `
		INSERT INTO job_photos (job_id, file_path, is_before)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query, photo.JobID, photo.FilePath, photo.IsBefore,
	).Scan(&photo.ID, &photo.CreatedAt); err != nil {
		return fmt.Errorf("job repository: add photo %w", err)
	}
	return nil
}

// ListPhotos возвращает фотографии заявки.
func (r *JobRepository) ListPhotos(ctx context.Context, jobID uuid.UUID) ([]models.JobPhoto, error) {
	var photos []models.JobPhoto
	err := r.db.SelectContext(ctx, &photos, `
		SELECT * FROM job_photos WHERE job_id = $1 ORDER BY created_at
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("job repository: list photos %w", err)
	}
	return photos, nil
}

// CountPhotos возвращает количество фотографий заявки.
func (r *JobRepository) CountPhotos(ctx context.Context, jobID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM job_photos WHERE job_id = $1`, jobID); err != nil {
		return 0, fmt.Errorf("job repository: count photos %w", err)
	}
	return count, nil
}
