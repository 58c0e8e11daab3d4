package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/repository/common"
)

// ErrCategoryNotFound возвращается, когда категория не найдена.
var ErrCategoryNotFound = apperror.New(apperror.ErrCodeNotFound, "категория не найдена")

// CatalogRepository отвечает за каталог категорий и навыки мастеров.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository создаёт экземпляр репозитория.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCategories возвращает активные категории.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.SelectContext(ctx, &categories, `
		SELECT * FROM categories WHERE is_active ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list categories %w", err)
	}
	return categories, nil
}

// GetCategory возвращает категорию по идентификатору.
func (r *CatalogRepository) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return common.GetByID[models.Category](ctx, r.db, "categories", id, ErrCategoryNotFound)
}

// SetTechnicianSkills заменяет набор категорий мастера.
func (r *CatalogRepository) SetTechnicianSkills(ctx context.Context, technicianID uuid.UUID, categoryIDs []uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM technician_skills WHERE technician_id = $1`, technicianID); err != nil {
			return fmt.Errorf("catalog repository: clear skills %w", err)
		}

		if len(categoryIDs) == 0 {
			return nil
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO technician_skills (technician_id, category_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING
		`, technicianID, pq.Array(categoryIDs))
		if err != nil {
			return fmt.Errorf("catalog repository: set skills %w", err)
		}

		return nil
	})
}

// ListTechnicianSkills возвращает категории мастера.
func (r *CatalogRepository) ListTechnicianSkills(ctx context.Context, technicianID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.SelectContext(ctx, &categories, `
		SELECT c.* FROM categories c
		JOIN technician_skills s ON s.category_id = c.id
		WHERE s.technician_id = $1 AND c.is_active
		ORDER BY c.name
	`, technicianID)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list skills %w", err)
	}
	return categories, nil
}
