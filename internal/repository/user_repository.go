package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/repository/common"
)

// UserRepository отвечает за работу с таблицами users, customers,
// technicians, companies и refresh_tokens.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт пользователя и доменный профиль по его роли в одной
// транзакции. Возвращает идентификатор созданного профиля.
func (r *UserRepository) Create(ctx context.Context, user *models.User, companyName string) (uuid.UUID, error) {
	var profileID uuid.UUID

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO users (email, password_hash, role, full_name, phone, is_active)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, query,
			user.Email, user.PasswordHash, user.Role, user.FullName, user.Phone,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return apperror.New(apperror.ErrCodeConflict, "пользователь с таким email уже существует")
			}
			return fmt.Errorf("user repository: create user %w", err)
		}

		var profileQuery string
		args := []interface{}{user.ID}
		switch user.Role {
		case models.RoleCustomer:
			profileQuery = `INSERT INTO customers (user_id) VALUES ($1) RETURNING id`
		case models.RoleTechnician:
			profileQuery = `INSERT INTO technicians (user_id) VALUES ($1) RETURNING id`
		case models.RoleCompany:
			profileQuery = `INSERT INTO companies (user_id, name) VALUES ($1, $2) RETURNING id`
			args = append(args, companyName)
		default:
			return apperror.New(apperror.ErrCodeValidation, "неизвестная роль пользователя")
		}

		if err := tx.QueryRowxContext(ctx, profileQuery, args...).Scan(&profileID); err != nil {
			return fmt.Errorf("user repository: create profile %w", err)
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return profileID, nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", "email", email, apperror.ErrUserNotFound)
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetByID[models.User](ctx, r.db, "users", id, apperror.ErrUserNotFound)
}

// ResolvePrincipal связывает учётную запись с её доменным профилем.
func (r *UserRepository) ResolvePrincipal(ctx context.Context, userID uuid.UUID) (*models.Principal, error) {
	var row struct {
		Role      string    `db:"role"`
		ProfileID uuid.UUID `db:"profile_id"`
	}
	query := `
		SELECT u.role,
		       COALESCE(c.id, t.id, co.id, u.id) AS profile_id
		FROM users u
		LEFT JOIN customers c ON c.user_id = u.id
		LEFT JOIN technicians t ON t.user_id = u.id
		LEFT JOIN companies co ON co.user_id = u.id
		WHERE u.id = $1 AND u.is_active
	`
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: resolve principal %w", err)
	}

	return &models.Principal{UserID: userID, Role: row.Role, ProfileID: row.ProfileID}, nil
}

// GetTechnician возвращает профиль мастера.
func (r *UserRepository) GetTechnician(ctx context.Context, id uuid.UUID) (*models.Technician, error) {
	return common.GetByID[models.Technician](ctx, r.db, "technicians", id, apperror.ErrUserNotFound)
}

// GetCustomer возвращает профиль заказчика.
func (r *UserRepository) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return common.GetByID[models.Customer](ctx, r.db, "customers", id, apperror.ErrUserNotFound)
}

// AssignTechnicianToCompany прикрепляет мастера к компании. Мастер,
// уже состоящий в компании, повторно не прикрепляется.
func (r *UserRepository) AssignTechnicianToCompany(ctx context.Context, companyID, technicianID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE technicians SET company_id = $1
		WHERE id = $2 AND company_id IS NULL
	`, companyID, technicianID)
	if err != nil {
		return fmt.Errorf("user repository: assign technician %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: assign technician %w", err)
	}
	if affected == 0 {
		if _, err := r.GetTechnician(ctx, technicianID); err != nil {
			return err
		}
		return apperror.New(apperror.ErrCodeInvalidState, "мастер уже состоит в компании")
	}
	return nil
}

// ListCompanyTechnicians возвращает мастеров компании.
func (r *UserRepository) ListCompanyTechnicians(ctx context.Context, companyID uuid.UUID) ([]models.Technician, error) {
	var technicians []models.Technician
	err := r.db.SelectContext(ctx, &technicians, `
		SELECT * FROM technicians WHERE company_id = $1 ORDER BY created_at
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("user repository: list company technicians %w", err)
	}
	return technicians, nil
}

// CreateRefreshToken сохраняет хэш refresh токена.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("user repository: create refresh token %w", err)
	}
	return nil
}

// ConsumeRefreshToken удаляет refresh токен и возвращает владельца.
// Просроченные токены считаются отсутствующими.
func (r *UserRepository) ConsumeRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := r.db.GetContext(ctx, &userID, `
		DELETE FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
		RETURNING user_id
	`, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, apperror.ErrUnauthorized
		}
		return uuid.Nil, fmt.Errorf("user repository: consume refresh token %w", err)
	}
	return userID, nil
}

// DeleteRefreshTokens удаляет все refresh токены пользователя (logout).
func (r *UserRepository) DeleteRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: delete refresh tokens %w", err)
	}
	return nil
}
