package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/repository/common"
)

// ErrAddressNotFound возвращается, когда адрес не найден.
var ErrAddressNotFound = apperror.New(apperror.ErrCodeNotFound, "адрес не найден")

// AddressRepository отвечает за адреса заказчиков.
type AddressRepository struct {
	db *sqlx.DB
}

// NewAddressRepository создаёт экземпляр репозитория.
func NewAddressRepository(db *sqlx.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// Create добавляет адрес. Первый адрес заказчика автоматически становится
// адресом по умолчанию.
func (r *AddressRepository) Create(ctx context.Context, addr *models.CustomerAddress) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if addr.IsDefault {
			if _, err := tx.ExecContext(ctx, `
				UPDATE customer_addresses SET is_default = FALSE
				WHERE customer_id = $1 AND is_default
			`, addr.CustomerID); err != nil {
				return fmt.Errorf("address repository: reset default %w", err)
			}
		} else {
			var count int
			if err := tx.GetContext(ctx, &count,
				`SELECT COUNT(*) FROM customer_addresses WHERE customer_id = $1`, addr.CustomerID); err != nil {
				return fmt.Errorf("address repository: count %w", err)
			}
			addr.IsDefault = count == 0
		}

		query := `
			INSERT INTO customer_addresses (customer_id, label, city, district, street, details, latitude, longitude, is_default)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at
		`
		if err := tx.QueryRowxContext(
			ctx, query,
			addr.CustomerID, addr.Label, addr.City, addr.District, addr.Street, addr.Details,
			addr.Latitude, addr.Longitude, addr.IsDefault,
		).Scan(&addr.ID, &addr.CreatedAt); err != nil {
			return fmt.Errorf("address repository: create %w", err)
		}

		return nil
	})
}

// GetByID возвращает адрес по идентификатору.
func (r *AddressRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CustomerAddress, error) {
	return common.GetByID[models.CustomerAddress](ctx, r.db, "customer_addresses", id, ErrAddressNotFound)
}

// GetDefault возвращает адрес заказчика по умолчанию.
func (r *AddressRepository) GetDefault(ctx context.Context, customerID uuid.UUID) (*models.CustomerAddress, error) {
	var addr models.CustomerAddress
	err := r.db.GetContext(ctx, &addr, `
		SELECT * FROM customer_addresses WHERE customer_id = $1 AND is_default
	`, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrNoDefaultAddress
		}
		return nil, fmt.Errorf("address repository: get default %w", err)
	}
	return &addr, nil
}

// ListByCustomer возвращает адреса заказчика.
func (r *AddressRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerAddress, error) {
	var addrs []models.CustomerAddress
	err := r.db.SelectContext(ctx, &addrs, `
		SELECT * FROM customer_addresses
		WHERE customer_id = $1
		ORDER BY is_default DESC, created_at DESC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("address repository: list %w", err)
	}
	return addrs, nil
}

// SetDefault делает адрес адресом по умолчанию.
func (r *AddressRepository) SetDefault(ctx context.Context, customerID, addressID uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE customer_addresses SET is_default = FALSE
			WHERE customer_id = $1 AND is_default
		`, customerID); err != nil {
			return fmt.Errorf("address repository: reset default %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE customer_addresses SET is_default = TRUE
			WHERE id = $1 AND customer_id = $2
		`, addressID, customerID)
		if err != nil {
			return fmt.Errorf("address repository: set default %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return ErrAddressNotFound
		}

		return nil
	})
}

// Delete удаляет адрес заказчика.
func (r *AddressRepository) Delete(ctx context.Context, customerID, addressID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM customer_addresses WHERE id = $1 AND customer_id = $2
	`, addressID, customerID)
	if err != nil {
		return fmt.Errorf("address repository: delete %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrAddressNotFound
	}
	return nil
}
