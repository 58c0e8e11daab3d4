package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей.
const (
	RoleCustomer   = "customer"
	RoleTechnician = "technician"
	RoleCompany    = "company"
	RoleAdmin      = "admin"
)

// User описывает учётную запись пользователя.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	FullName     string    `db:"full_name" json:"full_name"`
	Phone        string    `db:"phone" json:"phone"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Customer — профиль заказчика.
type Customer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Technician — профиль мастера. Мастер может состоять в компании.
type Technician struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	CompanyID   *uuid.UUID `db:"company_id" json:"company_id,omitempty"`
	Bio         string     `db:"bio" json:"bio"`
	Rating      float64    `db:"rating" json:"rating"`
	ReviewCount int        `db:"review_count" json:"review_count"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Company — профиль сервисной компании.
type Company struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Principal связывает учётную запись с доменным профилем по роли.
// ProfileID указывает на customers/technicians/companies в зависимости от Role.
type Principal struct {
	UserID    uuid.UUID
	Role      string
	ProfileID uuid.UUID
}
