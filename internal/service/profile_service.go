package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/validation"
)

// ProfileAddressRepository описывает работу с адресами заказчика.
type ProfileAddressRepository interface {
	Create(ctx context.Context, addr *models.CustomerAddress) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerAddress, error)
	SetDefault(ctx context.Context, customerID, addressID uuid.UUID) error
	Delete(ctx context.Context, customerID, addressID uuid.UUID) error
}

// ProfileCatalogRepository управляет навыками мастера.
type ProfileCatalogRepository interface {
	SetTechnicianSkills(ctx context.Context, technicianID uuid.UUID, categoryIDs []uuid.UUID) error
	ListTechnicianSkills(ctx context.Context, technicianID uuid.UUID) ([]models.Category, error)
}

// ProfileUserRepository выдаёт профили участников.
type ProfileUserRepository interface {
	GetTechnician(ctx context.Context, id uuid.UUID) (*models.Technician, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	AssignTechnicianToCompany(ctx context.Context, companyID, technicianID uuid.UUID) error
	ListCompanyTechnicians(ctx context.Context, companyID uuid.UUID) ([]models.Technician, error)
}

// SaveAddressInput содержит данные адреса.
type SaveAddressInput struct {
	Label     string
	City      string
	District  string
	Street    string
	Details   string
	Latitude  *float64
	Longitude *float64
	IsDefault bool
}

// ProfileService отвечает за адреса заказчиков и навыки мастеров.
type ProfileService struct {
	addresses ProfileAddressRepository
	catalog   ProfileCatalogRepository
	users     ProfileUserRepository
}

// NewProfileService создаёт сервис профилей.
func NewProfileService(addresses ProfileAddressRepository, catalog ProfileCatalogRepository, users ProfileUserRepository) *ProfileService {
	return &ProfileService{addresses: addresses, catalog: catalog, users: users}
}

// SaveAddress добавляет адрес заказчика. Первый адрес становится адресом
// по умолчанию; пометка IsDefault переназначает умолчание.
func (s *ProfileService) SaveAddress(ctx context.Context, principal *models.Principal, in SaveAddressInput) (*models.CustomerAddress, error) {
	if principal.Role != models.RoleCustomer {
		return nil, apperror.ErrForbidden
	}
	if strings.TrimSpace(in.City) == "" || strings.TrimSpace(in.Street) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "город и улица обязательны")
	}
	for _, field := range []string{in.Label, in.City, in.District, in.Street, in.Details} {
		if err := validation.ValidateLength("поле адреса", field, 0, validation.MaxAddressFieldLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	addr := &models.CustomerAddress{
		CustomerID: principal.ProfileID,
		Label:      strings.TrimSpace(in.Label),
		City:       strings.TrimSpace(in.City),
		District:   strings.TrimSpace(in.District),
		Street:     strings.TrimSpace(in.Street),
		Details:    strings.TrimSpace(in.Details),
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		IsDefault:  in.IsDefault,
	}
	if err := s.addresses.Create(ctx, addr); err != nil {
		return nil, err
	}
	return addr, nil
}

// ListAddresses возвращает адреса заказчика.
func (s *ProfileService) ListAddresses(ctx context.Context, principal *models.Principal) ([]models.CustomerAddress, error) {
	if principal.Role != models.RoleCustomer {
		return nil, apperror.ErrForbidden
	}
	return s.addresses.ListByCustomer(ctx, principal.ProfileID)
}

// SetDefaultAddress переназначает адрес по умолчанию.
func (s *ProfileService) SetDefaultAddress(ctx context.Context, principal *models.Principal, addressID uuid.UUID) error {
	if principal.Role != models.RoleCustomer {
		return apperror.ErrForbidden
	}
	return s.addresses.SetDefault(ctx, principal.ProfileID, addressID)
}

// DeleteAddress удаляет адрес заказчика.
func (s *ProfileService) DeleteAddress(ctx context.Context, principal *models.Principal, addressID uuid.UUID) error {
	if principal.Role != models.RoleCustomer {
		return apperror.ErrForbidden
	}
	return s.addresses.Delete(ctx, principal.ProfileID, addressID)
}

// SetSkills заменяет категории мастера.
func (s *ProfileService) SetSkills(ctx context.Context, principal *models.Principal, categoryIDs []uuid.UUID) error {
	if principal.Role != models.RoleTechnician {
		return apperror.ErrForbidden
	}
	return s.catalog.SetTechnicianSkills(ctx, principal.ProfileID, categoryIDs)
}

// AddCompanyTechnician прикрепляет мастера к компании текущего пользователя.
func (s *ProfileService) AddCompanyTechnician(ctx context.Context, principal *models.Principal, technicianID uuid.UUID) error {
	if principal.Role != models.RoleCompany {
		return apperror.ErrForbidden
	}
	return s.users.AssignTechnicianToCompany(ctx, principal.ProfileID, technicianID)
}

// ListCompanyTechnicians возвращает мастеров компании текущего пользователя.
func (s *ProfileService) ListCompanyTechnicians(ctx context.Context, principal *models.Principal) ([]models.Technician, error) {
	if principal.Role != models.RoleCompany {
		return nil, apperror.ErrForbidden
	}
	return s.users.ListCompanyTechnicians(ctx, principal.ProfileID)
}

// GetTechnicianProfile возвращает публичный профиль мастера с категориями.
func (s *ProfileService) GetTechnicianProfile(ctx context.Context, technicianID uuid.UUID) (*models.Technician, []models.Category, error) {
	technician, err := s.users.GetTechnician(ctx, technicianID)
	if err != nil {
		return nil, nil, err
	}
	skills, err := s.catalog.ListTechnicianSkills(ctx, technicianID)
	if err != nil {
		return nil, nil, err
	}
	return technician, skills, nil
}
