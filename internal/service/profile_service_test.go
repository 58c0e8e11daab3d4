package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
)

type mockProfileAddresses struct {
	mock.Mock
}

func (m *mockProfileAddresses) Create(ctx context.Context, addr *models.CustomerAddress) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}

func (m *mockProfileAddresses) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerAddress, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]models.CustomerAddress), args.Error(1)
}

func (m *mockProfileAddresses) SetDefault(ctx context.Context, customerID, addressID uuid.UUID) error {
	args := m.Called(ctx, customerID, addressID)
	return args.Error(0)
}

func (m *mockProfileAddresses) Delete(ctx context.Context, customerID, addressID uuid.UUID) error {
	args := m.Called(ctx, customerID, addressID)
	return args.Error(0)
}

type mockProfileCatalog struct {
	mock.Mock
}

func (m *mockProfileCatalog) SetTechnicianSkills(ctx context.Context, technicianID uuid.UUID, categoryIDs []uuid.UUID) error {
	args := m.Called(ctx, technicianID, categoryIDs)
	return args.Error(0)
}

func (m *mockProfileCatalog) ListTechnicianSkills(ctx context.Context, technicianID uuid.UUID) ([]models.Category, error) {
	args := m.Called(ctx, technicianID)
	return args.Get(0).([]models.Category), args.Error(1)
}

type mockProfileUsers struct {
	mock.Mock
}

func (m *mockProfileUsers) GetTechnician(ctx context.Context, id uuid.UUID) (*models.Technician, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Technician), args.Error(1)
}

func (m *mockProfileUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockProfileUsers) AssignTechnicianToCompany(ctx context.Context, companyID, technicianID uuid.UUID) error {
	args := m.Called(ctx, companyID, technicianID)
	return args.Error(0)
}

func (m *mockProfileUsers) ListCompanyTechnicians(ctx context.Context, companyID uuid.UUID) ([]models.Technician, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]models.Technician), args.Error(1)
}

func companyPrincipal() *models.Principal {
	return &models.Principal{UserID: uuid.New(), Role: models.RoleCompany, ProfileID: uuid.New()}
}

func newProfileTestService() (*ProfileService, *mockProfileAddresses, *mockProfileCatalog, *mockProfileUsers) {
	addresses := new(mockProfileAddresses)
	catalog := new(mockProfileCatalog)
	users := new(mockProfileUsers)
	return NewProfileService(addresses, catalog, users), addresses, catalog, users
}

func TestProfileService_SaveAddress_WithLocation(t *testing.T) {
	svc, addresses, _, _ := newProfileTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	lat, lng := 24.7136, 46.6753

	addresses.On("Create", ctx, mock.MatchedBy(func(a *models.CustomerAddress) bool {
		return a.CustomerID == principal.ProfileID &&
			a.Latitude != nil && *a.Latitude == lat &&
			a.Longitude != nil && *a.Longitude == lng
	})).Return(nil)

	addr, err := svc.SaveAddress(ctx, principal, SaveAddressInput{
		City:      "Эр-Рияд",
		Street:    "Улица Олайя",
		Latitude:  &lat,
		Longitude: &lng,
	})
	assert.NoError(t, err)
	assert.NotNil(t, addr.Latitude)
	addresses.AssertExpectations(t)
}

func TestProfileService_SaveAddress_MissingCity(t *testing.T) {
	svc, addresses, _, _ := newProfileTestService()

	_, err := svc.SaveAddress(context.Background(), customerPrincipal(), SaveAddressInput{Street: "Улица Олайя"})
	assert.Equal(t, apperror.ErrCodeValidation, apperror.CodeOf(err))
	addresses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProfileService_SaveAddress_TechnicianForbidden(t *testing.T) {
	svc, _, _, _ := newProfileTestService()

	_, err := svc.SaveAddress(context.Background(), technicianPrincipal(), SaveAddressInput{City: "Эр-Рияд", Street: "Улица Олайя"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestProfileService_AddCompanyTechnician_Success(t *testing.T) {
	svc, _, _, users := newProfileTestService()
	ctx := context.Background()
	principal := companyPrincipal()
	technicianID := uuid.New()

	users.On("AssignTechnicianToCompany", ctx, principal.ProfileID, technicianID).Return(nil)

	err := svc.AddCompanyTechnician(ctx, principal, technicianID)
	assert.NoError(t, err)
	users.AssertExpectations(t)
}

func TestProfileService_AddCompanyTechnician_CustomerForbidden(t *testing.T) {
	svc, _, _, users := newProfileTestService()

	err := svc.AddCompanyTechnician(context.Background(), customerPrincipal(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	users.AssertNotCalled(t, "AssignTechnicianToCompany", mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileService_AddCompanyTechnician_AlreadyAttached(t *testing.T) {
	svc, _, _, users := newProfileTestService()
	ctx := context.Background()
	principal := companyPrincipal()
	technicianID := uuid.New()

	users.On("AssignTechnicianToCompany", ctx, principal.ProfileID, technicianID).
		Return(apperror.New(apperror.ErrCodeInvalidState, "мастер уже состоит в компании"))

	err := svc.AddCompanyTechnician(ctx, principal, technicianID)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestProfileService_ListCompanyTechnicians_Success(t *testing.T) {
	svc, _, _, users := newProfileTestService()
	ctx := context.Background()
	principal := companyPrincipal()

	expected := []models.Technician{{ID: uuid.New(), CompanyID: &principal.ProfileID}}
	users.On("ListCompanyTechnicians", ctx, principal.ProfileID).Return(expected, nil)

	technicians, err := svc.ListCompanyTechnicians(ctx, principal)
	assert.NoError(t, err)
	assert.Equal(t, expected, technicians)
}

func TestProfileService_SetSkills_CustomerForbidden(t *testing.T) {
	svc, _, catalog, _ := newProfileTestService()

	err := svc.SetSkills(context.Background(), customerPrincipal(), []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	catalog.AssertNotCalled(t, "SetTechnicianSkills", mock.Anything, mock.Anything, mock.Anything)
}
