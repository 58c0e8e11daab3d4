package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User, companyName string) (uuid.UUID, error) {
	args := m.Called(ctx, user, companyName)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) ResolvePrincipal(ctx context.Context, userID uuid.UUID) (*models.Principal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func (m *mockUserRepo) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *mockUserRepo) ConsumeRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockUserRepo) DeleteRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockSkillsCatalog struct {
	mock.Mock
}

func (m *mockSkillsCatalog) SetTechnicianSkills(ctx context.Context, technicianID uuid.UUID, categoryIDs []uuid.UUID) error {
	args := m.Called(ctx, technicianID, categoryIDs)
	return args.Error(0)
}

func newAuthTestService() (*AuthService, *mockUserRepo, *mockWalletRepo, *mockSkillsCatalog) {
	users := new(mockUserRepo)
	wallets := new(mockWalletRepo)
	catalog := new(mockSkillsCatalog)
	tokens := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)
	svc := NewAuthService(users, wallets, catalog, tokens, "SAR")
	return svc, users, wallets, catalog
}

func TestAuthService_Register_CustomerSuccess(t *testing.T) {
	svc, users, wallets, _ := newAuthTestService()
	ctx := context.Background()
	profileID := uuid.New()

	users.On("GetByEmail", ctx, mock.Anything).Return(nil, apperror.ErrUserNotFound)
	users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "ali@example.com" && u.Role == models.RoleCustomer && u.PasswordHash != "Passw0rd123"
	}), "").Return(profileID, nil)
	wallets.On("Ensure", ctx, models.RoleCustomer, profileID, "SAR").Return(&models.Wallet{ID: uuid.New()}, nil)
	users.On("CreateRefreshToken", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "Ali@example.com",
		Password: "Passw0rd123",
		FullName: "Али Хасан",
		Role:     models.RoleCustomer,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.Equal(t, profileID, result.Principal.ProfileID)
	users.AssertExpectations(t)
}

func TestAuthService_Register_TechnicianWithSkills(t *testing.T) {
	svc, users, wallets, catalog := newAuthTestService()
	ctx := context.Background()
	profileID := uuid.New()
	categoryIDs := []uuid.UUID{uuid.New(), uuid.New()}

	users.On("GetByEmail", ctx, mock.Anything).Return(nil, apperror.ErrUserNotFound)
	users.On("Create", ctx, mock.Anything, "").Return(profileID, nil)
	wallets.On("Ensure", ctx, models.RoleTechnician, profileID, "SAR").Return(&models.Wallet{ID: uuid.New()}, nil)
	catalog.On("SetTechnicianSkills", ctx, profileID, categoryIDs).Return(nil)
	users.On("CreateRefreshToken", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Register(ctx, RegisterInput{
		Email:       "master@example.com",
		Password:    "Passw0rd123",
		FullName:    "Мастер",
		Role:        models.RoleTechnician,
		CategoryIDs: categoryIDs,
	})
	assert.NoError(t, err)
	catalog.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, users, _, _ := newAuthTestService()
	ctx := context.Background()

	users.On("GetByEmail", ctx, mock.Anything).Return(&models.User{ID: uuid.New()}, nil)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "taken@example.com",
		Password: "Passw0rd123",
		FullName: "Али",
		Role:     models.RoleCustomer,
	})
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeConflict, apperror.CodeOf(err))
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc, _, _, _ := newAuthTestService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ali@example.com",
		Password: "short",
		FullName: "Али",
		Role:     models.RoleCustomer,
	})
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, apperror.CodeOf(err))
}

func TestAuthService_Register_CompanyRequiresName(t *testing.T) {
	svc, _, _, _ := newAuthTestService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "firm@example.com",
		Password: "Passw0rd123",
		FullName: "Фирма",
		Role:     models.RoleCompany,
	})
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, apperror.CodeOf(err))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, users, _, _ := newAuthTestService()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	users.On("GetByEmail", ctx, "ali@example.com").Return(&models.User{
		ID:           uuid.New(),
		Email:        "ali@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}, nil)

	_, err = svc.Login(ctx, LoginInput{Email: "ali@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, users, _, _ := newAuthTestService()
	ctx := context.Background()

	users.On("GetByEmail", ctx, mock.Anything).Return(nil, apperror.ErrUserNotFound)

	_, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Passw0rd123"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	svc, users, _, _ := newAuthTestService()
	ctx := context.Background()

	users.On("GetByEmail", ctx, mock.Anything).Return(&models.User{ID: uuid.New(), IsActive: false}, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "blocked@example.com", Password: "Passw0rd123"})
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeForbidden, apperror.CodeOf(err))
}

func TestAuthService_Logout(t *testing.T) {
	svc, users, _, _ := newAuthTestService()
	ctx := context.Background()
	userID := uuid.New()

	users.On("DeleteRefreshTokens", ctx, userID).Return(nil)

	assert.NoError(t, svc.Logout(ctx, userID))
	users.AssertExpectations(t)
}
