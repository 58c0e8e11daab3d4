package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/homeservice-backend/internal/logger"
	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/validation"
)

// AuthUserRepository описывает зависимости AuthService от слоя хранилища.
type AuthUserRepository interface {
	Create(ctx context.Context, user *models.User, companyName string) (uuid.UUID, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ResolvePrincipal(ctx context.Context, userID uuid.UUID) (*models.Principal, error)
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumeRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	DeleteRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

// AuthWalletRepository создаёт кошелёк нового участника.
type AuthWalletRepository interface {
	Ensure(ctx context.Context, ownerType string, ownerID uuid.UUID, currency string) (*models.Wallet, error)
}

// AuthCatalogRepository назначает категории мастера при регистрации.
type AuthCatalogRepository interface {
	SetTechnicianSkills(ctx context.Context, technicianID uuid.UUID, categoryIDs []uuid.UUID) error
}

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	users        AuthUserRepository
	wallets      AuthWalletRepository
	catalog      AuthCatalogRepository
	tokenManager *TokenManager
	currency     string
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	Phone       string
	Role        string
	CompanyName string
	CategoryIDs []uuid.UUID
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *models.User
	Principal *models.Principal
	TokenPair *TokenPair
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(users AuthUserRepository, wallets AuthWalletRepository, catalog AuthCatalogRepository, tokenManager *TokenManager, currency string) *AuthService {
	return &AuthService{
		users:        users,
		wallets:      wallets,
		catalog:      catalog,
		tokenManager: tokenManager,
		currency:     currency,
	}
}

// Register создаёт учётную запись, доменный профиль по роли и кошелёк.
// Мастеру дополнительно назначаются выбранные категории.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("имя", in.FullName, validation.MinFullNameLength, validation.MaxFullNameLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	switch in.Role {
	case models.RoleCustomer, models.RoleTechnician:
	case models.RoleCompany:
		if strings.TrimSpace(in.CompanyName) == "" {
			return nil, apperror.New(apperror.ErrCodeValidation, "название компании обязательно")
		}
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимая роль")
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "email уже зарегистрирован")
	} else if !errors.Is(err, apperror.ErrUserNotFound) {
		return nil, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(passHash),
		Role:         in.Role,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
	}

	profileID, err := s.users.Create(ctx, user, in.CompanyName)
	if err != nil {
		return nil, err
	}

	if _, err := s.wallets.Ensure(ctx, user.Role, profileID, s.currency); err != nil {
		return nil, err
	}

	if user.Role == models.RoleTechnician && len(in.CategoryIDs) > 0 {
		if err := s.catalog.SetTechnicianSkills(ctx, profileID, in.CategoryIDs); err != nil {
			return nil, err
		}
	}

	return s.issueTokens(ctx, user, &models.Principal{
		UserID:    user.ID,
		Role:      user.Role,
		ProfileID: profileID,
	})
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "аккаунт заблокирован")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	principal, err := s.users.ResolvePrincipal(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user, principal)
}

// Refresh выпускает новую пару токенов, потребляя старый refresh токен.
func (s *AuthService) Refresh(ctx context.Context, oldToken string) (*AuthResult, error) {
	if _, err := s.tokenManager.ParseRefresh(oldToken); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	userID, err := s.users.ConsumeRefreshToken(ctx, HashToken(oldToken))
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	principal, err := s.users.ResolvePrincipal(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user, principal)
}

// Logout отзывает все refresh токены пользователя.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.users.DeleteRefreshTokens(ctx, userID)
}

// ResolvePrincipal возвращает профиль по учётной записи.
func (s *AuthService) ResolvePrincipal(ctx context.Context, userID uuid.UUID) (*models.Principal, error) {
	return s.users.ResolvePrincipal(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, principal *models.Principal) (*AuthResult, error) {
	tokenPair, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось выпустить токены: %w", err)
	}

	if err := s.users.CreateRefreshToken(ctx, user.ID, HashToken(tokenPair.RefreshToken), refreshExp); err != nil {
		logger.Log.WithField("user_id", user.ID).WithError(err).Warn("auth service: не удалось сохранить refresh токен")
		return nil, err
	}

	return &AuthResult{
		User:      user,
		Principal: principal,
		TokenPair: tokenPair,
	}, nil
}
