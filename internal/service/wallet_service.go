package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/money"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
)

// WalletRepository описывает зависимости WalletService от слоя хранилища.
type WalletRepository interface {
	Ensure(ctx context.Context, ownerType string, ownerID uuid.UUID, currency string) (*models.Wallet, error)
	GetByOwner(ctx context.Context, ownerType string, ownerID uuid.UUID) (*models.Wallet, error)
	TopUp(ctx context.Context, walletID uuid.UUID, amount int64) (*models.WalletTransaction, error)
	Withdraw(ctx context.Context, walletID uuid.UUID, amount int64) (*models.WalletTransaction, error)
	Close(ctx context.Context, walletID uuid.UUID) error
	ListTransactions(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error)
}

// WalletService отвечает за кошельки участников: просмотр, пополнение,
// вывод средств и журнал операций.
type WalletService struct {
	wallets       WalletRepository
	notifications *NotificationService
	currency      string
	topUpMin      int64
	topUpMax      int64
}

// NewWalletService создаёт сервис кошельков.
func NewWalletService(wallets WalletRepository, notifications *NotificationService, currency string, topUpMin, topUpMax int64) *WalletService {
	return &WalletService{
		wallets:       wallets,
		notifications: notifications,
		currency:      currency,
		topUpMin:      topUpMin,
		topUpMax:      topUpMax,
	}
}

// GetWallet возвращает кошелёк владельца, создавая его при первом обращении.
func (s *WalletService) GetWallet(ctx context.Context, principal *models.Principal) (*models.Wallet, error) {
	return s.wallets.Ensure(ctx, ownerTypeForRole(principal.Role), principal.ProfileID, s.currency)
}

// TopUp пополняет кошелёк. Сумма ограничена настроенными границами;
// платёжный провайдер не подключён, зачисление имитируется.
func (s *WalletService) TopUp(ctx context.Context, principal *models.Principal, amount int64) (*models.WalletTransaction, error) {
	if amount < s.topUpMin || amount > s.topUpMax {
		return nil, apperror.New(apperror.ErrCodeInvalidAmount,
			"сумма пополнения должна быть от "+money.FormatMinor(s.topUpMin)+" до "+money.FormatMinor(s.topUpMax))
	}

	wallet, err := s.GetWallet(ctx, principal)
	if err != nil {
		return nil, err
	}

	record, err := s.wallets.TopUp(ctx, wallet.ID, amount)
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, principal.UserID, models.NotificationWalletTopUp,
		"Кошелёк пополнен",
		"Зачислено "+money.FormatMinor(amount)+" "+s.currency,
		map[string]interface{}{"amount": amount, "balance_after": record.BalanceAfter})

	return record, nil
}

// Withdraw выводит средства с доступного остатка.
func (s *WalletService) Withdraw(ctx context.Context, principal *models.Principal, amount int64) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeInvalidAmount, "сумма вывода должна быть положительной")
	}

	wallet, err := s.wallets.GetByOwner(ctx, ownerTypeForRole(principal.Role), principal.ProfileID)
	if err != nil {
		return nil, err
	}

	return s.wallets.Withdraw(ctx, wallet.ID, amount)
}

// Close закрывает кошелёк владельца.
func (s *WalletService) Close(ctx context.Context, principal *models.Principal) error {
	wallet, err := s.wallets.GetByOwner(ctx, ownerTypeForRole(principal.Role), principal.ProfileID)
	if err != nil {
		return err
	}
	return s.wallets.Close(ctx, wallet.ID)
}

// ListTransactions возвращает журнал операций кошелька владельца.
func (s *WalletService) ListTransactions(ctx context.Context, principal *models.Principal, limit, offset int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	wallet, err := s.wallets.GetByOwner(ctx, ownerTypeForRole(principal.Role), principal.ProfileID)
	if err != nil {
		return nil, err
	}

	return s.wallets.ListTransactions(ctx, wallet.ID, limit, offset)
}

// ownerTypeForRole сопоставляет роль пользователя типу владельца кошелька.
func ownerTypeForRole(role string) string {
	switch role {
	case models.RoleTechnician:
		return models.WalletOwnerTechnician
	case models.RoleCompany:
		return models.WalletOwnerCompany
	default:
		return models.WalletOwnerCustomer
	}
}
