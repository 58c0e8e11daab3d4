package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/repository/common"
)

// ErrWalletClosed возвращается при операции над закрытым кошельком.
var ErrWalletClosed = apperror.New(apperror.ErrCodeInvalidState, "кошелёк закрыт")

// WalletRepository отвечает за кошельки и журнал их транзакций.
// Инвариант журнала: запись добавляется той же транзакцией БД, что и
// изменение баланса, balance_after фиксирует доступный остаток после операции.
type WalletRepository struct {
	db *sqlx.DB
}

// NewWalletRepository создаёт экземпляр репозитория.
func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Ensure возвращает активный кошелёк владельца, создавая его при отсутствии.
func (r *WalletRepository) Ensure(ctx context.Context, ownerType string, ownerID uuid.UUID, currency string) (*models.Wallet, error) {
	var wallet models.Wallet
	query := `
		INSERT INTO wallets (owner_type, owner_id, balance, hold_balance, currency)
		VALUES ($1, $2, 0, 0, $3)
		ON CONFLICT (owner_type, owner_id) DO UPDATE SET updated_at = NOW()
		RETURNING *
	`
	if err := r.db.GetContext(ctx, &wallet, query, ownerType, ownerID, currency); err != nil {
		return nil, fmt.Errorf("wallet repository: ensure %w", err)
	}
	if wallet.Status == models.WalletStatusClosed {
		return nil, ErrWalletClosed
	}
	return &wallet, nil
}

// GetByOwner возвращает активный кошелёк владельца.
func (r *WalletRepository) GetByOwner(ctx context.Context, ownerType string, ownerID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.GetContext(ctx, &wallet, `
		SELECT * FROM wallets
		WHERE owner_type = $1 AND owner_id = $2 AND status = $3
	`, ownerType, ownerID, models.WalletStatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrWalletNotFound
		}
		return nil, fmt.Errorf("wallet repository: get by owner %w", err)
	}
	return &wallet, nil
}

// GetByID возвращает кошелёк по идентификатору.
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	return common.GetByID[models.Wallet](ctx, r.db, "wallets", id, apperror.ErrWalletNotFound)
}

// TopUp зачисляет средства на кошелёк и пишет транзакцию top_up.
func (r *WalletRepository) TopUp(ctx context.Context, walletID uuid.UUID, amount int64) (*models.WalletTransaction, error) {
	var txRecord models.WalletTransaction

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		wallet, err := lockWallet(ctx, tx, walletID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE wallets SET balance = balance + $2, updated_at = NOW() WHERE id = $1
		`, walletID, amount); err != nil {
			return fmt.Errorf("wallet repository: top up %w", err)
		}

		record, err := insertWalletTx(ctx, tx, &models.WalletTransaction{
			WalletID:     walletID,
			TxType:       models.TxTypeTopUp,
			Direction:    models.TxDirectionCredit,
			Amount:       amount,
			BalanceAfter: wallet.Available() + amount,
		})
		if err != nil {
			return err
		}
		txRecord = *record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &txRecord, nil
}

// Withdraw списывает средства с доступного остатка и пишет транзакцию withdrawal.
func (r *WalletRepository) Withdraw(ctx context.Context, walletID uuid.UUID, amount int64) (*models.WalletTransaction, error) {
	var txRecord models.WalletTransaction

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		wallet, err := lockWallet(ctx, tx, walletID)
		if err != nil {
			return err
		}
		if wallet.Available() < amount {
			return apperror.ErrInsufficientFunds
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE wallets SET balance = balance - $2, updated_at = NOW() WHERE id = $1
		`, walletID, amount); err != nil {
			return fmt.Errorf("wallet repository: withdraw %w", err)
		}

		record, err := insertWalletTx(ctx, tx, &models.WalletTransaction{
			WalletID:     walletID,
			TxType:       models.TxTypeWithdrawal,
			Direction:    models.TxDirectionDebit,
			Amount:       amount,
			BalanceAfter: wallet.Available() - amount,
		})
		if err != nil {
			return err
		}
		txRecord = *record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &txRecord, nil
}

// Close закрывает кошелёк. Кошелёк с зарезервированными средствами
// закрыть нельзя.
func (r *WalletRepository) Close(ctx context.Context, walletID uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		wallet, err := lockWallet(ctx, tx, walletID)
		if err != nil {
			return err
		}
		if wallet.HoldBalance > 0 {
			return apperror.New(apperror.ErrCodeInvalidState, "нельзя закрыть кошелёк с зарезервированными средствами")
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE wallets SET status = $2, updated_at = NOW() WHERE id = $1
		`, walletID, models.WalletStatusClosed); err != nil {
			return fmt.Errorf("wallet repository: close %w", err)
		}
		return nil
	})
}

// ListTransactions возвращает журнал операций кошелька, последние первыми.
func (r *WalletRepository) ListTransactions(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error) {
	var transactions []models.WalletTransaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT * FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: list transactions %w", err)
	}
	return transactions, nil
}

// lockWallet берёт строку активного кошелька под FOR UPDATE.
func lockWallet(ctx context.Context, tx *sqlx.Tx, walletID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.GetContext(ctx, &wallet, `SELECT * FROM wallets WHERE id = $1 FOR UPDATE`, walletID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrWalletNotFound
		}
		return nil, fmt.Errorf("wallet repository: lock wallet %w", err)
	}
	if wallet.Status == models.WalletStatusClosed {
		return nil, ErrWalletClosed
	}
	return &wallet, nil
}

// insertWalletTx добавляет запись в журнал внутри текущей транзакции БД.
func insertWalletTx(ctx context.Context, tx *sqlx.Tx, record *models.WalletTransaction) (*models.WalletTransaction, error) {
	metadata := record.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}

	var saved models.WalletTransaction
	query := `
		INSERT INTO wallet_transactions (wallet_id, job_id, tx_type, direction, amount, balance_after, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *
	`
	err := tx.GetContext(ctx, &saved, query,
		record.WalletID, record.JobID, record.TxType, record.Direction,
		record.Amount, record.BalanceAfter, metadata,
	)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: insert transaction %w", err)
	}
	return &saved, nil
}
