package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/repository/common"
)

// SettlementRepository выполняет атомарные расчётные операции, связывающие
// жизненный цикл заявки с кошельками. Каждая операция — одна транзакция БД:
// либо применяются все эффекты, либо ни один. Порядок блокировок фиксирован:
// сначала строка заявки, затем кошельки по возрастанию id.
type SettlementRepository struct {
	db *sqlx.DB
}

// NewSettlementRepository создаёт экземпляр репозитория.
func NewSettlementRepository(db *sqlx.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

// AcceptPriceOffer принимает ценовое предложение: предложение переходит в
// accepted, остальные актуальные предложения по заявке — в rejected, заявка
// назначается мастеру с фиксацией цены, сумма резервируется на кошельке
// заказчика. При нехватке средств вся операция откатывается, заявка и
// предложение остаются нетронутыми.
func (r *SettlementRepository) AcceptPriceOffer(ctx context.Context, offerID, customerID uuid.UUID) (*models.Job, error) {
	var result models.Job

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var offer models.PriceOffer
		if err := tx.GetContext(ctx, &offer,
			`SELECT * FROM price_offers WHERE id = $1`, offerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrOfferNotFound
			}
			return fmt.Errorf("settlement repository: get offer %w", err)
		}

		job, err := lockJob(ctx, tx, offer.JobID)
		if err != nil {
			return err
		}
		wallet, err := lockWalletByOwner(ctx, tx, models.WalletOwnerCustomer, customerID)
		if err != nil {
			return err
		}
		if err := acceptOfferGuard(job, &offer, customerID, wallet.Available()); err != nil {
			return err
		}

		// Резервируем сумму: hold растёт, полный баланс не меняется.
		if _, err := tx.ExecContext(ctx, `
			UPDATE wallets SET hold_balance = hold_balance + $2, updated_at = NOW() WHERE id = $1
		`, wallet.ID, offer.Amount); err != nil {
			return fmt.Errorf("settlement repository: hold %w", err)
		}

		entry := holdEntry(wallet, job.ID, offer.Amount)
		if _, err := insertWalletTx(ctx, tx, &entry); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE price_offers SET status = $2, updated_at = NOW() WHERE id = $1
		`, offer.ID, models.OfferStatusAccepted); err != nil {
			return fmt.Errorf("settlement repository: accept offer %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE price_offers SET status = $2, updated_at = NOW()
			WHERE job_id = $1 AND id <> $3 AND status = $4
		`, job.ID, models.OfferStatusRejected, offer.ID, models.OfferStatusPending); err != nil {
			return fmt.Errorf("settlement repository: reject other offers %w", err)
		}

		if err := tx.GetContext(ctx, &result, `
			UPDATE jobs
			SET status = $2, technician_id = $3, final_price = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		`, job.ID, models.JobStatusAssigned, offer.TechnicianID, offer.Amount); err != nil {
			return fmt.Errorf("settlement repository: assign job %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// CompleteJobAndTransfer завершает назначенную заявку и проводит расчёт:
// резерв заказчика списывается целиком, мастер получает сумму за вычетом
// комиссии, комиссия зачисляется на кошелёк платформы. Обе кредитовые
// записи несут metadata {total, commission}.
func (r *SettlementRepository) CompleteJobAndTransfer(ctx context.Context, jobID, technicianID uuid.UUID, commissionRate decimal.Decimal) (*models.Job, error) {
	var result models.Job

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		job, err := lockJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		total, err := completeJobGuard(job, technicianID)
		if err != nil {
			return err
		}

		customerWallet, err := getWalletByOwner(ctx, tx, models.WalletOwnerCustomer, job.CustomerID)
		if err != nil {
			return err
		}
		technicianWallet, err := ensureWalletTx(ctx, tx, models.WalletOwnerTechnician, technicianID, customerWallet.Currency)
		if err != nil {
			return err
		}
		platformWallet, err := getWalletByOwner(ctx, tx, models.WalletOwnerPlatform, models.PlatformWalletOwnerID)
		if err != nil {
			return err
		}

		wallets, err := lockWalletsAscending(ctx, tx, customerWallet.ID, technicianWallet.ID, platformWallet.ID)
		if err != nil {
			return err
		}
		customerWallet = wallets[customerWallet.ID]
		technicianWallet = wallets[technicianWallet.ID]
		platformWallet = wallets[platformWallet.ID]

		if err := releaseGuard(customerWallet.HoldBalance, total); err != nil {
			return err
		}

		entries, err := completionEntries(job.ID, technicianWallet, platformWallet, total, commissionRate)
		if err != nil {
			return err
		}

		// Резерв финализируется: баланс и hold уменьшаются вместе,
		// доступный остаток заказчика не меняется, поэтому отдельная
		// запись в журнал заказчика не пишется.
		if _, err := tx.ExecContext(ctx, `
			UPDATE wallets
			SET balance = balance - $2, hold_balance = hold_balance - $2, updated_at = NOW()
			WHERE id = $1
		`, customerWallet.ID, total); err != nil {
			return fmt.Errorf("settlement repository: settle hold %w", err)
		}

		for i := range entries {
			entry := &entries[i]
			if _, err := tx.ExecContext(ctx, `
				UPDATE wallets SET balance = balance + $2, updated_at = NOW() WHERE id = $1
			`, entry.WalletID, entry.Amount); err != nil {
				return fmt.Errorf("settlement repository: credit wallet %s %w", entry.WalletID, err)
			}
			if _, err := insertWalletTx(ctx, tx, entry); err != nil {
				return err
			}
		}

		if err := tx.GetContext(ctx, &result, `
			UPDATE jobs SET status = $2, completed_at = NOW(), updated_at = NOW()
			WHERE id = $1
			RETURNING *
		`, job.ID, models.JobStatusCompleted); err != nil {
			return fmt.Errorf("settlement repository: complete job %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// CancelJobAndRefund отменяет заявку заказчика. Отмена допустима только из
// статуса pending; повторный вызов по уже отменённой заявке возвращает
// InvalidState, двойного возврата не происходит. Если по заявке была
// зафиксирована цена с резервом, резерв возвращается в доступный остаток
// с кредитовой записью job_cancellation_refund.
func (r *SettlementRepository) CancelJobAndRefund(ctx context.Context, jobID, customerID uuid.UUID) (*models.Job, error) {
	var result models.Job

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		job, err := lockJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if err := cancelJobGuard(job, customerID); err != nil {
			return err
		}

		if job.FinalPrice != nil && *job.FinalPrice > 0 {
			amount := *job.FinalPrice

			wallet, err := lockWalletByOwner(ctx, tx, models.WalletOwnerCustomer, customerID)
			if err != nil {
				return err
			}
			if err := releaseGuard(wallet.HoldBalance, amount); err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, `
				UPDATE wallets SET hold_balance = hold_balance - $2, updated_at = NOW() WHERE id = $1
			`, wallet.ID, amount); err != nil {
				return fmt.Errorf("settlement repository: release hold %w", err)
			}

			entry := refundEntry(wallet, job.ID, amount)
			if _, err := insertWalletTx(ctx, tx, &entry); err != nil {
				return err
			}
		}

		if err := tx.GetContext(ctx, &result, `
			UPDATE jobs SET status = $2, cancelled_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = $3
			RETURNING *
		`, job.ID, models.JobStatusCancelled, models.JobStatusPending); err != nil {
			return fmt.Errorf("settlement repository: cancel job %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// lockJob берёт строку заявки под FOR UPDATE.
func lockJob(ctx context.Context, tx *sqlx.Tx, jobID uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := tx.GetContext(ctx, &job, `SELECT * FROM jobs WHERE id = $1 FOR UPDATE`, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, fmt.Errorf("settlement repository: lock job %w", err)
	}
	return &job, nil
}

func getWalletByOwner(ctx context.Context, tx *sqlx.Tx, ownerType string, ownerID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.GetContext(ctx, &wallet, `
		SELECT * FROM wallets
		WHERE owner_type = $1 AND owner_id = $2 AND status = $3
	`, ownerType, ownerID, models.WalletStatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrWalletNotFound
		}
		return nil, fmt.Errorf("settlement repository: get wallet %w", err)
	}
	return &wallet, nil
}

func lockWalletByOwner(ctx context.Context, tx *sqlx.Tx, ownerType string, ownerID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.GetContext(ctx, &wallet, `
		SELECT * FROM wallets
		WHERE owner_type = $1 AND owner_id = $2 AND status = $3
		FOR UPDATE
	`, ownerType, ownerID, models.WalletStatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrWalletNotFound
		}
		return nil, fmt.Errorf("settlement repository: lock wallet %w", err)
	}
	return &wallet, nil
}

func ensureWalletTx(ctx context.Context, tx *sqlx.Tx, ownerType string, ownerID uuid.UUID, currency string) (*models.Wallet, error) {
	var wallet models.Wallet
	query := `
		INSERT INTO wallets (owner_type, owner_id, balance, hold_balance, currency)
		VALUES ($1, $2, 0, 0, $3)
		ON CONFLICT (owner_type, owner_id) DO UPDATE SET updated_at = NOW()
		RETURNING *
	`
	if err := tx.GetContext(ctx, &wallet, query, ownerType, ownerID, currency); err != nil {
		return nil, fmt.Errorf("settlement repository: ensure wallet %w", err)
	}
	if wallet.Status == models.WalletStatusClosed {
		return nil, ErrWalletClosed
	}
	return &wallet, nil
}

// lockWalletsAscending блокирует несколько кошельков в порядке возрастания id,
// чтобы параллельные расчёты не взаимоблокировались.
func lockWalletsAscending(ctx context.Context, tx *sqlx.Tx, ids ...uuid.UUID) (map[uuid.UUID]*models.Wallet, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	wallets := make(map[uuid.UUID]*models.Wallet, len(sorted))
	for _, id := range sorted {
		if _, ok := wallets[id]; ok {
			continue
		}
		var wallet models.Wallet
		if err := tx.GetContext(ctx, &wallet,
			`SELECT * FROM wallets WHERE id = $1 FOR UPDATE`, id); err != nil {
			return nil, fmt.Errorf("settlement repository: lock wallet %s %w", id, err)
		}
		wallets[id] = &wallet
	}
	return wallets, nil
}
