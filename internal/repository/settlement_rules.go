package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/money"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
)

// Проверки переходов и расчёт журнальных записей вынесены в чистые функции:
// транзакции SettlementRepository применяют эффекты только после успешной
// проверки, сама логика перехода не зависит от SQL.

// acceptOfferGuard проверяет допустимость принятия предложения заказчиком
// с доступным остатком available. Предложение по уже назначенной заявке
// принять нельзя, даже если оно само ещё pending.
func acceptOfferGuard(job *models.Job, offer *models.PriceOffer, customerID uuid.UUID, available int64) error {
	if job.CustomerID != customerID {
		return apperror.New(apperror.ErrCodeForbidden, "заявка принадлежит другому заказчику")
	}
	if !job.IsOpen() {
		return apperror.New(apperror.ErrCodeInvalidState, "заявка уже назначена, завершена или отменена")
	}
	if offer.Status != models.OfferStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "предложение уже обработано")
	}
	if available < offer.Amount {
		return apperror.ErrInsufficientFunds
	}
	return nil
}

// completeJobGuard проверяет завершение назначенной заявки её мастером и
// возвращает зафиксированную цену.
func completeJobGuard(job *models.Job, technicianID uuid.UUID) (int64, error) {
	if job.Status != models.JobStatusAssigned {
		return 0, apperror.New(apperror.ErrCodeInvalidState, "заявка не находится в работе")
	}
	if job.TechnicianID == nil || *job.TechnicianID != technicianID {
		return 0, apperror.New(apperror.ErrCodeForbidden, "заявка назначена другому мастеру")
	}
	if job.FinalPrice == nil {
		return 0, fmt.Errorf("settlement repository: job %s assigned without final price", job.ID)
	}
	return *job.FinalPrice, nil
}

// cancelJobGuard проверяет отмену: только владельцем и только из pending.
// Заявка в waiting_for_offers, назначенная, завершённая или уже отменённая
// отмене не подлежит.
func cancelJobGuard(job *models.Job, customerID uuid.UUID) error {
	if job.CustomerID != customerID {
		return apperror.New(apperror.ErrCodeForbidden, "заявка принадлежит другому заказчику")
	}
	if job.Status != models.JobStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "отмена возможна только для заявки в статусе pending")
	}
	return nil
}

// releaseGuard проверяет, что резерв кошелька покрывает списываемую или
// возвращаемую сумму. Нарушение означает рассинхронизацию журнала и
// прерывает транзакцию.
func releaseGuard(holdBalance, amount int64) error {
	if holdBalance < amount {
		return fmt.Errorf("settlement repository: hold %d меньше суммы %d", holdBalance, amount)
	}
	return nil
}

// holdEntry строит дебетовую запись резервирования средств под предложение.
func holdEntry(wallet *models.Wallet, jobID uuid.UUID, amount int64) models.WalletTransaction {
	return models.WalletTransaction{
		WalletID:     wallet.ID,
		JobID:        &jobID,
		TxType:       models.TxTypeJobPaymentHold,
		Direction:    models.TxDirectionDebit,
		Amount:       amount,
		BalanceAfter: wallet.Available() - amount,
	}
}

// refundEntry строит кредитовую запись возврата резерва при отмене.
func refundEntry(wallet *models.Wallet, jobID uuid.UUID, amount int64) models.WalletTransaction {
	return models.WalletTransaction{
		WalletID:     wallet.ID,
		JobID:        &jobID,
		TxType:       models.TxTypeJobCancellationRefund,
		Direction:    models.TxDirectionCredit,
		Amount:       amount,
		BalanceAfter: wallet.Available() + amount,
	}
}

// completionEntries строит кредитовые записи расчёта завершения: мастеру
// сумма за вычетом комиссии, платформе комиссия; обе с metadata
// {total, commission}. При нулевой комиссии запись платформы не создаётся.
// BalanceAfter каждой записи — доступный остаток кошелька после зачисления.
func completionEntries(jobID uuid.UUID, technicianWallet, platformWallet *models.Wallet, total int64, commissionRate decimal.Decimal) ([]models.WalletTransaction, error) {
	commission, net := money.Split(total, commissionRate)
	metadata, err := json.Marshal(models.SettlementMetadata{Total: total, Commission: commission})
	if err != nil {
		return nil, fmt.Errorf("settlement repository: marshal metadata %w", err)
	}

	entries := []models.WalletTransaction{{
		WalletID:     technicianWallet.ID,
		JobID:        &jobID,
		TxType:       models.TxTypeJobCompletionPayment,
		Direction:    models.TxDirectionCredit,
		Amount:       net,
		BalanceAfter: technicianWallet.Available() + net,
		Metadata:     metadata,
	}}
	if commission > 0 {
		entries = append(entries, models.WalletTransaction{
			WalletID:     platformWallet.ID,
			JobID:        &jobID,
			TxType:       models.TxTypeJobCompletionPayment,
			Direction:    models.TxDirectionCredit,
			Amount:       commission,
			BalanceAfter: platformWallet.Available() + commission,
			Metadata:     metadata,
		})
	}
	return entries, nil
}
