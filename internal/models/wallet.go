package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Типы владельцев кошельков.
const (
	WalletOwnerCustomer   = "customer"
	WalletOwnerTechnician = "technician"
	WalletOwnerCompany    = "company"
	WalletOwnerPlatform   = "platform"
)

// Статусы кошелька. Закрытый кошелёк не участвует в операциях.
const (
	WalletStatusActive = "active"
	WalletStatusClosed = "closed"
)

// PlatformWalletOwnerID — фиксированный идентификатор системного кошелька
// платформы, на который зачисляются комиссии.
var PlatformWalletOwnerID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Wallet — кошелёк участника маркетплейса. Balance — полный баланс,
// HoldBalance — часть баланса, зарезервированная под назначенные заявки.
// Доступный остаток равен Balance - HoldBalance.
type Wallet struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerType   string    `db:"owner_type" json:"owner_type"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner_id"`
	Balance     int64     `db:"balance" json:"balance"`
	HoldBalance int64     `db:"hold_balance" json:"hold_balance"`
	Currency    string    `db:"currency" json:"currency"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Available возвращает доступный для трат остаток.
func (w *Wallet) Available() int64 {
	return w.Balance - w.HoldBalance
}

// Типы транзакций кошелька.
const (
	TxTypeTopUp                 = "top_up"
	TxTypeJobPaymentHold        = "job_payment_hold"
	TxTypeJobCompletionPayment  = "job_completion_payment"
	TxTypeJobCancellationRefund = "job_cancellation_refund"
	TxTypeWithdrawal            = "withdrawal"
	TxTypeAdminAdjustment       = "admin_adjustment"
)

// Направления транзакций.
const (
	TxDirectionCredit = "credit"
	TxDirectionDebit  = "debit"
)

// WalletTransaction — запись в журнале операций кошелька.
// BalanceAfter фиксирует доступный остаток после применения операции,
// поэтому журнал воспроизводит историю баланса без пересчёта.
type WalletTransaction struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	WalletID     uuid.UUID       `db:"wallet_id" json:"wallet_id"`
	JobID        *uuid.UUID      `db:"job_id" json:"job_id,omitempty"`
	TxType       string          `db:"tx_type" json:"tx_type"`
	Direction    string          `db:"direction" json:"direction"`
	Amount       int64           `db:"amount" json:"amount"`
	BalanceAfter int64           `db:"balance_after" json:"balance_after"`
	Metadata     json.RawMessage `db:"metadata" json:"metadata"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// SettlementMetadata — содержимое metadata для транзакций расчёта по заявке.
type SettlementMetadata struct {
	Total      int64 `json:"total"`
	Commission int64 `json:"commission"`
}
