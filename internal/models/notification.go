package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Типы уведомлений.
const (
	NotificationNewOffer     = "new_offer"
	NotificationOfferAccept  = "offer_accepted"
	NotificationJobCompleted = "job_completed"
	NotificationJobCancelled = "job_cancelled"
	NotificationNewReview    = "new_review"
	NotificationWalletTopUp  = "wallet_top_up"
)

// Notification — уведомление пользователя. Доставляется через WebSocket
// и сохраняется в БД для истории.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      string          `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Body      string          `db:"body" json:"body"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
