package dto

import (
	"github.com/ignatzorin/homeservice-backend/internal/models"
)

// ErrorResponse — стандартный формат ошибки API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse — стандартный формат успешного ответа.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WalletResponse дополняет кошелёк вычисленным доступным остатком
// в основных единицах валюты.
type WalletResponse struct {
	*models.Wallet
	Available      int64  `json:"available"`
	BalanceDisplay string `json:"balance_display"`
}

// NewWalletResponse собирает ответ по кошельку.
func NewWalletResponse(wallet *models.Wallet, balanceDisplay string) *WalletResponse {
	return &WalletResponse{
		Wallet:         wallet,
		Available:      wallet.Available(),
		BalanceDisplay: balanceDisplay,
	}
}

// JobDetailResponse — заявка с предложениями и отзывами.
type JobDetailResponse struct {
	*models.Job
	Offers  []models.PriceOffer `json:"offers,omitempty"`
	Reviews []models.Review     `json:"reviews,omitempty"`
}

// TechnicianProfileResponse — публичный профиль мастера с категориями.
type TechnicianProfileResponse struct {
	*models.Technician
	Skills []models.Category `json:"skills"`
}
