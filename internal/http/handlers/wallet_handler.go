package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homeservice-backend/internal/dto"
	"github.com/ignatzorin/homeservice-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homeservice-backend/internal/money"
	"github.com/ignatzorin/homeservice-backend/internal/service"
)

type WalletHandler struct {
	auth    *service.AuthService
	wallets *service.WalletService
}

func NewWalletHandler(auth *service.AuthService, wallets *service.WalletService) *WalletHandler {
	return &WalletHandler{auth: auth, wallets: wallets}
}

// Get GET /wallet — кошелёк текущего пользователя.
func (h *WalletHandler) Get(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	wallet, err := h.wallets.GetWallet(c.Request.Context(), principal)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewWalletResponse(wallet, money.FormatMinor(wallet.Available())))
}

// TopUp POST /wallet/top-up — пополнение баланса.
func (h *WalletHandler) TopUp(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	var req dto.TopUpRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	amount, err := money.ParseMinor(req.Amount)
	if err != nil {
		common.RespondBadRequest(c, "неверная сумма пополнения")
		return
	}

	tx, err := h.wallets.TopUp(c.Request.Context(), principal, amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// Withdraw POST /wallet/withdraw — вывод доступных средств.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	var req dto.WithdrawRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	amount, err := money.ParseMinor(req.Amount)
	if err != nil {
		common.RespondBadRequest(c, "неверная сумма вывода")
		return
	}

	tx, err := h.wallets.Withdraw(c.Request.Context(), principal, amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// Transactions GET /wallet/transactions — история операций.
func (h *WalletHandler) Transactions(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)
	txs, err := h.wallets.ListTransactions(c.Request.Context(), principal, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// Close POST /wallet/close — закрытие кошелька без резервов.
func (h *WalletHandler) Close(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	if err := h.wallets.Close(c.Request.Context(), principal); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "кошелёк закрыт"})
}
