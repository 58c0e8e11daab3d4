package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homeservice-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/service"
)

// currentPrincipal резолвит доменный профиль текущего пользователя.
// Возвращает false, если ответ уже отправлен.
func currentPrincipal(c *gin.Context, auth *service.AuthService) (*models.Principal, bool) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return nil, false
	}

	principal, err := auth.ResolvePrincipal(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}

	return principal, true
}
