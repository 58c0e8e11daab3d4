package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/homeservice-backend/internal/dto"
	"github.com/ignatzorin/homeservice-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homeservice-backend/internal/service"
)

type ProfileHandler struct {
	auth    *service.AuthService
	profile *service.ProfileService
}

func NewProfileHandler(auth *service.AuthService, profile *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{auth: auth, profile: profile}
}

// SaveAddress POST /profile/addresses — новый адрес заказчика.
func (h *ProfileHandler) SaveAddress(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	var req dto.SaveAddressRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	address, err := h.profile.SaveAddress(c.Request.Context(), principal, service.SaveAddressInput{
		Label:     req.Label,
		City:      req.City,
		District:  req.District,
		Street:    req.Street,
		Details:   req.Details,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, address)
}

// ListAddresses GET /profile/addresses.
func (h *ProfileHandler) ListAddresses(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	addresses, err := h.profile.ListAddresses(c.Request.Context(), principal)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

// SetDefaultAddress PATCH /profile/addresses/:id/default.
func (h *ProfileHandler) SetDefaultAddress(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	addressID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.profile.SetDefaultAddress(c.Request.Context(), principal, addressID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "адрес по умолчанию обновлён"})
}

// DeleteAddress DELETE /profile/addresses/:id.
func (h *ProfileHandler) DeleteAddress(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	addressID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.profile.DeleteAddress(c.Request.Context(), principal, addressID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "адрес удалён"})
}

// SetSkills PUT /profile/skills — категории услуг мастера.
func (h *ProfileHandler) SetSkills(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	var req dto.SetSkillsRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	categoryIDs := make([]uuid.UUID, 0, len(req.CategoryIDs))
	for _, raw := range req.CategoryIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "неверный идентификатор категории: "+raw)
			return
		}
		categoryIDs = append(categoryIDs, id)
	}

	if err := h.profile.SetSkills(c.Request.Context(), principal, categoryIDs); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "навыки обновлены"})
}

// AddCompanyTechnician POST /company/technicians — прикрепляет мастера к компании.
func (h *ProfileHandler) AddCompanyTechnician(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	var req dto.AddCompanyTechnicianRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	technicianID, err := uuid.Parse(req.TechnicianID)
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор мастера")
		return
	}

	if err := h.profile.AddCompanyTechnician(c.Request.Context(), principal, technicianID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "мастер прикреплён к компании"})
}

// ListCompanyTechnicians GET /company/technicians.
func (h *ProfileHandler) ListCompanyTechnicians(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	technicians, err := h.profile.ListCompanyTechnicians(c.Request.Context(), principal)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"technicians": technicians})
}

// GetTechnician GET /technicians/:id — публичный профиль мастера.
func (h *ProfileHandler) GetTechnician(c *gin.Context) {
	technicianID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	technician, skills, err := h.profile.GetTechnicianProfile(c.Request.Context(), technicianID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.TechnicianProfileResponse{Technician: technician, Skills: skills})
}
