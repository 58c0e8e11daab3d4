package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homeservice-backend/internal/dto"
	"github.com/ignatzorin/homeservice-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homeservice-backend/internal/money"
	"github.com/ignatzorin/homeservice-backend/internal/service"
)

type OfferHandler struct {
	auth   *service.AuthService
	offers *service.OfferService
}

func NewOfferHandler(auth *service.AuthService, offers *service.OfferService) *OfferHandler {
	return &OfferHandler{auth: auth, offers: offers}
}

// Submit POST /jobs/:id/offers — ценовое предложение от мастера.
func (h *OfferHandler) Submit(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SubmitOfferRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	amount, err := money.ParseMinor(req.Amount)
	if err != nil {
		common.RespondBadRequest(c, "неверная сумма предложения")
		return
	}

	offer, err := h.offers.SubmitOffer(c.Request.Context(), principal, service.SubmitOfferInput{
		JobID:   jobID,
		Amount:  amount,
		Message: req.Message,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

// Accept POST /offers/:id/accept — принятие предложения заказчиком.
func (h *OfferHandler) Accept(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	offerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.offers.AcceptOffer(c.Request.Context(), principal, offerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListByJob GET /jobs/:id/offers — предложения по заявке.
func (h *OfferHandler) ListByJob(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	offers, err := h.offers.ListJobOffers(c.Request.Context(), principal, jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// ListMine GET /offers/my — предложения текущего мастера.
func (h *OfferHandler) ListMine(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)
	offers, err := h.offers.ListMyOffers(c.Request.Context(), principal, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}
