package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homeservice-backend/internal/dto"
	"github.com/ignatzorin/homeservice-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homeservice-backend/internal/service"
)

type ReviewHandler struct {
	auth    *service.AuthService
	reviews *service.ReviewService
}

func NewReviewHandler(auth *service.AuthService, reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{auth: auth, reviews: reviews}
}

// Submit POST /jobs/:id/reviews — отзыв участника по завершённой заявке.
func (h *ReviewHandler) Submit(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SubmitReviewRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.SubmitReview(c.Request.Context(), principal, service.SubmitReviewInput{
		JobID:   jobID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// ListByJob GET /jobs/:id/reviews — отзывы по заявке.
func (h *ReviewHandler) ListByJob(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	reviews, err := h.reviews.ListJobReviews(c.Request.Context(), jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// ListByTechnician GET /technicians/:id/reviews — отзывы о мастере.
func (h *ReviewHandler) ListByTechnician(c *gin.Context) {
	technicianID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	reviews, err := h.reviews.ListTechnicianReviews(c.Request.Context(), technicianID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
