package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/homeservice-backend/internal/dto"
	"github.com/ignatzorin/homeservice-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homeservice-backend/internal/service"
)

type JobHandler struct {
	auth    *service.AuthService
	jobs    *service.JobService
	offers  *service.OfferService
	reviews *service.ReviewService
}

func NewJobHandler(auth *service.AuthService, jobs *service.JobService, offers *service.OfferService, reviews *service.ReviewService) *JobHandler {
	return &JobHandler{auth: auth, jobs: jobs, offers: offers, reviews: reviews}
}

// Create POST /jobs — multipart-форма с полями заявки и фотографиями.
func (h *JobHandler) Create(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if err := c.ShouldBind(&req); err != nil {
		common.RespondBadRequest(c, "ошибка валидации запроса: "+err.Error())
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		common.RespondBadRequest(c, "неверный category_id")
		return
	}

	input := service.CreateJobInput{
		CategoryID:  categoryID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.AddressID != "" {
		addressID, err := uuid.Parse(req.AddressID)
		if err != nil {
			common.RespondBadRequest(c, "неверный address_id")
			return
		}
		input.AddressID = &addressID
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, file := range form.File["photos"] {
			src, err := file.Open()
			if err != nil {
				continue
			}
			defer src.Close()
			input.Photos = append(input.Photos, service.PhotoUpload{
				Reader:   src,
				Filename: file.Filename,
				IsBefore: true,
			})
		}
	}

	job, err := h.jobs.CreateJob(c.Request.Context(), principal, input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// Get GET /jobs/:id — заявка с фотографиями, предложениями и отзывами.
func (h *JobHandler) Get(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := dto.JobDetailResponse{Job: job}
	if offers, err := h.offers.ListJobOffers(c.Request.Context(), principal, jobID); err == nil {
		resp.Offers = offers
	}
	if reviews, err := h.reviews.ListJobReviews(c.Request.Context(), jobID); err == nil {
		resp.Reviews = reviews
	}

	c.JSON(http.StatusOK, resp)
}

// ListMine GET /jobs/my — заявки заказчика.
func (h *JobHandler) ListMine(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)
	jobs, err := h.jobs.ListCustomerJobs(c.Request.Context(), principal, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// ListAssigned GET /jobs/assigned — заявки, назначенные мастеру.
func (h *JobHandler) ListAssigned(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)
	jobs, err := h.jobs.ListTechnicianJobs(c.Request.Context(), principal, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// ListOpen GET /jobs/open — открытые заявки. Без фильтра по категории
// мастер получает заявки, подходящие по его навыкам.
func (h *JobHandler) ListOpen(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)

	var categoryID *uuid.UUID
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "неверный category_id")
			return
		}
		categoryID = &id
	}

	jobs, err := h.jobs.ListOpenJobs(c.Request.Context(), principal, categoryID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// MarkPending PATCH /jobs/:id/pending — остановить сбор предложений.
func (h *JobHandler) MarkPending(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.jobs.MarkPending(c.Request.Context(), principal, jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// Cancel POST /jobs/:id/cancel — отмена заявки с возвратом резерва.
func (h *JobHandler) Cancel(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.jobs.CancelJob(c.Request.Context(), principal, jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// Complete POST /jobs/:id/complete — завершение заявки мастером с расчётом.
func (h *JobHandler) Complete(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.jobs.CompleteJob(c.Request.Context(), principal, jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// AddPhoto POST /jobs/:id/photos — фото результата от мастера.
func (h *JobHandler) AddPhoto(c *gin.Context) {
	principal, ok := currentPrincipal(c, h.auth)
	if !ok {
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		common.RespondBadRequest(c, "файл photo обязателен")
		return
	}
	src, err := file.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer src.Close()

	photo, err := h.jobs.AddCompletionPhoto(c.Request.Context(), principal, jobID, service.PhotoUpload{
		Reader:   src,
		Filename: file.Filename,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, photo)
}
