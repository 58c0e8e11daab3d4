package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/validation"
)

// ReviewRepository описывает зависимости ReviewService от слоя хранилища.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review, technicianID uuid.UUID) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Review, error)
	ListForTechnician(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.Review, error)
}

// ReviewJobRepository выдаёт заявку для проверки статуса и участников.
type ReviewJobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// SubmitReviewInput содержит данные отзыва.
type SubmitReviewInput struct {
	JobID   uuid.UUID
	Rating  int
	Comment string
}

// ReviewService управляет отзывами по завершённым заявкам.
type ReviewService struct {
	reviews ReviewRepository
	jobs    ReviewJobRepository
}

// NewReviewService создаёт сервис отзывов.
func NewReviewService(reviews ReviewRepository, jobs ReviewJobRepository) *ReviewService {
	return &ReviewService{reviews: reviews, jobs: jobs}
}

// SubmitReview сохраняет отзыв по завершённой заявке. Роль автора
// выводится из участников заявки; каждая сторона оставляет не более
// одного отзыва.
func (s *ReviewService) SubmitReview(ctx context.Context, principal *models.Principal, in SubmitReviewInput) (*models.Review, error) {
	if err := validation.ValidateRating(in.Rating); err != nil {
		return nil, apperror.New(apperror.ErrCodeInvalidRating, err.Error())
	}
	if err := validation.ValidateLength("комментарий", in.Comment, 0, validation.MaxReviewCommentLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	job, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "отзыв можно оставить только по завершённой заявке")
	}

	var role string
	switch {
	case job.CustomerID == principal.ProfileID && principal.Role == models.RoleCustomer:
		role = models.ReviewerRoleCustomer
	case job.TechnicianID != nil && *job.TechnicianID == principal.ProfileID && principal.Role == models.RoleTechnician:
		role = models.ReviewerRoleTechnician
	default:
		return nil, apperror.New(apperror.ErrCodeForbidden, "пользователь не является участником заявки")
	}

	if job.TechnicianID == nil {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "по заявке не назначен мастер")
	}

	review := &models.Review{
		JobID:        job.ID,
		ReviewerRole: role,
		ReviewerID:   principal.ProfileID,
		Rating:       in.Rating,
		Comment:      strings.TrimSpace(in.Comment),
	}
	if err := s.reviews.Create(ctx, review, *job.TechnicianID); err != nil {
		return nil, err
	}

	return review, nil
}

// ListJobReviews возвращает отзывы по заявке.
func (s *ReviewService) ListJobReviews(ctx context.Context, jobID uuid.UUID) ([]models.Review, error) {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.reviews.ListByJob(ctx, jobID)
}

// ListTechnicianReviews возвращает отзывы заказчиков о мастере.
func (s *ReviewService) ListTechnicianReviews(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.Review, error) {
	limit, offset = clampPage(limit, offset)
	return s.reviews.ListForTechnician(ctx, technicianID, limit, offset)
}
