package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/repository"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review, technicianID uuid.UUID) error {
	args := m.Called(ctx, review, technicianID)
	return args.Error(0)
}

func (m *mockReviewRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Review, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListForTechnician(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.Review, error) {
	args := m.Called(ctx, technicianID, limit, offset)
	return args.Get(0).([]models.Review), args.Error(1)
}

func completedJob(customerID, technicianID uuid.UUID) *models.Job {
	price := int64(50000)
	return &models.Job{
		ID:           uuid.New(),
		CustomerID:   customerID,
		TechnicianID: &technicianID,
		Status:       models.JobStatusCompleted,
		FinalPrice:   &price,
	}
}

func TestReviewService_SubmitReview_CustomerSuccess(t *testing.T) {
	reviews := new(mockReviewRepo)
	jobs := new(mockJobRepo)
	svc := NewReviewService(reviews, jobs)
	ctx := context.Background()
	principal := customerPrincipal()
	technicianID := uuid.New()

	job := completedJob(principal.ProfileID, technicianID)
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	reviews.On("Create", ctx, mock.MatchedBy(func(r *models.Review) bool {
		return r.ReviewerRole == models.ReviewerRoleCustomer && r.ReviewerID == principal.ProfileID && r.Rating == 5
	}), technicianID).Return(nil)

	review, err := svc.SubmitReview(ctx, principal, SubmitReviewInput{JobID: job.ID, Rating: 5, Comment: "Отличная работа"})
	assert.NoError(t, err)
	assert.Equal(t, models.ReviewerRoleCustomer, review.ReviewerRole)
	reviews.AssertExpectations(t)
}

func TestReviewService_SubmitReview_TechnicianSuccess(t *testing.T) {
	reviews := new(mockReviewRepo)
	jobs := new(mockJobRepo)
	svc := NewReviewService(reviews, jobs)
	ctx := context.Background()
	principal := technicianPrincipal()

	job := completedJob(uuid.New(), principal.ProfileID)
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	reviews.On("Create", ctx, mock.MatchedBy(func(r *models.Review) bool {
		return r.ReviewerRole == models.ReviewerRoleTechnician
	}), principal.ProfileID).Return(nil)

	review, err := svc.SubmitReview(ctx, principal, SubmitReviewInput{JobID: job.ID, Rating: 4})
	assert.NoError(t, err)
	assert.Equal(t, models.ReviewerRoleTechnician, review.ReviewerRole)
}

func TestReviewService_SubmitReview_InvalidRating(t *testing.T) {
	svc := NewReviewService(new(mockReviewRepo), new(mockJobRepo))

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.SubmitReview(context.Background(), customerPrincipal(), SubmitReviewInput{JobID: uuid.New(), Rating: rating})
		assert.Error(t, err)
		assert.Equal(t, apperror.ErrCodeInvalidRating, apperror.CodeOf(err))
	}
}

func TestReviewService_SubmitReview_JobNotCompleted(t *testing.T) {
	reviews := new(mockReviewRepo)
	jobs := new(mockJobRepo)
	svc := NewReviewService(reviews, jobs)
	ctx := context.Background()
	principal := customerPrincipal()
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, CustomerID: principal.ProfileID, Status: models.JobStatusAssigned}, nil)

	_, err := svc.SubmitReview(ctx, principal, SubmitReviewInput{JobID: jobID, Rating: 5})
	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestReviewService_SubmitReview_NotParticipant(t *testing.T) {
	reviews := new(mockReviewRepo)
	jobs := new(mockJobRepo)
	svc := NewReviewService(reviews, jobs)
	ctx := context.Background()

	job := completedJob(uuid.New(), uuid.New())
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)

	_, err := svc.SubmitReview(ctx, customerPrincipal(), SubmitReviewInput{JobID: job.ID, Rating: 5})
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeForbidden, apperror.CodeOf(err))
}

func TestReviewService_SubmitReview_Duplicate(t *testing.T) {
	reviews := new(mockReviewRepo)
	jobs := new(mockJobRepo)
	svc := NewReviewService(reviews, jobs)
	ctx := context.Background()
	principal := customerPrincipal()
	technicianID := uuid.New()

	job := completedJob(principal.ProfileID, technicianID)
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	reviews.On("Create", ctx, mock.Anything, technicianID).Return(repository.ErrDuplicateReview)

	_, err := svc.SubmitReview(ctx, principal, SubmitReviewInput{JobID: job.ID, Rating: 5})
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeDuplicateReview, apperror.CodeOf(err))
}

func TestReviewService_ListTechnicianReviews_ClampsPage(t *testing.T) {
	reviews := new(mockReviewRepo)
	svc := NewReviewService(reviews, new(mockJobRepo))
	ctx := context.Background()
	technicianID := uuid.New()

	reviews.On("ListForTechnician", ctx, technicianID, 20, 0).Return([]models.Review{}, nil)

	_, err := svc.ListTechnicianReviews(ctx, technicianID, -1, -1)
	assert.NoError(t, err)
	reviews.AssertExpectations(t)
}
