package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
)

type mockAddressRepo struct {
	mock.Mock
}

func (m *mockAddressRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CustomerAddress, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomerAddress), args.Error(1)
}

func (m *mockAddressRepo) GetDefault(ctx context.Context, customerID uuid.UUID) (*models.CustomerAddress, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomerAddress), args.Error(1)
}

type mockCategoryRepo struct {
	mock.Mock
}

func (m *mockCategoryRepo) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

type mockPhotoStorage struct {
	mock.Mock
}

func (m *mockPhotoStorage) Save(ctx context.Context, reader io.Reader, filename string) (string, error) {
	args := m.Called(ctx, reader, filename)
	return args.String(0), args.Error(1)
}

func newJobTestService() (*JobService, *mockJobRepo, *mockSettlements, *mockAddressRepo, *mockCategoryRepo, *mockPhotoStorage, *mockParticipants) {
	jobs := new(mockJobRepo)
	settlements := new(mockSettlements)
	addresses := new(mockAddressRepo)
	categories := new(mockCategoryRepo)
	photos := new(mockPhotoStorage)
	participants := new(mockParticipants)
	notifications, _ := newTestNotificationService()
	svc := NewJobService(jobs, settlements, addresses, categories, photos, participants, notifications, decimal.RequireFromString("0.15"), 3)
	return svc, jobs, settlements, addresses, categories, photos, participants
}

func TestJobService_CreateJob_TechnicianForbidden(t *testing.T) {
	svc, _, _, _, _, _, _ := newJobTestService()

	_, err := svc.CreateJob(context.Background(), technicianPrincipal(), CreateJobInput{Title: "Починить розетку"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestJobService_CreateJob_DefaultAddress(t *testing.T) {
	svc, jobs, _, addresses, categories, _, _ := newJobTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	categoryID := uuid.New()
	addressID := uuid.New()

	categories.On("GetCategory", ctx, categoryID).Return(&models.Category{ID: categoryID, Name: "Сантехника"}, nil)
	addresses.On("GetDefault", ctx, principal.ProfileID).Return(&models.CustomerAddress{ID: addressID, CustomerID: principal.ProfileID}, nil)
	jobs.On("Create", ctx, mock.MatchedBy(func(j *models.Job) bool {
		return j.CustomerID == principal.ProfileID && j.AddressID == addressID && j.Title == "Починить розетку"
	})).Return(nil)

	job, err := svc.CreateJob(ctx, principal, CreateJobInput{CategoryID: categoryID, Title: "Починить розетку"})
	assert.NoError(t, err)
	assert.Equal(t, addressID, job.AddressID)
	jobs.AssertExpectations(t)
}

func TestJobService_CreateJob_NoDefaultAddress(t *testing.T) {
	svc, _, _, addresses, categories, _, _ := newJobTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	categoryID := uuid.New()

	categories.On("GetCategory", ctx, categoryID).Return(&models.Category{ID: categoryID}, nil)
	addresses.On("GetDefault", ctx, principal.ProfileID).Return(nil, apperror.ErrNoDefaultAddress)

	_, err := svc.CreateJob(ctx, principal, CreateJobInput{CategoryID: categoryID, Title: "Починить розетку"})
	assert.ErrorIs(t, err, apperror.ErrNoDefaultAddress)
}

func TestJobService_CreateJob_ForeignAddressForbidden(t *testing.T) {
	svc, _, _, addresses, categories, _, _ := newJobTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	categoryID := uuid.New()
	addressID := uuid.New()

	categories.On("GetCategory", ctx, categoryID).Return(&models.Category{ID: categoryID}, nil)
	addresses.On("GetByID", ctx, addressID).Return(&models.CustomerAddress{ID: addressID, CustomerID: uuid.New()}, nil)

	_, err := svc.CreateJob(ctx, principal, CreateJobInput{CategoryID: categoryID, AddressID: &addressID, Title: "Починить розетку"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestJobService_CreateJob_PhotoFailureSkipped(t *testing.T) {
	svc, jobs, _, addresses, categories, photos, _ := newJobTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	categoryID := uuid.New()

	categories.On("GetCategory", ctx, categoryID).Return(&models.Category{ID: categoryID}, nil)
	addresses.On("GetDefault", ctx, principal.ProfileID).Return(&models.CustomerAddress{ID: uuid.New(), CustomerID: principal.ProfileID}, nil)
	jobs.On("Create", ctx, mock.Anything).Return(nil)
	photos.On("Save", ctx, mock.Anything, "before.jpg").Return("", errors.New("диск недоступен"))

	job, err := svc.CreateJob(ctx, principal, CreateJobInput{
		CategoryID: categoryID,
		Title:      "Починить розетку",
		Photos:     []PhotoUpload{{Reader: strings.NewReader("data"), Filename: "before.jpg", IsBefore: true}},
	})
	assert.NoError(t, err)
	assert.Empty(t, job.Photos)
}

func TestJobService_CreateJob_PhotosTruncated(t *testing.T) {
	svc, jobs, _, addresses, categories, photos, _ := newJobTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	categoryID := uuid.New()

	categories.On("GetCategory", ctx, categoryID).Return(&models.Category{ID: categoryID}, nil)
	addresses.On("GetDefault", ctx, principal.ProfileID).Return(&models.CustomerAddress{ID: uuid.New(), CustomerID: principal.ProfileID}, nil)
	jobs.On("Create", ctx, mock.Anything).Return(nil)
	photos.On("Save", ctx, mock.Anything, mock.Anything).Return("media/photo.jpg", nil)
	jobs.On("AddPhoto", ctx, mock.Anything).Return(nil)

	uploads := make([]PhotoUpload, 5)
	for i := range uploads {
		uploads[i] = PhotoUpload{Reader: strings.NewReader("data"), Filename: "p.jpg", IsBefore: true}
	}

	job, err := svc.CreateJob(ctx, principal, CreateJobInput{CategoryID: categoryID, Title: "Починить розетку", Photos: uploads})
	assert.NoError(t, err)
	assert.Len(t, job.Photos, 3)
	photos.AssertNumberOfCalls(t, "Save", 3)
}

func TestJobService_MarkPending_NotOwner(t *testing.T) {
	svc, jobs, _, _, _, _, _ := newJobTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, CustomerID: uuid.New(), Status: models.JobStatusWaitingForOffers}, nil)

	_, err := svc.MarkPending(ctx, principal, jobID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	jobs.AssertNotCalled(t, "MarkPending", mock.Anything, mock.Anything)
}

func TestJobService_MarkPending_Success(t *testing.T) {
	svc, jobs, _, _, _, _, _ := newJobTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	jobID := uuid.New()

	waiting := &models.Job{ID: jobID, CustomerID: principal.ProfileID, Status: models.JobStatusWaitingForOffers}
	pending := &models.Job{ID: jobID, CustomerID: principal.ProfileID, Status: models.JobStatusPending}
	jobs.On("GetByID", ctx, jobID).Return(waiting, nil).Once()
	jobs.On("MarkPending", ctx, jobID).Return(nil)
	jobs.On("GetByID", ctx, jobID).Return(pending, nil).Once()

	job, err := svc.MarkPending(ctx, principal, jobID)
	assert.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)
}

func TestJobService_CancelJob_Success(t *testing.T) {
	svc, _, settlements, _, _, _, participants := newJobTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	jobID := uuid.New()
	technicianID := uuid.New()

	cancelled := &models.Job{ID: jobID, CustomerID: principal.ProfileID, TechnicianID: &technicianID, Status: models.JobStatusCancelled, Title: "Починить розетку"}
	settlements.On("CancelJobAndRefund", ctx, jobID, principal.ProfileID).Return(cancelled, nil)
	participants.On("GetTechnician", ctx, technicianID).Return(&models.Technician{ID: technicianID, UserID: uuid.New()}, nil)

	job, err := svc.CancelJob(ctx, principal, jobID)
	assert.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, job.Status)
}

func TestJobService_CancelJob_AlreadyCancelled(t *testing.T) {
	svc, _, settlements, _, _, _, _ := newJobTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	jobID := uuid.New()

	settlements.On("CancelJobAndRefund", ctx, jobID, principal.ProfileID).
		Return(nil, apperror.New(apperror.ErrCodeInvalidState, "заявку нельзя отменить в текущем статусе"))

	_, err := svc.CancelJob(ctx, principal, jobID)
	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestJobService_CompleteJob_Success(t *testing.T) {
	svc, _, settlements, _, _, _, participants := newJobTestService()
	ctx := context.Background()
	principal := technicianPrincipal()
	jobID := uuid.New()
	price := int64(50000)

	completed := &models.Job{
		ID:           jobID,
		CustomerID:   uuid.New(),
		TechnicianID: &principal.ProfileID,
		Status:       models.JobStatusCompleted,
		FinalPrice:   &price,
		Title:        "Починить розетку",
	}
	settlements.On("CompleteJobAndTransfer", ctx, jobID, principal.ProfileID, decimal.RequireFromString("0.15")).Return(completed, nil)
	participants.On("GetCustomer", ctx, completed.CustomerID).Return(&models.Customer{ID: completed.CustomerID, UserID: uuid.New()}, nil)

	job, err := svc.CompleteJob(ctx, principal, jobID)
	assert.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	settlements.AssertExpectations(t)
}

func TestJobService_CompleteJob_CustomerForbidden(t *testing.T) {
	svc, _, _, _, _, _, _ := newJobTestService()

	_, err := svc.CompleteJob(context.Background(), customerPrincipal(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestJobService_AddCompletionPhoto_NotAssigned(t *testing.T) {
	svc, jobs, _, _, _, _, _ := newJobTestService()
	ctx := context.Background()
	principal := technicianPrincipal()
	jobID := uuid.New()
	other := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, TechnicianID: &other, Status: models.JobStatusAssigned}, nil)

	_, err := svc.AddCompletionPhoto(ctx, principal, jobID, PhotoUpload{Reader: strings.NewReader("data"), Filename: "after.jpg"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestJobService_ListOpenJobs_TechnicianSkillMatched(t *testing.T) {
	svc, jobs, _, _, _, _, _ := newJobTestService()
	ctx := context.Background()
	principal := technicianPrincipal()

	matched := []models.Job{{ID: uuid.New(), Status: models.JobStatusWaitingForOffers}}
	jobs.On("ListOpenForTechnician", ctx, principal.ProfileID, 20, 0).Return(matched, nil)

	result, err := svc.ListOpenJobs(ctx, principal, nil, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, matched, result)
	jobs.AssertNotCalled(t, "ListOpen", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJobService_ListOpenJobs_CategoryFilter(t *testing.T) {
	svc, jobs, _, _, _, _, _ := newJobTestService()
	ctx := context.Background()
	principal := technicianPrincipal()
	categoryID := uuid.New()

	jobs.On("ListOpen", ctx, &categoryID, 20, 0).Return([]models.Job{}, nil)

	_, err := svc.ListOpenJobs(ctx, principal, &categoryID, 0, 0)
	assert.NoError(t, err)
	jobs.AssertNotCalled(t, "ListOpenForTechnician", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
