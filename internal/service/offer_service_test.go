package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/repository"
)

type mockOfferRepo struct {
	mock.Mock
}

func (m *mockOfferRepo) Create(ctx context.Context, offer *models.PriceOffer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *mockOfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PriceOffer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceOffer), args.Error(1)
}

func (m *mockOfferRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.PriceOffer, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).([]models.PriceOffer), args.Error(1)
}

func (m *mockOfferRepo) ListByTechnician(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.PriceOffer, error) {
	args := m.Called(ctx, technicianID, limit, offset)
	return args.Get(0).([]models.PriceOffer), args.Error(1)
}

type mockSettlements struct {
	mock.Mock
}

func (m *mockSettlements) AcceptPriceOffer(ctx context.Context, offerID, customerID uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, offerID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *mockSettlements) CompleteJobAndTransfer(ctx context.Context, jobID, technicianID uuid.UUID, rate decimal.Decimal) (*models.Job, error) {
	args := m.Called(ctx, jobID, technicianID, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *mockSettlements) CancelJobAndRefund(ctx context.Context, jobID, customerID uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, jobID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

type mockJobRepo struct {
	mock.Mock
}

func (m *mockJobRepo) Create(ctx context.Context, job *models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *mockJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *mockJobRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Job, error) {
	args := m.Called(ctx, customerID, limit, offset)
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *mockJobRepo) ListByTechnician(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.Job, error) {
	args := m.Called(ctx, technicianID, limit, offset)
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *mockJobRepo) ListOpen(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]models.Job, error) {
	args := m.Called(ctx, categoryID, limit, offset)
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *mockJobRepo) ListOpenForTechnician(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.Job, error) {
	args := m.Called(ctx, technicianID, limit, offset)
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *mockJobRepo) MarkPending(ctx context.Context, jobID uuid.UUID) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *mockJobRepo) AddPhoto(ctx context.Context, photo *models.JobPhoto) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *mockJobRepo) ListPhotos(ctx context.Context, jobID uuid.UUID) ([]models.JobPhoto, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).([]models.JobPhoto), args.Error(1)
}

type mockParticipants struct {
	mock.Mock
}

func (m *mockParticipants) GetTechnician(ctx context.Context, id uuid.UUID) (*models.Technician, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Technician), args.Error(1)
}

func (m *mockParticipants) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func newOfferTestService() (*OfferService, *mockOfferRepo, *mockSettlements, *mockJobRepo, *mockParticipants) {
	offers := new(mockOfferRepo)
	settlements := new(mockSettlements)
	jobs := new(mockJobRepo)
	participants := new(mockParticipants)
	notifications, _ := newTestNotificationService()
	svc := NewOfferService(offers, settlements, jobs, participants, notifications)
	return svc, offers, settlements, jobs, participants
}

func TestOfferService_SubmitOffer_Success(t *testing.T) {
	svc, offers, _, jobs, participants := newOfferTestService()
	ctx := context.Background()
	principal := technicianPrincipal()
	jobID := uuid.New()
	customerID := uuid.New()

	offers.On("Create", ctx, mock.MatchedBy(func(o *models.PriceOffer) bool {
		return o.JobID == jobID && o.TechnicianID == principal.ProfileID && o.Amount == 50000
	})).Return(nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, CustomerID: customerID, Title: "Ремонт крана"}, nil)
	participants.On("GetCustomer", ctx, customerID).Return(&models.Customer{ID: customerID, UserID: uuid.New()}, nil)

	offer, err := svc.SubmitOffer(ctx, principal, SubmitOfferInput{JobID: jobID, Amount: 50000, Message: "Приеду завтра"})
	assert.NoError(t, err)
	assert.Equal(t, int64(50000), offer.Amount)
	offers.AssertExpectations(t)
}

func TestOfferService_SubmitOffer_CustomerForbidden(t *testing.T) {
	svc, _, _, _, _ := newOfferTestService()

	_, err := svc.SubmitOffer(context.Background(), customerPrincipal(), SubmitOfferInput{JobID: uuid.New(), Amount: 50000})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestOfferService_SubmitOffer_Duplicate(t *testing.T) {
	svc, offers, _, jobs, participants := newOfferTestService()
	ctx := context.Background()
	principal := technicianPrincipal()
	jobID := uuid.New()
	customerID := uuid.New()

	offers.On("Create", ctx, mock.Anything).Return(nil).Once()
	offers.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicateOffer).Once()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, CustomerID: customerID, Title: "Ремонт крана"}, nil)
	participants.On("GetCustomer", ctx, customerID).Return(&models.Customer{ID: customerID, UserID: uuid.New()}, nil)

	_, err := svc.SubmitOffer(ctx, principal, SubmitOfferInput{JobID: jobID, Amount: 50000})
	assert.NoError(t, err)

	_, err = svc.SubmitOffer(ctx, principal, SubmitOfferInput{JobID: jobID, Amount: 45000})
	assert.Equal(t, apperror.ErrCodeDuplicateOffer, apperror.CodeOf(err))
	offers.AssertExpectations(t)
}

func TestOfferService_SubmitOffer_NonPositiveAmount(t *testing.T) {
	svc, _, _, _, _ := newOfferTestService()

	_, err := svc.SubmitOffer(context.Background(), technicianPrincipal(), SubmitOfferInput{JobID: uuid.New(), Amount: 0})
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeInvalidAmount, apperror.CodeOf(err))
}

func TestOfferService_AcceptOffer_Success(t *testing.T) {
	svc, _, settlements, _, participants := newOfferTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	offerID := uuid.New()
	technicianID := uuid.New()
	price := int64(50000)

	assigned := &models.Job{
		ID:           uuid.New(),
		CustomerID:   principal.ProfileID,
		TechnicianID: &technicianID,
		Status:       models.JobStatusAssigned,
		FinalPrice:   &price,
		Title:        "Ремонт крана",
	}
	settlements.On("AcceptPriceOffer", ctx, offerID, principal.ProfileID).Return(assigned, nil)
	participants.On("GetTechnician", ctx, technicianID).Return(&models.Technician{ID: technicianID, UserID: uuid.New()}, nil)

	job, err := svc.AcceptOffer(ctx, principal, offerID)
	assert.NoError(t, err)
	assert.Equal(t, models.JobStatusAssigned, job.Status)
	assert.Equal(t, price, *job.FinalPrice)
	settlements.AssertExpectations(t)
}

func TestOfferService_AcceptOffer_TechnicianForbidden(t *testing.T) {
	svc, _, _, _, _ := newOfferTestService()

	_, err := svc.AcceptOffer(context.Background(), technicianPrincipal(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestOfferService_AcceptOffer_InsufficientFunds(t *testing.T) {
	svc, _, settlements, _, _ := newOfferTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	offerID := uuid.New()

	settlements.On("AcceptPriceOffer", ctx, offerID, principal.ProfileID).Return(nil, apperror.ErrInsufficientFunds)

	_, err := svc.AcceptOffer(ctx, principal, offerID)
	assert.Error(t, err)
	assert.True(t, apperror.IsInsufficientFunds(err))
}

func TestOfferService_ListJobOffers_OtherCustomerForbidden(t *testing.T) {
	svc, _, _, jobs, _ := newOfferTestService()
	ctx := context.Background()
	principal := customerPrincipal()
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, CustomerID: uuid.New()}, nil)

	_, err := svc.ListJobOffers(ctx, principal, jobID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestOfferService_ListMyOffers_CustomerForbidden(t *testing.T) {
	svc, _, _, _, _ := newOfferTestService()

	_, err := svc.ListMyOffers(context.Background(), customerPrincipal(), 20, 0)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
