package service

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/homeservice-backend/internal/logger"
	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/money"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/validation"
)

// JobRepository описывает зависимости JobService от слоя хранилища заявок.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Job, error)
	ListByTechnician(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.Job, error)
	ListOpen(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]models.Job, error)
	ListOpenForTechnician(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.Job, error)
	MarkPending(ctx context.Context, jobID uuid.UUID) error
	AddPhoto(ctx context.Context, photo *models.JobPhoto) error
	ListPhotos(ctx context.Context, jobID uuid.UUID) ([]models.JobPhoto, error)
}

// JobSettlementRepository выполняет атомарные переходы с расчётами.
type JobSettlementRepository interface {
	CompleteJobAndTransfer(ctx context.Context, jobID, technicianID uuid.UUID, commissionRate decimal.Decimal) (*models.Job, error)
	CancelJobAndRefund(ctx context.Context, jobID, customerID uuid.UUID) (*models.Job, error)
}

// JobAddressRepository выдаёт адреса заказчика для подстановки в заявку.
type JobAddressRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.CustomerAddress, error)
	GetDefault(ctx context.Context, customerID uuid.UUID) (*models.CustomerAddress, error)
}

// JobCategoryRepository проверяет существование категории.
type JobCategoryRepository interface {
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// JobPhotoStorage сохраняет загруженные фотографии.
type JobPhotoStorage interface {
	Save(ctx context.Context, reader io.Reader, filename string) (string, error)
}

// JobParticipants находит учётные записи участников заявки для уведомлений.
type JobParticipants interface {
	GetTechnician(ctx context.Context, id uuid.UUID) (*models.Technician, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// PhotoUpload — загружаемая фотография заявки.
type PhotoUpload struct {
	Reader   io.Reader
	Filename string
	IsBefore bool
}

// CreateJobInput содержит данные новой заявки.
type CreateJobInput struct {
	CategoryID  uuid.UUID
	AddressID   *uuid.UUID
	Title       string
	Description string
	Photos      []PhotoUpload
}

// JobService управляет жизненным циклом заявок.
type JobService struct {
	jobs           JobRepository
	settlements    JobSettlementRepository
	addresses      JobAddressRepository
	categories     JobCategoryRepository
	photoStorage   JobPhotoStorage
	participants   JobParticipants
	notifications  *NotificationService
	commissionRate decimal.Decimal
	maxJobPhotos   int
}

// NewJobService создаёт сервис заявок.
func NewJobService(
	jobs JobRepository,
	settlements JobSettlementRepository,
	addresses JobAddressRepository,
	categories JobCategoryRepository,
	photoStorage JobPhotoStorage,
	participants JobParticipants,
	notifications *NotificationService,
	commissionRate decimal.Decimal,
	maxJobPhotos int,
) *JobService {
	return &JobService{
		jobs:           jobs,
		settlements:    settlements,
		addresses:      addresses,
		categories:     categories,
		photoStorage:   photoStorage,
		participants:   participants,
		notifications:  notifications,
		commissionRate: commissionRate,
		maxJobPhotos:   maxJobPhotos,
	}
}

// CreateJob создаёт заявку в статусе waiting_for_offers. Если адрес не
// указан, подставляется адрес заказчика по умолчанию; его отсутствие —
// ошибка NoDefaultAddress. Фотографии загружаются по принципу best-effort:
// сбой отдельной загрузки логируется и пропускается, заявка создаётся.
func (s *JobService) CreateJob(ctx context.Context, principal *models.Principal, in CreateJobInput) (*models.Job, error) {
	if principal.Role != models.RoleCustomer {
		return nil, apperror.ErrForbidden
	}
	if err := validation.ValidateLength("заголовок", in.Title, validation.MinJobTitleLength, validation.MaxJobTitleLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание", in.Description, 0, validation.MaxJobDescriptionLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if _, err := s.categories.GetCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	var addressID uuid.UUID
	if in.AddressID != nil {
		addr, err := s.addresses.GetByID(ctx, *in.AddressID)
		if err != nil {
			return nil, err
		}
		if addr.CustomerID != principal.ProfileID {
			return nil, apperror.ErrForbidden
		}
		addressID = addr.ID
	} else {
		addr, err := s.addresses.GetDefault(ctx, principal.ProfileID)
		if err != nil {
			return nil, err
		}
		addressID = addr.ID
	}

	job := &models.Job{
		CustomerID:  principal.ProfileID,
		CategoryID:  in.CategoryID,
		AddressID:   addressID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	photos := in.Photos
	if len(photos) > s.maxJobPhotos {
		photos = photos[:s.maxJobPhotos]
	}
	for _, upload := range photos {
		path, err := s.photoStorage.Save(ctx, upload.Reader, upload.Filename)
		if err != nil {
			logger.Log.WithField("job_id", job.ID).WithError(err).Warn("job service: не удалось сохранить фото, пропускаем")
			continue
		}
		photo := &models.JobPhoto{JobID: job.ID, FilePath: path, IsBefore: upload.IsBefore}
		if err := s.jobs.AddPhoto(ctx, photo); err != nil {
			logger.Log.WithField("job_id", job.ID).WithError(err).Warn("job service: не удалось записать фото, пропускаем")
			continue
		}
		job.Photos = append(job.Photos, *photo)
	}

	return job, nil
}

// GetJob возвращает заявку с фотографиями.
func (s *JobService) GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	photos, err := s.jobs.ListPhotos(ctx, jobID)
	if err != nil {
		return nil, err
	}
	job.Photos = photos
	return job, nil
}

// ListCustomerJobs возвращает заявки заказчика.
func (s *JobService) ListCustomerJobs(ctx context.Context, principal *models.Principal, limit, offset int) ([]models.Job, error) {
	limit, offset = clampPage(limit, offset)
	return s.jobs.ListByCustomer(ctx, principal.ProfileID, limit, offset)
}

// ListTechnicianJobs возвращает заявки, назначенные мастеру.
func (s *JobService) ListTechnicianJobs(ctx context.Context, principal *models.Principal, limit, offset int) ([]models.Job, error) {
	limit, offset = clampPage(limit, offset)
	return s.jobs.ListByTechnician(ctx, principal.ProfileID, limit, offset)
}

// ListOpenJobs возвращает открытые заявки для дашборда мастера. Мастер без
// явного фильтра по категории видит заявки, подходящие по его навыкам.
func (s *JobService) ListOpenJobs(ctx context.Context, principal *models.Principal, categoryID *uuid.UUID, limit, offset int) ([]models.Job, error) {
	limit, offset = clampPage(limit, offset)
	if categoryID == nil && principal != nil && principal.Role == models.RoleTechnician {
		return s.jobs.ListOpenForTechnician(ctx, principal.ProfileID, limit, offset)
	}
	return s.jobs.ListOpen(ctx, categoryID, limit, offset)
}

// MarkPending переводит заявку заказчика из waiting_for_offers в pending:
// сбор предложений остановлен, заявка ожидает решения. Из pending заявку
// можно отменить.
func (s *JobService) MarkPending(ctx context.Context, principal *models.Principal, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.CustomerID != principal.ProfileID {
		return nil, apperror.ErrForbidden
	}
	if err := s.jobs.MarkPending(ctx, jobID); err != nil {
		return nil, err
	}
	return s.jobs.GetByID(ctx, jobID)
}

// CancelJob отменяет заявку заказчика. Допустим только статус pending;
// повторная отмена возвращает InvalidState. Зарезервированные средства
// возвращаются в доступный остаток.
func (s *JobService) CancelJob(ctx context.Context, principal *models.Principal, jobID uuid.UUID) (*models.Job, error) {
	if principal.Role != models.RoleCustomer {
		return nil, apperror.ErrForbidden
	}

	job, err := s.settlements.CancelJobAndRefund(ctx, jobID, principal.ProfileID)
	if err != nil {
		return nil, err
	}

	if job.TechnicianID != nil {
		if technician, err := s.participants.GetTechnician(ctx, *job.TechnicianID); err == nil {
			s.notifications.Notify(ctx, technician.UserID, models.NotificationJobCancelled,
				"Заявка отменена", "Заказчик отменил заявку «"+job.Title+"»",
				map[string]interface{}{"job_id": job.ID})
		}
	}

	return job, nil
}

// CompleteJob завершает назначенную заявку от имени назначенного мастера
// и проводит расчёт: мастер получает цену за вычетом комиссии, комиссия
// зачисляется платформе, резерв заказчика списывается.
func (s *JobService) CompleteJob(ctx context.Context, principal *models.Principal, jobID uuid.UUID) (*models.Job, error) {
	if principal.Role != models.RoleTechnician {
		return nil, apperror.ErrForbidden
	}

	job, err := s.settlements.CompleteJobAndTransfer(ctx, jobID, principal.ProfileID, s.commissionRate)
	if err != nil {
		return nil, err
	}

	if customer, err := s.participants.GetCustomer(ctx, job.CustomerID); err == nil {
		body := "Мастер завершил заявку «" + job.Title + "»"
		if job.FinalPrice != nil {
			body += ", списано " + money.FormatMinor(*job.FinalPrice)
		}
		s.notifications.Notify(ctx, customer.UserID, models.NotificationJobCompleted,
			"Заявка выполнена", body,
			map[string]interface{}{"job_id": job.ID})
	}

	return job, nil
}

// AddCompletionPhoto прикладывает фото результата к назначенной мастеру заявке.
func (s *JobService) AddCompletionPhoto(ctx context.Context, principal *models.Principal, jobID uuid.UUID, upload PhotoUpload) (*models.JobPhoto, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.TechnicianID == nil || *job.TechnicianID != principal.ProfileID {
		return nil, apperror.ErrForbidden
	}

	path, err := s.photoStorage.Save(ctx, upload.Reader, upload.Filename)
	if err != nil {
		return nil, err
	}

	photo := &models.JobPhoto{JobID: job.ID, FilePath: path, IsBefore: false}
	if err := s.jobs.AddPhoto(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
