package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/money"
	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homeservice-backend/internal/validation"
)

// OfferRepository описывает зависимости OfferService от слоя хранилища.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.PriceOffer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PriceOffer, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.PriceOffer, error)
	ListByTechnician(ctx context.Context, technicianID uuid.UUID, limit, offset int) ([]models.PriceOffer, error)
}

// OfferSettlementRepository атомарно принимает предложение с резервом средств.
type OfferSettlementRepository interface {
	AcceptPriceOffer(ctx context.Context, offerID, customerID uuid.UUID) (*models.Job, error)
}

// OfferJobRepository выдаёт заявку для проверок доступа.
type OfferJobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// OfferParticipants находит учётные записи участников для уведомлений.
type OfferParticipants interface {
	GetTechnician(ctx context.Context, id uuid.UUID) (*models.Technician, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// SubmitOfferInput содержит данные нового предложения.
type SubmitOfferInput struct {
	JobID   uuid.UUID
	Amount  int64
	Message string
}

// OfferService управляет ценовыми предложениями мастеров.
type OfferService struct {
	offers        OfferRepository
	settlements   OfferSettlementRepository
	jobs          OfferJobRepository
	participants  OfferParticipants
	notifications *NotificationService
}

// NewOfferService создаёт сервис предложений.
func NewOfferService(offers OfferRepository, settlements OfferSettlementRepository, jobs OfferJobRepository, participants OfferParticipants, notifications *NotificationService) *OfferService {
	return &OfferService{
		offers:        offers,
		settlements:   settlements,
		jobs:          jobs,
		participants:  participants,
		notifications: notifications,
	}
}

// SubmitOffer подаёт предложение мастера по открытой заявке. Мастер подаёт
// по заявке не более одного предложения, повтор отклоняется. Заказчик
// получает уведомление о новом предложении.
func (s *OfferService) SubmitOffer(ctx context.Context, principal *models.Principal, in SubmitOfferInput) (*models.PriceOffer, error) {
	if principal.Role != models.RoleTechnician {
		return nil, apperror.ErrForbidden
	}
	if in.Amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeInvalidAmount, "цена предложения должна быть положительной")
	}
	if err := validation.ValidateLength("сообщение", in.Message, 0, validation.MaxOfferMessageLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	offer := &models.PriceOffer{
		JobID:        in.JobID,
		TechnicianID: principal.ProfileID,
		Amount:       in.Amount,
		Message:      strings.TrimSpace(in.Message),
	}
	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}

	if job, err := s.jobs.GetByID(ctx, in.JobID); err == nil {
		if customer, err := s.participants.GetCustomer(ctx, job.CustomerID); err == nil {
			s.notifications.Notify(ctx, customer.UserID, models.NotificationNewOffer,
				"Новое предложение",
				"Мастер предложил "+money.FormatMinor(offer.Amount)+" по заявке «"+job.Title+"»",
				map[string]interface{}{"job_id": job.ID, "offer_id": offer.ID})
		}
	}

	return offer, nil
}

// AcceptOffer принимает предложение от имени заказчика. Эффекты атомарны:
// предложение принято, остальные отклонены, заявка назначена с фиксацией
// цены, сумма зарезервирована. Нехватка средств откатывает всё.
func (s *OfferService) AcceptOffer(ctx context.Context, principal *models.Principal, offerID uuid.UUID) (*models.Job, error) {
	if principal.Role != models.RoleCustomer {
		return nil, apperror.ErrForbidden
	}

	job, err := s.settlements.AcceptPriceOffer(ctx, offerID, principal.ProfileID)
	if err != nil {
		return nil, err
	}

	if job.TechnicianID != nil {
		if technician, err := s.participants.GetTechnician(ctx, *job.TechnicianID); err == nil {
			s.notifications.Notify(ctx, technician.UserID, models.NotificationOfferAccept,
				"Предложение принято",
				"Ваше предложение по заявке «"+job.Title+"» принято",
				map[string]interface{}{"job_id": job.ID, "offer_id": offerID})
		}
	}

	return job, nil
}

// ListJobOffers возвращает предложения по заявке. Доступно владельцу заявки.
func (s *OfferService) ListJobOffers(ctx context.Context, principal *models.Principal, jobID uuid.UUID) ([]models.PriceOffer, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if principal.Role == models.RoleCustomer && job.CustomerID != principal.ProfileID {
		return nil, apperror.ErrForbidden
	}
	return s.offers.ListByJob(ctx, jobID)
}

// ListMyOffers возвращает предложения мастера.
func (s *OfferService) ListMyOffers(ctx context.Context, principal *models.Principal, limit, offset int) ([]models.PriceOffer, error) {
	if principal.Role != models.RoleTechnician {
		return nil, apperror.ErrForbidden
	}
	limit, offset = clampPage(limit, offset)
	return s.offers.ListByTechnician(ctx, principal.ProfileID, limit, offset)
}
