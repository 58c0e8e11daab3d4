package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/homeservice-backend/internal/logger"
	"github.com/ignatzorin/homeservice-backend/internal/models"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}

// NotificationPusher доставляет уведомление подключённым клиентам.
// Реализуется WebSocket-хабом.
type NotificationPusher interface {
	Push(userID uuid.UUID, notification *models.Notification)
}

// NotificationService содержит бизнес-логику работы с уведомлениями.
type NotificationService struct {
	repo   NotificationRepository
	pusher NotificationPusher
}

// NewNotificationService создаёт новый сервис уведомлений.
func NewNotificationService(repo NotificationRepository, pusher NotificationPusher) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher}
}

// Notify создаёт уведомление и доставляет его по WebSocket.
// Ошибка доставки или записи не влияет на вызывающую операцию.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		logger.Log.WithError(err).Warn("notification service: не удалось сериализовать payload")
		payload = json.RawMessage(`{}`)
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Body:    body,
		Payload: payload,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		logger.Log.WithField("user_id", userID).WithError(err).Warn("notification service: не удалось сохранить уведомление")
		return
	}

	if s.pusher != nil {
		s.pusher.Push(userID, notification)
	}
}

// List возвращает уведомления пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// CountUnread возвращает число непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead отмечает уведомление прочитанным.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		return fmt.Errorf("notification service: %w", err)
	}
	return nil
}

// MarkAllRead отмечает все уведомления пользователя прочитанными.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("notification service: %w", err)
	}
	return nil
}

// DeleteAll удаляет все уведомления пользователя.
func (s *NotificationService) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteAll(ctx, userID); err != nil {
		return fmt.Errorf("notification service: %w", err)
	}
	return nil
}
