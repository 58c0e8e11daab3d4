package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/homeservice-backend/internal/models"
)

func TestNotificationService_List_ClampsLimit(t *testing.T) {
	svc, repo := newTestNotificationService()
	ctx := context.Background()
	userID := uuid.New()

	repo.On("ListByUser", ctx, userID, 20, 0).Return([]models.Notification{}, nil)

	_, err := svc.List(ctx, userID, 0, -3)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestNotificationService_Notify_DeliversToPusher(t *testing.T) {
	repo := new(mockNotificationRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	delivered := make(chan *models.Notification, 1)
	svc := NewNotificationService(repo, pusherFunc(func(userID uuid.UUID, n *models.Notification) {
		delivered <- n
	}))

	userID := uuid.New()
	svc.Notify(context.Background(), userID, "job_completed", "Заявка выполнена", "", nil)

	select {
	case n := <-delivered:
		assert.Equal(t, userID, n.UserID)
		assert.Equal(t, "job_completed", n.Type)
	default:
		t.Fatal("уведомление не доставлено")
	}
}

func TestNotificationService_DeleteAll(t *testing.T) {
	svc, repo := newTestNotificationService()
	ctx := context.Background()
	userID := uuid.New()

	repo.On("DeleteAll", ctx, userID).Return(nil)

	err := svc.DeleteAll(ctx, userID)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

type pusherFunc func(userID uuid.UUID, notification *models.Notification)

func (f pusherFunc) Push(userID uuid.UUID, notification *models.Notification) {
	f(userID, notification)
}
