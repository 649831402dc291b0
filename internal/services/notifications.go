package services

import (
	"context"
	"fmt"

	"github.com/kodcommunity/forum/backend/internal/common"
	"github.com/kodcommunity/forum/backend/internal/logging"
	"github.com/kodcommunity/forum/backend/internal/models"
	"github.com/kodcommunity/forum/backend/internal/repository"
)

// NotificationService records and lists in-app notifications. Nothing is
// pushed to clients; they poll List.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	log           logging.Logger
}

func NewNotificationService(n repository.NotificationRepository, u repository.UserRepository, l logging.Logger) *NotificationService {
	return &NotificationService{notifications: n, users: u, log: l}
}

// Notify stores n for its recipient.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	if n.UserID <= 0 || !n.Type.Valid() {
		return fmt.Errorf("notify: %w", common.ErrValidation)
	}
	return s.notifications.Create(ctx, n)
}

// notifyQuietly records n and logs instead of failing the caller's operation.
func (s *NotificationService) notifyQuietly(ctx context.Context, n *models.Notification) {
	if s == nil {
		return
	}
	if err := s.Notify(ctx, n); err != nil {
		logging.FromContext(ctx, s.log).Warn(ctx, "notification not recorded",
			"type", n.Type, "recipient", n.UserID, "error", err)
	}
}

func (s *NotificationService) List(ctx context.Context, userID int) ([]models.Notification, error) {
	if userID <= 0 {
		return nil, common.ErrAuthRequired
	}
	list, err := s.notifications.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(list))
	for _, n := range list {
		ids = append(ids, n.FromUserID)
	}
	senders, err := publicSummaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if u, ok := senders[list[i].FromUserID]; ok {
			list[i].FromUser = &u
		}
	}
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID int) error {
	if userID <= 0 {
		return common.ErrAuthRequired
	}
	err := s.notifications.MarkRead(ctx, id, userID)
	if common.IsNotFound(err) {
		return common.NewError(common.ErrNotFound, "Notification not found")
	}
	return err
}
