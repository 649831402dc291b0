package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kodcommunity/forum/backend/internal/models"
)

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return translate(r.db.WithContext(ctx).Create(n).Error, "create notification")
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID int) ([]models.Notification, error) {
	out := []models.Notification{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "list notifications")
	}
	return out, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return translate(res.Error, "mark notification read")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "mark notification read")
	}
	return nil
}
