package models

import "time"

type NotificationType string

const (
	NotificationReply   NotificationType = "reply"
	NotificationLike    NotificationType = "like"
	NotificationFollow  NotificationType = "follow"
	NotificationMention NotificationType = "mention"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationReply, NotificationLike, NotificationFollow, NotificationMention:
		return true
	}
	return false
}

type Notification struct {
	ID         int              `gorm:"primaryKey" json:"id"`
	UserID     int              `gorm:"not null;index" json:"userId"` // recipient
	FromUserID int              `gorm:"not null" json:"fromUserId"`
	FromUser   *UserSummary     `gorm:"-" json:"fromUser,omitempty"`
	Type       NotificationType `gorm:"type:varchar(16);not null" json:"type"`
	Content    string           `gorm:"type:text" json:"content"`
	Link       string           `json:"link"`
	Read       bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt  time.Time        `json:"createdAt"`
}
