package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kodcommunity/forum/backend/internal/models"
)

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func orderedMessages(db *gorm.DB) *gorm.DB {
	return db.Order("messages.id ASC")
}

func (r *conversationRepository) FindOrCreate(ctx context.Context, x, y int) (*models.Conversation, error) {
	a, b := models.Pair(x, y)
	db := r.db.WithContext(ctx)

	// The unique index on the pair turns a racing insert into a no-op.
	fresh := models.Conversation{ParticipantA: a, ParticipantB: b}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "participant_a"}, {Name: "participant_b"}},
		DoNothing: true,
	}).Create(&fresh).Error
	if err != nil {
		return nil, translate(err, "create conversation")
	}

	var conv models.Conversation
	err = db.Preload("Messages", orderedMessages).
		Where("participant_a = ? AND participant_b = ?", a, b).
		First(&conv).Error
	if err != nil {
		return nil, translate(err, "find conversation")
	}
	return &conv, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id int) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", orderedMessages).
		First(&conv, id).Error
	if err != nil {
		return nil, translate(err, "get conversation")
	}
	return &conv, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID int) ([]models.Conversation, error) {
	convs := []models.Conversation{}
	err := r.db.WithContext(ctx).
		Preload("Messages", orderedMessages).
		Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("updated_at DESC, id DESC").
		Find(&convs).Error
	if err != nil {
		return nil, translate(err, "list conversations")
	}
	return convs, nil
}

func (r *conversationRepository) AppendMessage(ctx context.Context, conversationID int, msg *models.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Updates(map[string]any{
				"last_message": msg.Text,
				"unread_count": gorm.Expr("unread_count + 1"),
				"updated_at":   time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		msg.ConversationID = conversationID
		return tx.Create(msg).Error
	})
	return translate(err, "append message")
}
