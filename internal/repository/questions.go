package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kodcommunity/forum/backend/internal/common"
	"github.com/kodcommunity/forum/backend/internal/models"
)

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, q *models.Question) error {
	return translate(r.db.WithContext(ctx).Create(q).Error, "create question")
}

func (r *questionRepository) GetByID(ctx context.Context, id int) (*models.Question, error) {
	var q models.Question
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("answers.id ASC") }).
		First(&q, id).Error
	if err != nil {
		return nil, translate(err, "get question")
	}
	return &q, nil
}

func (r *questionRepository) List(ctx context.Context) ([]models.Question, error) {
	questions := []models.Question{}
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&questions).Error; err != nil {
		return nil, translate(err, "list questions")
	}
	return questions, nil
}

func (r *questionRepository) ListPopular(ctx context.Context, minVotes int) ([]models.Question, error) {
	questions := []models.Question{}
	err := r.db.WithContext(ctx).
		Where("votes > ?", minVotes).
		Order("votes DESC, created_at DESC").
		Find(&questions).Error
	if err != nil {
		return nil, translate(err, "list popular questions")
	}
	return questions, nil
}

func (r *questionRepository) IncrementViews(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return translate(res.Error, "increment views")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "increment views")
	}
	return nil
}

func (r *questionRepository) ApplyVote(ctx context.Context, id, userID, delta int, record bool) (*models.Question, error) {
	updates := map[string]any{
		"votes":      gorm.Expr("votes + ?", delta),
		"updated_at": time.Now().UTC(),
	}
	if record {
		updates["voted_users"] = gorm.Expr("array_append(voted_users, ?::bigint)", userID)
	}

	var updated []models.Question
	res := r.db.WithContext(ctx).Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "user_id"}, {Name: "votes"}}}).
		Where("id = ? AND NOT (?::bigint = ANY(voted_users))", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error, "apply vote")
	}
	if res.RowsAffected == 1 && len(updated) == 1 {
		return &updated[0], nil
	}

	// Nothing matched: either the question is missing or the user already voted.
	var exists int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return nil, translate(err, "apply vote")
	}
	if exists == 0 {
		return nil, translate(gorm.ErrRecordNotFound, "apply vote")
	}
	return nil, common.NewError(common.ErrAlreadyVoted, "You have already voted")
}

func (r *questionRepository) CreateAnswer(ctx context.Context, a *models.Answer) error {
	return translate(r.db.WithContext(ctx).Create(a).Error, "create answer")
}

func (r *questionRepository) ListAnswers(ctx context.Context, questionID int) ([]models.Answer, error) {
	answers := []models.Answer{}
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, translate(err, "list answers")
	}
	return answers, nil
}
