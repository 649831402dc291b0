package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kodcommunity/forum/backend/internal/common"
	"github.com/kodcommunity/forum/backend/internal/logging"
	"github.com/kodcommunity/forum/backend/internal/models"
	"github.com/kodcommunity/forum/backend/internal/repository"
)

var errQuestionNotFound = common.NewError(common.ErrNotFound, "Question not found")

type QuestionService struct {
	questions repository.QuestionRepository
	users     repository.UserRepository
	notifier  *NotificationService
	log       logging.Logger
}

func NewQuestionService(q repository.QuestionRepository, u repository.UserRepository, n *NotificationService, l logging.Logger) *QuestionService {
	return &QuestionService{questions: q, users: u, notifier: n, log: l}
}

// Post creates a question owned by userID and bumps the author's question count.
func (s *QuestionService) Post(ctx context.Context, userID int, req models.CreateQuestionRequest) (*models.Question, error) {
	if userID <= 0 {
		return nil, common.ErrAuthRequired
	}
	content := strings.TrimSpace(req.Content)
	category := strings.TrimSpace(req.Category)
	subcategory := strings.TrimSpace(req.Subcategory)
	if content == "" || category == "" || subcategory == "" {
		return nil, common.NewError(common.ErrValidation, "All fields are required.")
	}

	q := &models.Question{
		Content:     content,
		Category:    category,
		Subcategory: subcategory,
		Tags:        cleanTags(req.Tags),
		UserID:      userID,
		VotedUsers:  []int64{},
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx, s.log)
	if err := s.users.IncrementStat(ctx, userID, models.StatQuestions, 1); err != nil {
		log.Warn(ctx, "question stat not updated", "user_id", userID, "error", err)
	}
	log.Info(ctx, "question posted", "question_id", q.ID, "user_id", userID)

	if err := s.attachAuthors(ctx, []*models.Question{q}); err != nil {
		return nil, err
	}
	return q, nil
}

// List returns every question, newest first.
func (s *QuestionService) List(ctx context.Context) ([]models.Question, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, err
	}
	return questions, s.attachAuthors(ctx, questionPtrs(questions))
}

// Popular returns questions above models.PopularVoteThreshold, most votes first.
func (s *QuestionService) Popular(ctx context.Context) ([]models.Question, error) {
	questions, err := s.questions.ListPopular(ctx, models.PopularVoteThreshold)
	if err != nil {
		return nil, err
	}
	return questions, s.attachAuthors(ctx, questionPtrs(questions))
}

// Get returns one question with its answers and counts the view.
func (s *QuestionService) Get(ctx context.Context, id int) (*models.Question, error) {
	if err := s.questions.IncrementViews(ctx, id); err != nil {
		if common.IsNotFound(err) {
			return nil, errQuestionNotFound
		}
		return nil, err
	}
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, errQuestionNotFound
		}
		return nil, err
	}
	if err := s.attachAuthors(ctx, []*models.Question{q}); err != nil {
		return nil, err
	}
	if err := s.attachAnswerAuthors(ctx, q.Answers); err != nil {
		return nil, err
	}
	return q, nil
}

// Answer adds an answer by userID and notifies the question's author.
func (s *QuestionService) Answer(ctx context.Context, questionID, userID int, body string) (*models.Answer, error) {
	if userID <= 0 {
		return nil, common.ErrAuthRequired
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, common.NewError(common.ErrValidation, "Answer body is required")
	}

	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, errQuestionNotFound
		}
		return nil, err
	}

	a := &models.Answer{QuestionID: q.ID, UserID: userID, Body: body}
	if err := s.questions.CreateAnswer(ctx, a); err != nil {
		if common.IsNotFound(err) {
			return nil, errQuestionNotFound
		}
		return nil, err
	}
	if err := s.users.IncrementStat(ctx, userID, models.StatAnswers, 1); err != nil {
		logging.FromContext(ctx, s.log).Warn(ctx, "answer stat not updated", "user_id", userID, "error", err)
	}

	if q.UserID != userID {
		s.notifier.notifyQuietly(ctx, &models.Notification{
			UserID:     q.UserID,
			FromUserID: userID,
			Type:       models.NotificationReply,
			Content:    "answered your question",
			Link:       fmt.Sprintf("/question/%d", q.ID),
		})
	}

	answers := []models.Answer{*a}
	if err := s.attachAnswerAuthors(ctx, answers); err != nil {
		return nil, err
	}
	return &answers[0], nil
}

// Answers lists a question's answers, oldest first.
func (s *QuestionService) Answers(ctx context.Context, questionID int) ([]models.Answer, error) {
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, errQuestionNotFound
		}
		return nil, err
	}
	answers := q.Answers
	if answers == nil {
		answers = []models.Answer{}
	}
	return answers, s.attachAnswerAuthors(ctx, answers)
}

// attachAuthors fills User with username, email and avatar of each author.
func (s *QuestionService) attachAuthors(ctx context.Context, questions []*models.Question) error {
	ids := make([]int, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.UserID)
	}
	authors, err := s.users.Summaries(ctx, uniqueIDs(ids))
	if err != nil {
		return err
	}
	for _, q := range questions {
		if u, ok := authors[q.UserID]; ok {
			q.User = &models.UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, Avatar: u.Avatar}
		}
	}
	return nil
}

func (s *QuestionService) attachAnswerAuthors(ctx context.Context, answers []models.Answer) error {
	ids := make([]int, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.UserID)
	}
	authors, err := publicSummaries(ctx, s.users, ids)
	if err != nil {
		return err
	}
	for i := range answers {
		if u, ok := authors[answers[i].UserID]; ok {
			answers[i].User = &u
		}
	}
	return nil
}

func questionPtrs(questions []models.Question) []*models.Question {
	out := make([]*models.Question, len(questions))
	for i := range questions {
		out[i] = &questions[i]
	}
	return out
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
