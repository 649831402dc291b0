// Package repository holds the persistence interfaces of the forum and their
// gorm/PostgreSQL implementations. Missing rows are reported as
// common.ErrNotFound.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kodcommunity/forum/backend/internal/common"
	"github.com/kodcommunity/forum/backend/internal/models"
)

type UserRepository interface {
	// Create inserts u and sets its ID. Duplicate username or email yields
	// common.ErrAlreadyExists.
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int, p models.ProfileUpdate) (*models.User, error)
	IncrementStat(ctx context.Context, id int, stat models.Stat, delta int) error
	// Summaries resolves ids to display-safe user views. Unknown ids are skipped.
	Summaries(ctx context.Context, ids []int) (map[int]models.UserSummary, error)

	Follow(ctx context.Context, followerID, followingID int) error
	Unfollow(ctx context.Context, followerID, followingID int) error
	Followers(ctx context.Context, userID int) ([]models.UserSummary, error)
	Following(ctx context.Context, userID int) ([]models.UserSummary, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id int) (*models.Question, error)
	// List returns all questions, newest first.
	List(ctx context.Context) ([]models.Question, error)
	// ListPopular returns questions with more than minVotes votes, most votes first.
	ListPopular(ctx context.Context, minVotes int) ([]models.Question, error)
	IncrementViews(ctx context.Context, id int) error

	// ApplyVote adds delta to the question's votes unless userID is already in
	// its voted users, and appends userID to them when record is set. Check
	// and write happen in one statement. Returns the updated question (ID,
	// UserID, Votes), common.ErrNotFound or common.ErrAlreadyVoted.
	ApplyVote(ctx context.Context, id, userID, delta int, record bool) (*models.Question, error)

	CreateAnswer(ctx context.Context, a *models.Answer) error
	// ListAnswers returns the answers of a question, oldest first.
	ListAnswers(ctx context.Context, questionID int) ([]models.Answer, error)
}

type ConversationRepository interface {
	// FindOrCreate returns the conversation of the unordered pair {x, y},
	// creating it if needed. Concurrent callers get the same row.
	FindOrCreate(ctx context.Context, x, y int) (*models.Conversation, error)
	// GetByID returns the conversation with its messages in append order.
	GetByID(ctx context.Context, id int) (*models.Conversation, error)
	// ListForUser returns the user's conversations, most recently updated first.
	ListForUser(ctx context.Context, userID int) ([]models.Conversation, error)
	// AppendMessage stores msg in the conversation, sets lastMessage, bumps
	// unreadCount by one and touches updatedAt.
	AppendMessage(ctx context.Context, conversationID int, msg *models.Message) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// ListForUser returns the recipient's notifications, newest first.
	ListForUser(ctx context.Context, userID int) ([]models.Notification, error)
	// MarkRead flags a notification read if it belongs to userID.
	MarkRead(ctx context.Context, id, userID int) error
}

// Repositories groups the stores a server needs.
type Repositories struct {
	Users         UserRepository
	Questions     QuestionRepository
	Conversations ConversationRepository
	Notifications NotificationRepository
}

// NewPostgres returns gorm-backed repositories sharing db.
func NewPostgres(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Questions:     NewQuestionRepository(db),
		Conversations: NewConversationRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, common.ErrAlreadyExists)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
