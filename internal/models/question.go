package models

import (
	"slices"
	"time"

	"github.com/lib/pq"
)

// PopularVoteThreshold is the vote count a question must exceed to be listed
// as popular.
const PopularVoteThreshold = 10

type Question struct {
	ID          int            `gorm:"primaryKey" json:"id"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Category    string         `gorm:"not null;index" json:"category"`
	Subcategory string         `gorm:"not null" json:"subcategory"`
	Tags        pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	UserID      int            `gorm:"not null;index" json:"userId"`
	User        *UserSummary   `gorm:"-" json:"user,omitempty"`

	// VotedUsers holds every user who has used up their vote on this question.
	VotedUsers pq.Int64Array `gorm:"type:bigint[];not null;default:'{}'" json:"votedUsers"`
	Votes      int           `gorm:"not null;default:0;index" json:"votes"`
	Views      int           `gorm:"not null;default:0" json:"views"`
	Trending   bool          `gorm:"not null;default:false" json:"trending"`

	Answers []Answer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (q *Question) HasVoted(userID int) bool {
	return slices.Contains(q.VotedUsers, int64(userID))
}

type Answer struct {
	ID         int          `gorm:"primaryKey" json:"id"`
	QuestionID int          `gorm:"not null;index" json:"questionId"`
	UserID     int          `gorm:"not null;index" json:"userId"`
	User       *UserSummary `gorm:"-" json:"user,omitempty"`
	Body       string       `gorm:"type:text;not null" json:"body"`
	Votes      int          `gorm:"not null;default:0" json:"votes"`
	IsSolution bool         `gorm:"not null;default:false" json:"isSolution"`
	CreatedAt  time.Time    `json:"createdAt"`
}

type CreateQuestionRequest struct {
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Tags        []string `json:"tags"`
}

// VoteType is the direction of a question vote.
type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)
