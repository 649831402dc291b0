package services

import (
	"context"
	"fmt"

	"github.com/kodcommunity/forum/backend/internal/common"
	"github.com/kodcommunity/forum/backend/internal/logging"
	"github.com/kodcommunity/forum/backend/internal/models"
	"github.com/kodcommunity/forum/backend/internal/repository"
)

// VotingService applies one-vote-per-user question voting.
//
// Only upvotes mark the user as having voted. A downvote changes the count
// without recording the voter, so the same user may downvote repeatedly and
// may still upvote afterwards.
type VotingService struct {
	questions repository.QuestionRepository
	notifier  *NotificationService
	log       logging.Logger
}

func NewVotingService(q repository.QuestionRepository, n *NotificationService, l logging.Logger) *VotingService {
	return &VotingService{questions: q, notifier: n, log: l}
}

// CastVote applies voteType from userID to the question and returns the new
// vote count.
func (s *VotingService) CastVote(ctx context.Context, questionID, userID int, voteType models.VoteType) (int, error) {
	if userID <= 0 {
		return 0, common.ErrAuthRequired
	}

	var (
		delta  int
		record bool
	)
	switch voteType {
	case models.Upvote:
		delta, record = 1, true
	case models.Downvote:
		delta, record = -1, false
	default:
		return 0, common.NewError(common.ErrValidation, "Invalid vote type")
	}

	q, err := s.questions.ApplyVote(ctx, questionID, userID, delta, record)
	if err != nil {
		if common.IsNotFound(err) {
			return 0, common.NewError(common.ErrNotFound, "Question not found")
		}
		return 0, err
	}

	logging.FromContext(ctx, s.log).Info(ctx, "vote recorded",
		"question_id", questionID, "vote_type", voteType, "votes", q.Votes)

	if voteType == models.Upvote && q.UserID != userID {
		s.notifier.notifyQuietly(ctx, &models.Notification{
			UserID:     q.UserID,
			FromUserID: userID,
			Type:       models.NotificationLike,
			Content:    "upvoted your question",
			Link:       fmt.Sprintf("/question/%d", questionID),
		})
	}
	return q.Votes, nil
}
