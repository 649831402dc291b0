package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodcommunity/forum/backend/internal/common"
	"github.com/kodcommunity/forum/backend/internal/models"
)

func seedUser(t *testing.T, s *Users, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Password: "hash"}
	require.NoError(t, s.Create(context.Background(), u))
	return u
}

func TestUsers_CreateRejectsDuplicates(t *testing.T) {
	s := NewUsers()
	seedUser(t, s, "alice")

	err := s.Create(context.Background(), &models.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	err = s.Create(context.Background(), &models.User{Username: "other", Email: "alice@example.com"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestUsers_GetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewUsers()
	u := seedUser(t, s, "alice")

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Username = "mallory"

	again, err := s.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)

	_, err = s.GetByID(ctx, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUsers_UpdateProfileAndStats(t *testing.T) {
	ctx := context.Background()
	s := NewUsers()
	alice := seedUser(t, s, "alice")
	seedUser(t, s, "bob")

	bio := "gopher"
	got, err := s.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "gopher", got.Bio)

	taken := "bob"
	_, err = s.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Username: &taken})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	require.NoError(t, s.IncrementStat(ctx, alice.ID, models.StatQuestions, 1))
	require.NoError(t, s.IncrementStat(ctx, alice.ID, models.StatQuestions, 1))
	got, err = s.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stats.Questions)

	assert.Error(t, s.IncrementStat(ctx, alice.ID, models.Stat("stats_karma"), 1))
}

func TestUsers_Follow(t *testing.T) {
	ctx := context.Background()
	s := NewUsers()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	require.NoError(t, s.Follow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, s.Follow(ctx, alice.ID, bob.ID), common.ErrAlreadyExists)

	followers, err := s.Followers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)
	assert.Empty(t, followers[0].Email)

	following, err := s.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, bob.ID, following[0].ID)

	require.NoError(t, s.Unfollow(ctx, alice.ID, bob.ID))
	followers, err = s.Followers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestUsers_SummariesSkipsUnknown(t *testing.T) {
	s := NewUsers()
	alice := seedUser(t, s, "alice")

	got, err := s.Summaries(context.Background(), []int{alice.ID, 42})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "alice", got[alice.ID].Username)
}

func newQuestion(t *testing.T, s *Questions, votes int) *models.Question {
	t.Helper()
	q := &models.Question{Content: "How?", Category: "go", Subcategory: "sync", UserID: 1, Votes: votes}
	require.NoError(t, s.Create(context.Background(), q))
	return q
}

func TestQuestions_ApplyVote(t *testing.T) {
	ctx := context.Background()
	s := NewQuestions()
	q := newQuestion(t, s, 0)

	got, err := s.ApplyVote(ctx, q.ID, 7, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Votes)

	_, err = s.ApplyVote(ctx, q.ID, 7, 1, true)
	assert.ErrorIs(t, err, common.ErrAlreadyVoted)

	// Downvotes are not recorded, so the same user can repeat them.
	got, err = s.ApplyVote(ctx, q.ID, 8, -1, false)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Votes)
	got, err = s.ApplyVote(ctx, q.ID, 8, -1, false)
	require.NoError(t, err)
	assert.Equal(t, -1, got.Votes)

	stored, err := s.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, []int64(stored.VotedUsers))

	_, err = s.ApplyVote(ctx, 404, 7, 1, true)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestQuestions_ConcurrentUpvotesCountOnce(t *testing.T) {
	ctx := context.Background()
	s := NewQuestions()
	q := newQuestion(t, s, 0)

	var ok atomic.Int32
	var wg sync.WaitGroup
	for n := 0; n < 50; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ApplyVote(ctx, q.ID, 3, 1, true); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	stored, err := s.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Votes)
}

func TestQuestions_ListOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewQuestions()
	first := newQuestion(t, s, 11)
	second := newQuestion(t, s, 30)
	newQuestion(t, s, 10)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, first.ID, all[2].ID)

	popular, err := s.ListPopular(ctx, models.PopularVoteThreshold)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, second.ID, popular[0].ID)
	assert.Equal(t, first.ID, popular[1].ID)
}

func TestQuestions_ViewsAndAnswers(t *testing.T) {
	ctx := context.Background()
	s := NewQuestions()
	q := newQuestion(t, s, 0)

	require.NoError(t, s.IncrementViews(ctx, q.ID))
	assert.ErrorIs(t, s.IncrementViews(ctx, 404), common.ErrNotFound)

	require.NoError(t, s.CreateAnswer(ctx, &models.Answer{QuestionID: q.ID, UserID: 2, Body: "first"}))
	require.NoError(t, s.CreateAnswer(ctx, &models.Answer{QuestionID: q.ID, UserID: 3, Body: "second"}))
	assert.ErrorIs(t, s.CreateAnswer(ctx, &models.Answer{QuestionID: 404, Body: "x"}), common.ErrNotFound)

	stored, err := s.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Views)
	require.Len(t, stored.Answers, 2)
	assert.Equal(t, "first", stored.Answers[0].Body)
}

func TestConversations_FindOrCreateIsSymmetric(t *testing.T) {
	ctx := context.Background()
	s := NewConversations()

	ab, err := s.FindOrCreate(ctx, 1, 2)
	require.NoError(t, err)
	ba, err := s.FindOrCreate(ctx, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, ab.ID, ba.ID)
	assert.Equal(t, []int{1, 2}, ba.ParticipantIDs())
	assert.Empty(t, ab.Messages)
	assert.Zero(t, ab.UnreadCount)
}

func TestConversations_ConcurrentFindOrCreateConverges(t *testing.T) {
	ctx := context.Background()
	s := NewConversations()

	ids := make([]int, 20)
	var wg sync.WaitGroup
	for i := range ids {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.FindOrCreate(ctx, 5+i%2, 6-i%2)
			if err == nil {
				ids[i] = c.ID
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	convs, err := s.ListForUser(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, convs, 1)
}

func TestConversations_AppendMessage(t *testing.T) {
	ctx := context.Background()
	s := NewConversations()
	c, err := s.FindOrCreate(ctx, 1, 2)
	require.NoError(t, err)

	for _, text := range []string{"hi", "how are you", "bye"} {
		require.NoError(t, s.AppendMessage(ctx, c.ID, &models.Message{SenderID: 1, Text: text, Time: "10:00"}))
	}

	got, err := s.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "hi", got.Messages[0].Text)
	assert.Equal(t, "bye", got.Messages[2].Text)
	assert.Equal(t, "bye", got.LastMessage)
	assert.Equal(t, 3, got.UnreadCount)

	err = s.AppendMessage(ctx, 404, &models.Message{SenderID: 1, Text: "lost"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestConversations_ListForUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewConversations()
	older, err := s.FindOrCreate(ctx, 1, 2)
	require.NoError(t, err)
	newer, err := s.FindOrCreate(ctx, 1, 3)
	require.NoError(t, err)
	_, err = s.FindOrCreate(ctx, 2, 3)
	require.NoError(t, err)

	require.NoError(t, s.AppendMessage(ctx, older.ID, &models.Message{SenderID: 1, Text: "ping"}))

	convs, err := s.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, older.ID, convs[0].ID)
	assert.Equal(t, newer.ID, convs[1].ID)
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	s := NewNotifications()

	first := &models.Notification{UserID: 1, FromUserID: 2, Type: models.NotificationLike}
	second := &models.Notification{UserID: 1, FromUserID: 3, Type: models.NotificationFollow}
	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, second))
	require.NoError(t, s.Create(ctx, &models.Notification{UserID: 2, FromUserID: 1, Type: models.NotificationReply}))

	list, err := s.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	assert.ErrorIs(t, s.MarkRead(ctx, first.ID, 2), common.ErrNotFound)
	require.NoError(t, s.MarkRead(ctx, first.ID, 1))

	list, err = s.ListForUser(ctx, 1)
	require.NoError(t, err)
	assert.True(t, list[1].Read)
}
