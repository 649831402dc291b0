// Package memory implements the repository interfaces in process memory. Each
// store serialises access with a mutex, so check-and-write operations are
// atomic like their PostgreSQL counterparts. Data does not survive a restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/kodcommunity/forum/backend/internal/common"
	"github.com/kodcommunity/forum/backend/internal/models"
	"github.com/kodcommunity/forum/backend/internal/repository"
)

// New returns a fresh set of empty in-memory stores.
func New() *repository.Repositories {
	return &repository.Repositories{
		Users:         NewUsers(),
		Questions:     NewQuestions(),
		Conversations: NewConversations(),
		Notifications: NewNotifications(),
	}
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, common.ErrNotFound)
}

func now() time.Time { return time.Now().UTC() }

// Users

type Users struct {
	mu      sync.RWMutex
	nextID  int
	users   map[int]*models.User
	follows []models.Follow
}

func NewUsers() *Users {
	return &Users{users: make(map[int]*models.User)}
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return fmt.Errorf("create user: %w", common.ErrAlreadyExists)
		}
	}
	s.nextID++
	u.ID = s.nextID
	u.JoinDate = now()
	u.UpdatedAt = u.JoinDate
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Users) GetByID(_ context.Context, id int) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, notFound("get user")
	}
	cp := *u
	return &cp, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("get user by email")
}

func (s *Users) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *Users) UpdateProfile(_ context.Context, id int, p models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, notFound("update profile")
	}
	if p.Username != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Username == *p.Username {
				return nil, fmt.Errorf("update profile: %w", common.ErrAlreadyExists)
			}
		}
	}
	p.Apply(u)
	u.UpdatedAt = now()
	cp := *u
	return &cp, nil
}

func (s *Users) IncrementStat(_ context.Context, id int, stat models.Stat, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return notFound("increment user stat")
	}
	switch stat {
	case models.StatQuestions:
		u.Stats.Questions += delta
	case models.StatAnswers:
		u.Stats.Answers += delta
	case models.StatSolutions:
		u.Stats.Solutions += delta
	case models.StatReputation:
		u.Stats.Reputation += delta
	default:
		return fmt.Errorf("increment user stat: unknown stat %q", stat)
	}
	return nil
}

func (s *Users) Summaries(_ context.Context, ids []int) (map[int]models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

func (s *Users) Follow(_ context.Context, followerID, followingID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return common.NewError(common.ErrAlreadyExists, "Already following this user")
		}
	}
	s.follows = append(s.follows, models.Follow{
		ID:          len(s.follows) + 1,
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   now(),
	})
	return nil
}

func (s *Users) Unfollow(_ context.Context, followerID, followingID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.follows = slices.DeleteFunc(s.follows, func(f models.Follow) bool {
		return f.FollowerID == followerID && f.FollowingID == followingID
	})
	return nil
}

func (s *Users) Followers(_ context.Context, userID int) ([]models.UserSummary, error) {
	return s.followSide(
		func(f models.Follow) bool { return f.FollowingID == userID },
		func(f models.Follow) int { return f.FollowerID },
	), nil
}

func (s *Users) Following(_ context.Context, userID int) ([]models.UserSummary, error) {
	return s.followSide(
		func(f models.Follow) bool { return f.FollowerID == userID },
		func(f models.Follow) int { return f.FollowingID },
	), nil
}

func (s *Users) followSide(match func(models.Follow) bool, other func(models.Follow) int) []models.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.UserSummary{}
	for i := len(s.follows) - 1; i >= 0; i-- {
		f := s.follows[i]
		if !match(f) {
			continue
		}
		if u, ok := s.users[other(f)]; ok {
			sum := u.Summary()
			sum.Email = ""
			out = append(out, sum)
		}
	}
	return out
}

// Questions

type Questions struct {
	mu           sync.RWMutex
	nextID       int
	nextAnswerID int
	questions    map[int]*models.Question
	answers      []models.Answer
}

func NewQuestions() *Questions {
	return &Questions{questions: make(map[int]*models.Question)}
}

func cloneQuestion(q *models.Question) models.Question {
	cp := *q
	cp.Tags = slices.Clone(q.Tags)
	cp.VotedUsers = slices.Clone(q.VotedUsers)
	cp.Answers = nil
	return cp
}

func (s *Questions) Create(_ context.Context, q *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	q.ID = s.nextID
	q.CreatedAt = now()
	q.UpdatedAt = q.CreatedAt
	if q.Tags == nil {
		q.Tags = []string{}
	}
	if q.VotedUsers == nil {
		q.VotedUsers = []int64{}
	}
	cp := cloneQuestion(q)
	s.questions[q.ID] = &cp
	return nil
}

func (s *Questions) GetByID(_ context.Context, id int) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, notFound("get question")
	}
	cp := cloneQuestion(q)
	cp.Answers = s.answersOf(id)
	return &cp, nil
}

func (s *Questions) List(_ context.Context) ([]models.Question, error) {
	return s.filterSorted(
		func(*models.Question) bool { return true },
		func(a, b models.Question) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		},
	), nil
}

func (s *Questions) ListPopular(_ context.Context, minVotes int) ([]models.Question, error) {
	return s.filterSorted(
		func(q *models.Question) bool { return q.Votes > minVotes },
		func(a, b models.Question) bool {
			if a.Votes != b.Votes {
				return a.Votes > b.Votes
			}
			return a.ID > b.ID
		},
	), nil
}

func (s *Questions) filterSorted(keep func(*models.Question) bool, less func(a, b models.Question) bool) []models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Question{}
	for _, q := range s.questions {
		if keep(q) {
			out = append(out, cloneQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (s *Questions) IncrementViews(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return notFound("increment views")
	}
	q.Views++
	return nil
}

func (s *Questions) ApplyVote(_ context.Context, id, userID, delta int, record bool) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, notFound("apply vote")
	}
	if q.HasVoted(userID) {
		return nil, common.NewError(common.ErrAlreadyVoted, "You have already voted")
	}
	q.Votes += delta
	if record {
		q.VotedUsers = append(q.VotedUsers, int64(userID))
	}
	q.UpdatedAt = now()
	return &models.Question{ID: q.ID, UserID: q.UserID, Votes: q.Votes}, nil
}

func (s *Questions) CreateAnswer(_ context.Context, a *models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[a.QuestionID]; !ok {
		return notFound("create answer")
	}
	s.nextAnswerID++
	a.ID = s.nextAnswerID
	a.CreatedAt = now()
	s.answers = append(s.answers, *a)
	return nil
}

func (s *Questions) ListAnswers(_ context.Context, questionID int) ([]models.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answersOf(questionID), nil
}

func (s *Questions) answersOf(questionID int) []models.Answer {
	out := []models.Answer{}
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	return out
}

// Conversations

type Conversations struct {
	mu            sync.RWMutex
	nextID        int
	nextMessageID int
	convs         map[int]*models.Conversation
	byPair        map[[2]int]int
	last          time.Time
}

// tick returns a timestamp strictly after the previous one so updatedAt
// ordering follows call order. Callers hold mu.
func (s *Conversations) tick() time.Time {
	t := now()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func NewConversations() *Conversations {
	return &Conversations{
		convs:  make(map[int]*models.Conversation),
		byPair: make(map[[2]int]int),
	}
}

func cloneConversation(c *models.Conversation) *models.Conversation {
	cp := *c
	cp.Messages = slices.Clone(c.Messages)
	if cp.Messages == nil {
		cp.Messages = []models.Message{}
	}
	cp.Participants = nil
	return &cp
}

func (s *Conversations) FindOrCreate(_ context.Context, x, y int) (*models.Conversation, error) {
	a, b := models.Pair(x, y)
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byPair[[2]int{a, b}]; ok {
		return cloneConversation(s.convs[id]), nil
	}
	s.nextID++
	t := s.tick()
	c := &models.Conversation{
		ID:           s.nextID,
		ParticipantA: a,
		ParticipantB: b,
		Messages:     []models.Message{},
		CreatedAt:    t,
		UpdatedAt:    t,
	}
	s.convs[c.ID] = c
	s.byPair[[2]int{a, b}] = c.ID
	return cloneConversation(c), nil
}

func (s *Conversations) GetByID(_ context.Context, id int) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, notFound("get conversation")
	}
	return cloneConversation(c), nil
}

func (s *Conversations) ListForUser(_ context.Context, userID int) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Conversation{}
	for _, c := range s.convs {
		if c.HasParticipant(userID) {
			out = append(out, *cloneConversation(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Conversations) AppendMessage(_ context.Context, conversationID int, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[conversationID]
	if !ok {
		return notFound("append message")
	}
	s.nextMessageID++
	t := s.tick()
	msg.ID = s.nextMessageID
	msg.ConversationID = conversationID
	msg.CreatedAt = t
	msg.UpdatedAt = t

	c.Messages = append(c.Messages, *msg)
	c.LastMessage = msg.Text
	c.UnreadCount++
	c.UpdatedAt = t
	return nil
}

// Notifications

type Notifications struct {
	mu     sync.RWMutex
	nextID int
	items  []models.Notification
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

func (s *Notifications) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n.ID = s.nextID
	n.CreatedAt = now()
	s.items = append(s.items, *n)
	return nil
}

func (s *Notifications) ListForUser(_ context.Context, userID int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Notification{}
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].UserID == userID {
			out = append(out, s.items[i])
		}
	}
	return out, nil
}

func (s *Notifications) MarkRead(_ context.Context, id, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id && s.items[i].UserID == userID {
			s.items[i].Read = true
			return nil
		}
	}
	return notFound("mark notification read")
}

var (
	_ repository.UserRepository         = (*Users)(nil)
	_ repository.QuestionRepository     = (*Questions)(nil)
	_ repository.ConversationRepository = (*Conversations)(nil)
	_ repository.NotificationRepository = (*Notifications)(nil)
)
