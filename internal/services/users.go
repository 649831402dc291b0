package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kodcommunity/forum/backend/internal/auth"
	"github.com/kodcommunity/forum/backend/internal/common"
	"github.com/kodcommunity/forum/backend/internal/logging"
	"github.com/kodcommunity/forum/backend/internal/models"
	"github.com/kodcommunity/forum/backend/internal/repository"
)

var errUserNotFound = common.NewError(common.ErrNotFound, "User not found")

// UserService covers accounts, profiles and follows.
type UserService struct {
	users    repository.UserRepository
	notifier *NotificationService
	log      logging.Logger
}

func NewUserService(u repository.UserRepository, n *NotificationService, l logging.Logger) *UserService {
	return &UserService{users: u, notifier: n, log: l}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || len(req.Password) < 6 {
		return nil, common.NewError(common.ErrValidation, "Username, email and a password of at least 6 characters are required")
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.NewError(common.ErrAlreadyExists, "User already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, common.NewError(common.ErrValidation, "Password is too long")
		}
		return nil, err
	}

	user := &models.User{Username: username, Email: email, Password: hash, Name: username}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.NewError(common.ErrAlreadyExists, "User already exists")
		}
		return nil, err
	}

	logging.FromContext(ctx, s.log).Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate checks credentials. An unknown email is ErrNotFound and a wrong
// password is ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if common.IsNotFound(err) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	if err := auth.CheckPassword(user.Password, password); err != nil {
		return nil, common.NewError(common.ErrInvalidCredentials, "Invalid credentials")
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if common.IsNotFound(err) {
		return nil, errUserNotFound
	}
	return user, err
}

// UpdateProfile applies the whitelisted profile fields set in p.
func (s *UserService) UpdateProfile(ctx context.Context, id int, p models.ProfileUpdate) (*models.User, error) {
	if id <= 0 {
		return nil, common.ErrAuthRequired
	}
	if p.Username != nil {
		trimmed := strings.TrimSpace(*p.Username)
		if trimmed == "" {
			return nil, common.NewError(common.ErrValidation, "Username cannot be empty")
		}
		p.Username = &trimmed
	}

	user, err := s.users.UpdateProfile(ctx, id, p)
	switch {
	case common.IsNotFound(err):
		return nil, errUserNotFound
	case errors.Is(err, common.ErrAlreadyExists):
		return nil, common.NewError(common.ErrAlreadyExists, "Username is already taken")
	}
	return user, err
}

// Follow makes followerID follow followingID and notifies the followed user.
func (s *UserService) Follow(ctx context.Context, followerID, followingID int) error {
	if followerID <= 0 {
		return common.ErrAuthRequired
	}
	if followerID == followingID {
		return common.NewError(common.ErrValidation, "You cannot follow yourself")
	}
	if _, err := s.Get(ctx, followingID); err != nil {
		return err
	}
	if err := s.users.Follow(ctx, followerID, followingID); err != nil {
		return err
	}

	s.notifier.notifyQuietly(ctx, &models.Notification{
		UserID:     followingID,
		FromUserID: followerID,
		Type:       models.NotificationFollow,
		Content:    "started following you",
		Link:       fmt.Sprintf("/users/%d", followerID),
	})
	return nil
}

func (s *UserService) Unfollow(ctx context.Context, followerID, followingID int) error {
	if followerID <= 0 {
		return common.ErrAuthRequired
	}
	return s.users.Unfollow(ctx, followerID, followingID)
}

func (s *UserService) Followers(ctx context.Context, id int) ([]models.UserSummary, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.users.Followers(ctx, id)
}

func (s *UserService) Following(ctx context.Context, id int) ([]models.UserSummary, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.users.Following(ctx, id)
}

// publicSummaries resolves ids to summaries without email addresses.
func publicSummaries(ctx context.Context, users repository.UserRepository, ids []int) (map[int]models.UserSummary, error) {
	out, err := users.Summaries(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	for id, u := range out {
		u.Email = ""
		out[id] = u
	}
	return out, nil
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id <= 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
