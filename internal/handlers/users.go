package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kodcommunity/forum/backend/internal/models"
	"github.com/kodcommunity/forum/backend/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetUserProfile returns a user's public profile
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID, ok := pathID(c, "id", "User not found")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	profile := gin.H{
		"id":       user.ID,
		"username": user.Username,
		"name":     user.Name,
		"bio":      user.Bio,
		"location": user.Location,
		"github":   user.Github,
		"twitter":  user.Twitter,
		"linkedin": user.Linkedin,
		"avatar":   user.Avatar,
		"joinDate": user.JoinDate,
		"stats":    user.Stats,
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the caller's own profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, _ := extractUserID(c)

	var input models.ProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid profile data")
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// FollowUser follows a user
func (h *UserHandler) FollowUser(c *gin.Context) {
	followingID, ok := pathID(c, "id", "User not found")
	if !ok {
		return
	}
	followerID, _ := extractUserID(c)

	if err := h.users.Follow(c.Request.Context(), followerID, followingID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully followed user"})
}

// UnfollowUser unfollows a user
func (h *UserHandler) UnfollowUser(c *gin.Context) {
	followingID, ok := pathID(c, "id", "User not found")
	if !ok {
		return
	}
	followerID, _ := extractUserID(c)

	if err := h.users.Unfollow(c.Request.Context(), followerID, followingID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully unfollowed user"})
}

// GetFollowers returns a user's followers
func (h *UserHandler) GetFollowers(c *gin.Context) {
	userID, ok := pathID(c, "id", "User not found")
	if !ok {
		return
	}
	followers, err := h.users.Followers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, followers)
}

// GetFollowing returns users that a user is following
func (h *UserHandler) GetFollowing(c *gin.Context) {
	userID, ok := pathID(c, "id", "User not found")
	if !ok {
		return
	}
	following, err := h.users.Following(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, following)
}
