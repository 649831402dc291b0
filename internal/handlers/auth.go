package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kodcommunity/forum/backend/internal/models"
	"github.com/kodcommunity/forum/backend/internal/services"
)

type AuthHandler struct {
	users   *services.UserService
	session Session
}

func NewAuthHandler(users *services.UserService, session Session) *AuthHandler {
	return &AuthHandler{users: users, session: session}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Username, email and a password of at least 6 characters are required")
		return
	}

	if _, err := h.users.Register(c.Request.Context(), input); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User Created"})
}

// Login checks credentials and starts a session
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Email and password are required")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, _, err := h.session.Issuer.Issue(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setSessionCookie(c, token, int(h.session.Issuer.TTL().Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetMe returns the current user
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, _ := extractUserID(c)
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CheckSession reports whether the request carries a live session
func (h *AuthHandler) CheckSession(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"loggedIn": false, "user": nil})
		return
	}
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"loggedIn": false, "user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loggedIn": true, "user": user})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	if h.session.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(h.session.CookieName, value, maxAge, "/", "", h.session.Secure, true)
}
