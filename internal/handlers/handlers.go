package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kodcommunity/forum/backend/internal/auth"
	"github.com/kodcommunity/forum/backend/internal/common"
	"github.com/kodcommunity/forum/backend/internal/logging"
	"github.com/kodcommunity/forum/backend/internal/middleware"
	"github.com/kodcommunity/forum/backend/internal/services"
)

// Services bundles the business services the handlers call into.
type Services struct {
	Users         *services.UserService
	Questions     *services.QuestionService
	Votes         *services.VotingService
	Messaging     *services.MessagingService
	Notifications *services.NotificationService
}

// Session describes how login state is handed to clients.
type Session struct {
	Issuer     *auth.TokenIssuer
	CookieName string
	Secure     bool
}

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Question     *QuestionHandler
	Answer       *AnswerHandler
	Conversation *ConversationHandler
	Notification *NotificationHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(svc Services, session Session) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Users, session),
		User:         NewUserHandler(svc.Users),
		Question:     NewQuestionHandler(svc.Questions, svc.Votes),
		Answer:       NewAnswerHandler(svc.Questions),
		Conversation: NewConversationHandler(svc.Messaging),
		Notification: NewNotificationHandler(svc.Notifications),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	return middleware.CurrentUserID(c)
}

// pathID parses the named path parameter. Ids that cannot exist are reported
// as not found.
func pathID(c *gin.Context, name, notFound string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": notFound})
		return 0, false
	}
	return id, true
}

// respondError writes err as {"message": ...} with the status of its kind.
// Unexpected errors are logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	status, fallback := statusOf(err)
	if status == http.StatusInternalServerError {
		ctx := c.Request.Context()
		logging.FromContext(ctx, logging.Nop()).Error(ctx, "request failed", "error", err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"message": fallback})
		return
	}
	c.JSON(status, gin.H{"message": common.Message(err, fallback)})
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrAuthRequired):
		return http.StatusUnauthorized, "Not logged in"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrAlreadyVoted):
		return http.StatusBadRequest, "You have already voted"
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusBadRequest, "Already exists"
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "Invalid request"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}
