package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kodcommunity/forum/backend/internal/models"
	"github.com/kodcommunity/forum/backend/internal/services"
)

type ConversationHandler struct {
	messaging *services.MessagingService
}

func NewConversationHandler(messaging *services.MessagingService) *ConversationHandler {
	return &ConversationHandler{messaging: messaging}
}

// StartConversation finds or creates the caller's conversation with receiverId
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var input models.StartConversationRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "receiverId is required")
		return
	}

	senderID, _ := extractUserID(c)
	conv, err := h.messaging.StartConversation(c.Request.Context(), senderID, input.ReceiverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// GetConversations lists the caller's conversations
func (h *ConversationHandler) GetConversations(c *gin.Context) {
	userID, _ := extractUserID(c)
	convs, err := h.messaging.ListConversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}

// PostMessage appends a message to a conversation the caller is part of
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	conversationID, ok := pathID(c, "conversationId", "Conversation not found")
	if !ok {
		return
	}

	var input models.PostMessageRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Message text is required")
		return
	}

	senderID, _ := extractUserID(c)
	msg, err := h.messaging.PostMessage(c.Request.Context(), conversationID, senderID, input.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GetMessages returns a conversation's messages in posting order
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	conversationID, ok := pathID(c, "conversationId", "Conversation not found")
	if !ok {
		return
	}

	userID, _ := extractUserID(c)
	msgs, err := h.messaging.ListMessages(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}
