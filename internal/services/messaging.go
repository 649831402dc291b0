// Package services holds the forum's business rules. Services take
// repositories, validate input and translate store errors into the
// client-facing kinds from package common.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/kodcommunity/forum/backend/internal/common"
	"github.com/kodcommunity/forum/backend/internal/logging"
	"github.com/kodcommunity/forum/backend/internal/models"
	"github.com/kodcommunity/forum/backend/internal/repository"
)

var errConversationNotFound = common.NewError(common.ErrNotFound, "Conversation not found")

// MessagingService manages direct conversations between two users.
type MessagingService struct {
	conversations repository.ConversationRepository
	users         repository.UserRepository
	log           logging.Logger
	now           func() time.Time
}

func NewMessagingService(c repository.ConversationRepository, u repository.UserRepository, l logging.Logger) *MessagingService {
	return &MessagingService{conversations: c, users: u, log: l, now: time.Now}
}

// StartConversation returns the conversation between sender and receiver,
// creating an empty one if they have none. Argument order does not matter.
func (s *MessagingService) StartConversation(ctx context.Context, senderID, receiverID int) (*models.Conversation, error) {
	if senderID <= 0 {
		return nil, common.ErrAuthRequired
	}
	if receiverID <= 0 {
		return nil, common.NewError(common.ErrValidation, "receiverId is required")
	}
	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		if common.IsNotFound(err) {
			return nil, common.NewError(common.ErrNotFound, "Receiver not found")
		}
		return nil, err
	}

	conv, err := s.conversations.FindOrCreate(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveParticipants(ctx, []*models.Conversation{conv}); err != nil {
		return nil, err
	}
	return conv, nil
}

// ListConversations returns every conversation userID takes part in, most
// recently active first.
func (s *MessagingService) ListConversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	if userID <= 0 {
		return nil, common.ErrAuthRequired
	}
	convs, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ptrs := make([]*models.Conversation, len(convs))
	for i := range convs {
		ptrs[i] = &convs[i]
	}
	if err := s.resolveParticipants(ctx, ptrs); err != nil {
		return nil, err
	}
	return convs, nil
}

// PostMessage appends text from senderID to the conversation. A missing
// conversation and one the sender is not part of both report NotFound.
func (s *MessagingService) PostMessage(ctx context.Context, conversationID, senderID int, text string) (*models.Message, error) {
	if senderID <= 0 {
		return nil, common.ErrAuthRequired
	}
	if strings.TrimSpace(text) == "" {
		return nil, common.NewError(common.ErrValidation, "Message text is required")
	}

	conv, err := s.participantConversation(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		SenderID: senderID,
		Text:     text,
		Time:     s.now().Format(models.MessageTimeLayout),
	}
	if err := s.conversations.AppendMessage(ctx, conv.ID, msg); err != nil {
		if common.IsNotFound(err) {
			return nil, errConversationNotFound
		}
		return nil, err
	}

	logging.FromContext(ctx, s.log).Debug(ctx, "message posted",
		"conversation_id", conv.ID, "message_id", msg.ID)
	return msg, nil
}

// ListMessages returns the conversation's messages in the order they were
// posted, with sender names filled in. Reading does not mark anything read.
func (s *MessagingService) ListMessages(ctx context.Context, conversationID, userID int) ([]models.Message, error) {
	if userID <= 0 {
		return nil, common.ErrAuthRequired
	}
	conv, err := s.participantConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	names, err := s.users.Summaries(ctx, conv.ParticipantIDs())
	if err != nil {
		return nil, err
	}
	msgs := conv.Messages
	if msgs == nil {
		msgs = []models.Message{}
	}
	for i := range msgs {
		if u, ok := names[msgs[i].SenderID]; ok {
			msgs[i].SenderName = u.Username
		}
	}
	return msgs, nil
}

func (s *MessagingService) participantConversation(ctx context.Context, conversationID, userID int) (*models.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, errConversationNotFound
		}
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, errConversationNotFound
	}
	return conv, nil
}

// resolveParticipants fills Participants with display-safe user views using
// one lookup for all conversations.
func (s *MessagingService) resolveParticipants(ctx context.Context, convs []*models.Conversation) error {
	var ids []int
	for _, c := range convs {
		ids = append(ids, c.ParticipantIDs()...)
	}
	users, err := publicSummaries(ctx, s.users, ids)
	if err != nil {
		return err
	}
	for _, c := range convs {
		c.Participants = make([]models.UserSummary, 0, 2)
		for _, id := range uniqueIDs(c.ParticipantIDs()) {
			if u, ok := users[id]; ok {
				c.Participants = append(c.Participants, u)
			}
		}
		if c.Messages == nil {
			c.Messages = []models.Message{}
		}
	}
	return nil
}
