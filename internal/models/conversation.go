package models

import "time"

// Conversation is a direct thread between two users. The pair is stored
// ordered (ParticipantA <= ParticipantB) so each unordered pair maps to one row.
type Conversation struct {
	ID           int           `gorm:"primaryKey" json:"id"`
	ParticipantA int           `gorm:"not null;uniqueIndex:ux_conversation_pair,priority:1" json:"-"`
	ParticipantB int           `gorm:"not null;uniqueIndex:ux_conversation_pair,priority:2;index" json:"-"`
	Participants []UserSummary `gorm:"-" json:"participants"`
	Messages     []Message     `gorm:"foreignKey:ConversationID" json:"messages"`
	LastMessage  string        `gorm:"type:text;not null;default:''" json:"lastMessage"`
	UnreadCount  int           `gorm:"not null;default:0" json:"unreadCount"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `gorm:"index" json:"updatedAt"`
}

// Message belongs to exactly one conversation and is never edited.
type Message struct {
	ID             int    `gorm:"primaryKey" json:"id"`
	ConversationID int    `gorm:"not null;index" json:"conversationId"`
	SenderID       int    `gorm:"not null" json:"senderId"`
	SenderName     string `gorm:"-" json:"senderName,omitempty"`
	Text           string `gorm:"type:text;not null" json:"text"`
	// Time is the wall-clock "HH:MM" rendering taken when the message was appended.
	Time      string    `gorm:"not null" json:"time"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MessageTimeLayout renders Message.Time.
const MessageTimeLayout = "15:04"

// Pair orders two participant ids.
func Pair(x, y int) (a, b int) {
	if x <= y {
		return x, y
	}
	return y, x
}

func (c *Conversation) ParticipantIDs() []int {
	return []int{c.ParticipantA, c.ParticipantB}
}

func (c *Conversation) HasParticipant(userID int) bool {
	return userID != 0 && (c.ParticipantA == userID || c.ParticipantB == userID)
}

type StartConversationRequest struct {
	ReceiverID int `json:"receiverId" binding:"required"`
}

type PostMessageRequest struct {
	Text string `json:"text" binding:"required"`
}
