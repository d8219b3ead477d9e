package model

import (
	"time"
)

// Conversation is the single thread between a visitor and a business.
// The composite unique index guarantees one thread per (business, user)
// pair even when two requests race to create it.
type Conversation struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	BusinessID uint      `gorm:"not null;uniqueIndex:idx_business_user_conversation" json:"business_id"`
	Business   Business  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"business,omitempty"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_business_user_conversation" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"` // bumped on every new message

	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message is immutable once created. Seq is a per-conversation
// monotonic sequence assigned inside the send transaction, so ordering
// never depends on timestamp resolution.
type Message struct {
	ID             uint         `gorm:"primarykey" json:"id"`
	ConversationID uint         `gorm:"not null;uniqueIndex:idx_conversation_seq" json:"conversation_id"`
	Conversation   Conversation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	SenderID       uint         `gorm:"not null;index" json:"sender_id"`
	Sender         User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"sender,omitempty"`
	Seq            uint64       `gorm:"not null;uniqueIndex:idx_conversation_seq" json:"seq"`
	Content        string       `gorm:"type:text" json:"content"`
	FileURL        string       `json:"file_url"`
	FileType       string       `gorm:"type:varchar(20)" json:"file_type"` // image, video, application or file
	FileName       string       `gorm:"type:varchar(255)" json:"file_name"`
	IsRead         bool         `gorm:"default:false;index" json:"is_read"`
	CreatedAt      time.Time    `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
