package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/pkg/logger"
)

type ChatRepository interface {
	CreateConversation(conversation *model.Conversation) error
	FindConversation(businessID, userID uint) (*model.Conversation, error)
	FindConversationByID(id uint) (*model.Conversation, error)
	ListConversationsForUser(userID uint) ([]model.Conversation, error)

	CreateMessage(message *model.Message) error
	ListMessages(conversationID uint) ([]model.Message, error)
	ListMessagesAfter(conversationID uint, afterSeq uint64) ([]model.Message, error)
	MarkMessagesRead(conversationID, readerID uint) error
	CountUnread(conversationID, readerID uint) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateConversation(conversation *model.Conversation) error {
	logger.Debug("Creating conversation", map[string]interface{}{
		"business_id": conversation.BusinessID,
		"user_id":     conversation.UserID,
	})
	return r.db.Create(conversation).Error
}

// FindConversation returns nil, nil when the pair has no thread yet.
func (r *chatRepository) FindConversation(businessID, userID uint) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.
		Preload("Business").
		Where("business_id = ? AND user_id = ?", businessID, userID).
		First(&conversation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *chatRepository) FindConversationByID(id uint) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.
		Preload("Business").
		Preload("User").
		First(&conversation, id).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// ListConversationsForUser returns the threads the user opened as a
// visitor plus every thread addressed to a business the user owns.
func (r *chatRepository) ListConversationsForUser(userID uint) ([]model.Conversation, error) {
	var conversations []model.Conversation
	if err := r.db.
		Preload("Business").
		Preload("User").
		Joins("JOIN businesses ON businesses.id = conversations.business_id").
		Where("conversations.user_id = ? OR businesses.owner_id = ?", userID, userID).
		Order("conversations.updated_at DESC").
		Find(&conversations).Error; err != nil {
		logger.Error("Failed to list conversations", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return conversations, nil
}

// CreateMessage assigns the next per-conversation sequence number and
// inserts the row in one transaction. The unique (conversation, seq)
// index turns a lost race into a retryable error instead of a
// duplicate sequence.
func (r *chatRepository) CreateMessage(message *model.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxSeq uint64
		if err := tx.Model(&model.Message{}).
			Where("conversation_id = ?", message.ConversationID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}
		message.Seq = maxSeq + 1

		if err := tx.Create(message).Error; err != nil {
			return err
		}

		return tx.Model(&model.Conversation{}).
			Where("id = ?", message.ConversationID).
			UpdateColumn("updated_at", time.Now()).Error
	})
}

func (r *chatRepository) ListMessages(conversationID uint) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("seq ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepository) ListMessagesAfter(conversationID uint, afterSeq uint64) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.
		Preload("Sender").
		Where("conversation_id = ? AND seq > ?", conversationID, afterSeq).
		Order("seq ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepository) MarkMessagesRead(conversationID, readerID uint) error {
	return r.db.Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, readerID, false).
		UpdateColumn("is_read", true).Error
}

func (r *chatRepository) CountUnread(conversationID, readerID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, readerID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
