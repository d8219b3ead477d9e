package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kasbino/kasbino-backend/internal/errors"
	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/internal/app/repository"
	"github.com/kasbino/kasbino-backend/internal/websocket"
	"github.com/kasbino/kasbino-backend/pkg/logger"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationAccess   = errors.New("not a participant of this conversation")
	ErrChatWithOwnBusiness  = errors.New("cannot chat with own business")
	ErrEmptyMessage         = errors.New("message needs content or an attachment")
	ErrInvalidAttachment    = errors.New("unsupported attachment type")
	ErrAttachmentTooLarge   = errors.New("attachment exceeds the size limit")
)

// maxAttachmentSize caps chat uploads at 10MB.
const maxAttachmentSize = 10 * 1024 * 1024

type AttachmentInput struct {
	FileURL     string
	FileName    string
	ContentType string
	Size        int64
}

// MessageView is the wire shape of one chat message.
type MessageView struct {
	ID           uint    `json:"id"`
	Seq          uint64  `json:"seq"`
	Content      string  `json:"content"`
	FileURL      *string `json:"file_url"`
	FileType     *string `json:"file_type"`
	Sender       string  `json:"sender"`
	BusinessName string  `json:"business_name"`
	BusinessSlug string  `json:"business_slug"`
	CreatedAt    string  `json:"created_at"` // HH:MM
	IsSent       bool    `json:"is_sent"`    // true when the viewer wrote it
}

type ConversationView struct {
	ID           uint   `json:"id"`
	BusinessName string `json:"business_name"`
	BusinessSlug string `json:"business_slug"`
	OtherParty   string `json:"other_party"`
	UnreadCount  int64  `json:"unread_count"`
	UpdatedAt    string `json:"updated_at"`
}

type ChatService interface {
	OpenConversation(userID uint, businessSlug string) (*model.Conversation, error)
	ListConversations(userID uint) ([]ConversationView, error)
	GetMessages(userID, conversationID uint, afterSeq uint64) ([]MessageView, error)
	SendMessage(userID, conversationID uint, content string, attachment *AttachmentInput) (*MessageView, error)
	CanAccess(userID, conversationID uint) (bool, error)
}

type chatService struct {
	chatRepo     repository.ChatRepository
	businessRepo repository.BusinessRepository
	userRepo     repository.UserRepository
	hub          *websocket.Hub
}

func NewChatService(
	chatRepo repository.ChatRepository,
	businessRepo repository.BusinessRepository,
	userRepo repository.UserRepository,
	hub *websocket.Hub,
) ChatService {
	return &chatService{
		chatRepo:     chatRepo,
		businessRepo: businessRepo,
		userRepo:     userRepo,
		hub:          hub,
	}
}

// OpenConversation returns the existing thread between the user and
// the business, creating it on first contact. Owners cannot open a
// thread with their own business.
func (s *chatService) OpenConversation(userID uint, businessSlug string) (*model.Conversation, error) {
	business, err := s.businessRepo.FindBySlug(businessSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	if !business.IsApproved {
		return nil, ErrBusinessNotFound
	}
	if business.OwnerID == userID {
		return nil, ErrChatWithOwnBusiness
	}

	conversation, err := s.chatRepo.FindConversation(business.ID, userID)
	if err != nil {
		return nil, err
	}
	if conversation != nil {
		return conversation, nil
	}

	conversation = &model.Conversation{
		BusinessID: business.ID,
		UserID:     userID,
	}
	if err := s.chatRepo.CreateConversation(conversation); err != nil {
		// a concurrent open won the race, use its row
		if apperrors.IsUniqueViolation(err) {
			return s.chatRepo.FindConversation(business.ID, userID)
		}
		return nil, err
	}

	logger.Info("Conversation created", map[string]interface{}{
		"conversation_id": conversation.ID,
		"business_id":     business.ID,
		"user_id":         userID,
	})

	conversation.Business = *business
	return conversation, nil
}

func (s *chatService) ListConversations(userID uint) ([]ConversationView, error) {
	conversations, err := s.chatRepo.ListConversationsForUser(userID)
	if err != nil {
		return nil, err
	}

	views := make([]ConversationView, 0, len(conversations))
	for _, c := range conversations {
		unread, err := s.chatRepo.CountUnread(c.ID, userID)
		if err != nil {
			return nil, err
		}

		otherParty := c.User.Username
		if c.UserID == userID {
			otherParty = c.Business.Name
		}

		views = append(views, ConversationView{
			ID:           c.ID,
			BusinessName: c.Business.Name,
			BusinessSlug: c.Business.Slug,
			OtherParty:   otherParty,
			UnreadCount:  unread,
			UpdatedAt:    c.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	return views, nil
}

// CanAccess reports whether the user is the visitor or the business
// owner of the conversation.
func (s *chatService) CanAccess(userID, conversationID uint) (bool, error) {
	conversation, err := s.chatRepo.FindConversationByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrConversationNotFound
		}
		return false, err
	}
	return conversation.UserID == userID || conversation.Business.OwnerID == userID, nil
}

func (s *chatService) loadConversation(userID, conversationID uint) (*model.Conversation, error) {
	conversation, err := s.chatRepo.FindConversationByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conversation.UserID != userID && conversation.Business.OwnerID != userID {
		return nil, ErrConversationAccess
	}
	return conversation, nil
}

// GetMessages returns the thread in sequence order and marks the
// other party's messages as read.
func (s *chatService) GetMessages(userID, conversationID uint, afterSeq uint64) ([]MessageView, error) {
	conversation, err := s.loadConversation(userID, conversationID)
	if err != nil {
		return nil, err
	}

	var messages []model.Message
	if afterSeq > 0 {
		messages, err = s.chatRepo.ListMessagesAfter(conversationID, afterSeq)
	} else {
		messages, err = s.chatRepo.ListMessages(conversationID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.chatRepo.MarkMessagesRead(conversationID, userID); err != nil {
		logger.Warn("Failed to mark messages read", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
	}

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, buildMessageView(&m, conversation, userID))
	}
	return views, nil
}

// classifyAttachment derives the stored file type from the declared
// content type. Only image, video and application payloads are
// accepted.
func classifyAttachment(contentType string) (string, error) {
	if contentType == "" {
		return "file", nil
	}

	token := contentType
	if idx := strings.Index(token, "/"); idx >= 0 {
		token = token[:idx]
	}
	token = strings.ToLower(strings.TrimSpace(token))

	switch token {
	case "image", "video", "application":
		return token, nil
	default:
		return "", ErrInvalidAttachment
	}
}

func (s *chatService) SendMessage(userID, conversationID uint, content string, attachment *AttachmentInput) (*MessageView, error) {
	conversation, err := s.loadConversation(userID, conversationID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" && attachment == nil {
		return nil, ErrEmptyMessage
	}

	message := &model.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
	}

	if attachment != nil {
		if attachment.Size > maxAttachmentSize {
			return nil, ErrAttachmentTooLarge
		}
		fileType, err := classifyAttachment(attachment.ContentType)
		if err != nil {
			return nil, err
		}
		message.FileURL = attachment.FileURL
		message.FileType = fileType
		message.FileName = attachment.FileName
	}

	if err := s.chatRepo.CreateMessage(message); err != nil {
		logger.Error("Failed to create message", err, map[string]interface{}{
			"conversation_id": conversationID,
			"sender_id":       userID,
		})
		return nil, err
	}

	if sender, err := s.userRepo.FindByID(userID); err == nil {
		message.Sender = *sender
	}

	view := buildMessageView(message, conversation, userID)

	if s.hub != nil {
		recipientView := view
		recipientView.IsSent = false
		if err := s.hub.SendToConversation(conversationID, recipientView, userID); err != nil {
			logger.Warn("Failed to push message", map[string]interface{}{
				"conversation_id": conversationID,
			})
		}
	}

	return &view, nil
}

func buildMessageView(m *model.Message, conversation *model.Conversation, viewerID uint) MessageView {
	view := MessageView{
		ID:           m.ID,
		Seq:          m.Seq,
		Content:      m.Content,
		Sender:       m.Sender.Username,
		BusinessName: conversation.Business.Name,
		BusinessSlug: conversation.Business.Slug,
		CreatedAt:    m.CreatedAt.Format("15:04"),
		IsSent:       m.SenderID == viewerID,
	}
	if m.FileURL != "" {
		view.FileURL = &m.FileURL
		view.FileType = &m.FileType
	}
	return view
}
