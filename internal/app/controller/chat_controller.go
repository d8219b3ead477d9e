package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kasbino/kasbino-backend/internal/app/service"
	apperrors "github.com/kasbino/kasbino-backend/internal/errors"
	"github.com/kasbino/kasbino-backend/internal/middleware"
	ws "github.com/kasbino/kasbino-backend/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"https://kasbino.ir":     true,
			"https://www.kasbino.ir": true,
			"http://localhost:5173":  true, // dev
			"http://localhost:3000":  true, // dev
		}
		return allowedOrigins[origin]
	},
}

type ChatController struct {
	chatService service.ChatService
	hub         *ws.Hub
}

func NewChatController(chatService service.ChatService, hub *ws.Hub) *ChatController {
	return &ChatController{
		chatService: chatService,
		hub:         hub,
	}
}

type SendMessageRequest struct {
	Content    string             `json:"content"`
	Attachment *AttachmentRequest `json:"attachment,omitempty"`
}

type AttachmentRequest struct {
	FileURL     string `json:"file_url" binding:"required"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// OpenConversation returns the thread with a business, creating it on
// first contact
// POST /api/v1/businesses/:slug/chat
func (ctrl *ChatController) OpenConversation(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "برای گفتگو ابتدا وارد شوید")
		return
	}

	slug := c.Param("slug")
	conversation, err := ctrl.chatService.OpenConversation(userID, slug)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "کسب‌وکار یافت نشد")
		case errors.Is(err, service.ErrChatWithOwnBusiness):
			apperrors.BadRequest(c, apperrors.ChatOwnBusinessForbidden, "امکان گفتگو با کسب‌وکار خودتان وجود ندارد")
		default:
			log.Error("Failed to open conversation", err, map[string]interface{}{
				"slug":    slug,
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "open conversation")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": gin.H{
			"id":            conversation.ID,
			"business_id":   conversation.BusinessID,
			"business_name": conversation.Business.Name,
			"business_slug": conversation.Business.Slug,
		},
	})
}

// ListConversations returns the caller's inbox
// GET /api/v1/chat/conversations
func (ctrl *ChatController) ListConversations(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "ورود به حساب کاربری الزامی است")
		return
	}

	conversations, err := ctrl.chatService.ListConversations(userID)
	if err != nil {
		log.Error("Failed to list conversations", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list conversations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
	})
}

func conversationIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه گفتگو نامعتبر است")
		return 0, false
	}
	return uint(id), true
}

// GetMessages returns a thread in sequence order; ?after=seq returns
// only newer messages for polling clients
// GET /api/v1/chat/conversations/:id/messages
func (ctrl *ChatController) GetMessages(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "ورود به حساب کاربری الزامی است")
		return
	}

	conversationID, ok := conversationIDParam(c)
	if !ok {
		return
	}

	var afterSeq uint64
	if after := c.Query("after"); after != "" {
		parsed, err := strconv.ParseUint(after, 10, 64)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "پارامتر after نامعتبر است")
			return
		}
		afterSeq = parsed
	}

	messages, err := ctrl.chatService.GetMessages(userID, conversationID, afterSeq)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			apperrors.NotFound(c, apperrors.ChatConversationNotFound, "گفتگو یافت نشد")
		case errors.Is(err, service.ErrConversationAccess):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.ChatAccessDenied, "شما به این گفتگو دسترسی ندارید")
		default:
			log.Error("Failed to get messages", err, map[string]interface{}{
				"conversation_id": conversationID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get messages")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
	})
}

// SendMessage appends a message to the thread
// POST /api/v1/chat/conversations/:id/messages
func (ctrl *ChatController) SendMessage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "ورود به حساب کاربری الزامی است")
		return
	}

	conversationID, ok := conversationIDParam(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "اطلاعات واردشده معتبر نیست")
		return
	}

	var attachment *service.AttachmentInput
	if req.Attachment != nil {
		attachment = &service.AttachmentInput{
			FileURL:     req.Attachment.FileURL,
			FileName:    req.Attachment.FileName,
			ContentType: req.Attachment.ContentType,
			Size:        req.Attachment.Size,
		}
	}

	message, err := ctrl.chatService.SendMessage(userID, conversationID, req.Content, attachment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			apperrors.NotFound(c, apperrors.ChatConversationNotFound, "گفتگو یافت نشد")
		case errors.Is(err, service.ErrConversationAccess):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.ChatAccessDenied, "شما به این گفتگو دسترسی ندارید")
		case errors.Is(err, service.ErrEmptyMessage):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "متن پیام یا فایل پیوست الزامی است")
		case errors.Is(err, service.ErrInvalidAttachment):
			apperrors.BadRequest(c, apperrors.ChatInvalidAttachment, "نوع فایل پیوست مجاز نیست")
		case errors.Is(err, service.ErrAttachmentTooLarge):
			apperrors.BadRequest(c, apperrors.ChatAttachmentTooLarge, "حجم فایل نباید بیشتر از ۱۰ مگابایت باشد")
		default:
			log.Error("Failed to send message", err, map[string]interface{}{
				"conversation_id": conversationID,
				"sender_id":       userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "send message")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
	})
}

// WebSocketHandler upgrades to a live connection for message pushes.
// Auth runs in middleware, with the token read from the query string.
// GET /api/v1/chat/ws
func (ctrl *ChatController) WebSocketHandler(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "ورود به حساب کاربری الزامی است")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := &ws.Client{
		Hub:           ctrl.hub,
		Conn:          &ws.Conn{Conn: conn},
		UserID:        userID,
		Send:          make(chan []byte, 2048),
		Conversations: make(map[uint]bool),
		LastResetTime: time.Now(),
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}

// JoinConversation subscribes the websocket session to a thread
// POST /api/v1/chat/conversations/:id/join
func (ctrl *ChatController) JoinConversation(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "ورود به حساب کاربری الزامی است")
		return
	}

	conversationID, ok := conversationIDParam(c)
	if !ok {
		return
	}

	allowed, err := ctrl.chatService.CanAccess(userID, conversationID)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			apperrors.NotFound(c, apperrors.ChatConversationNotFound, "گفتگو یافت نشد")
			return
		}
		log.Error("Failed to check conversation access", err, nil)
		apperrors.InternalError(c, "بررسی دسترسی با خطا مواجه شد")
		return
	}
	if !allowed {
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.ChatAccessDenied, "شما به این گفتگو دسترسی ندارید")
		return
	}

	ctrl.hub.JoinConversation(userID, conversationID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// LeaveConversation unsubscribes the websocket session from a thread
// POST /api/v1/chat/conversations/:id/leave
func (ctrl *ChatController) LeaveConversation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "ورود به حساب کاربری الزامی است")
		return
	}

	conversationID, ok := conversationIDParam(c)
	if !ok {
		return
	}

	ctrl.hub.LeaveConversation(userID, conversationID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
