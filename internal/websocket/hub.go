package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/kasbino/kasbino-backend/pkg/logger"
)

const maxMessagesPerSecond = 10

// ClientMessage is a control frame from the browser, currently only
// typing indicators.
type ClientMessage struct {
	Type           string `json:"type"` // typing_start, typing_stop
	ConversationID uint   `json:"conversation_id"`
}

// Client is one websocket session of a user.
type Client struct {
	Hub           *Hub
	Conn          *Conn
	UserID        uint
	Send          chan []byte
	Conversations map[uint]bool
	mu            sync.RWMutex
	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

// Hub tracks connected clients and routes conversation events to them.
// Delivery is best-effort: the HTTP polling endpoints remain the
// source of truth for message history.
type Hub struct {
	clients    map[uint][]*Client // UserID -> sessions, multi-device
	rooms      map[uint]map[uint]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	mu         sync.RWMutex
}

type BroadcastMessage struct {
	ConversationID uint
	Message        []byte
	SenderID       uint // excluded from delivery
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		rooms:      make(map[uint]map[uint]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					}
				}

				if len(newList) == 0 {
					delete(h.clients, client.UserID)

					client.mu.RLock()
					for conversationID := range client.Conversations {
						if users, ok := h.rooms[conversationID]; ok {
							delete(users, client.UserID)
							if len(users) == 0 {
								delete(h.rooms, conversationID)
							}
						}
					}
					client.mu.RUnlock()
				} else {
					h.clients[client.UserID] = newList
				}

				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			if users, ok := h.rooms[message.ConversationID]; ok {
				for userID := range users {
					if userID == message.SenderID {
						continue
					}

					if clientList, ok := h.clients[userID]; ok {
						for _, client := range clientList {
							select {
							case client.Send <- message.Message:
							default:
								go h.Unregister(client)
								logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
									"user_id": userID,
								})
							}
						}
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// JoinConversation subscribes all of the user's sessions to a thread.
func (h *Hub) JoinConversation(userID, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clientList, ok := h.clients[userID]; ok {
		for _, client := range clientList {
			client.mu.Lock()
			client.Conversations[conversationID] = true
			client.mu.Unlock()
		}

		if _, ok := h.rooms[conversationID]; !ok {
			h.rooms[conversationID] = make(map[uint]bool)
		}
		h.rooms[conversationID][userID] = true
	}
}

func (h *Hub) LeaveConversation(userID, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clientList, ok := h.clients[userID]; ok {
		for _, client := range clientList {
			client.mu.Lock()
			delete(client.Conversations, conversationID)
			client.mu.Unlock()
		}
	}

	if users, ok := h.rooms[conversationID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(h.rooms, conversationID)
		}
	}
}

// SendToConversation pushes an event to everyone in the thread except
// the sender. A full broadcast queue drops the event rather than
// blocking the caller.
func (h *Hub) SendToConversation(conversationID uint, message interface{}, senderID uint) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{
		ConversationID: conversationID,
		Message:        data,
		SenderID:       senderID,
	}:
		return nil
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"conversation_id": conversationID,
		})
		return nil
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// HandleClientMessage processes a control frame from the browser.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	if msg.Type == "typing_start" || msg.Type == "typing_stop" {
		client.mu.RLock()
		_, isInConversation := client.Conversations[msg.ConversationID]
		client.mu.RUnlock()

		if !isInConversation {
			return
		}

		response := map[string]interface{}{
			"type":            msg.Type,
			"conversation_id": msg.ConversationID,
			"user_id":         client.UserID,
		}

		if err := h.SendToConversation(msg.ConversationID, response, client.UserID); err != nil {
			logger.Error("Failed to broadcast typing event", err, map[string]interface{}{
				"user_id": client.UserID,
			})
		}
	}
}
