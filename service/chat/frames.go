package chat

import (
	"encoding/json"
	"time"
)

// Socket event names. Inbound events come from the client, outbound events
// are published by the server.
const (
	// inbound
	EventUserOnline  = "user_online"
	EventUserOffline = "user_offline"
	EventJoinChat    = "join_chat"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventStopTyping  = "stop_typing"

	// outbound
	EventStatusChange   = "user_status_change"
	EventReceiveMessage = "receive_message"
	EventUserTyping     = "user_typing"
)

// Frame is the wire envelope: {"event": "...", "data": {...}}.
type Frame struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

type onlinePayload struct {
	UserID string `json:"userId"`
}

type joinPayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	ChatID     string `json:"chatId"`
}

type sendMessagePayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
	ChatID     string `json:"chatId"`
}

type typingPayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

func marshalFrame(event string, data map[string]any) []byte {
	b, _ := json.Marshal(Frame{Event: event, Data: data})
	return b
}

func statusFrame(userID string, online bool) []byte {
	return marshalFrame(EventStatusChange, map[string]any{
		"userId":   userID,
		"isOnline": online,
	})
}

func typingFrame(senderID string, isTyping bool) []byte {
	return marshalFrame(EventUserTyping, map[string]any{
		"senderId": senderID,
		"isTyping": isTyping,
	})
}

func messageFrame(id string, senderID, name, photo, receiverID, text string, createdAt time.Time) []byte {
	return marshalFrame(EventReceiveMessage, map[string]any{
		"_id": id,
		"sender": map[string]any{
			"_id":   senderID,
			"name":  name,
			"photo": photo,
		},
		"receiver":  receiverID,
		"text":      text,
		"createdAt": createdAt,
	})
}
