package chat

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"skillswap/logger"
	"skillswap/module/message/model"
	"skillswap/service/storage"
	"skillswap/tools/decode"
)

// defaultTypingWindow is how long a typing indicator may stay lit without
// another typing frame before the server clears it itself.
const defaultTypingWindow = 5 * time.Second

const storeTimeout = 5 * time.Second

// UserDirectory is the slice of the user store the hub needs.
type UserDirectory interface {
	SetOnline(ctx context.Context, userID string, online bool) error
	DisplayMeta(ctx context.Context, userID string) (name, photo string, err error)
}

// MessageWriter persists relayed messages before they are published.
type MessageWriter interface {
	Create(ctx context.Context, m *model.Message) error
}

// Server is the realtime hub: the connection set, the presence registry, the
// room membership table and the typing timers. Presence mutations are
// serialized under mu, durable write included, so the registry and the
// isOnline flags cannot interleave out of order.
type Server struct {
	mu       sync.Mutex
	conns    map[string]*WsConn // conn id -> conn
	presence map[string]string  // user id -> conn id, last write wins
	connUser map[string]string  // conn id -> announced user id
	typing   map[string]*time.Timer

	rooms    *roomTable
	users    UserDirectory
	messages MessageWriter
	nodeID   string

	typingWindow time.Duration

	upgrader websocket.Upgrader
}

func NewServer(users UserDirectory, messages MessageWriter, nodeID string) *Server {
	return &Server{
		conns:    make(map[string]*WsConn),
		presence: make(map[string]string),
		connUser: make(map[string]string),
		typing:   make(map[string]*time.Timer),
		rooms:    newRoomTable(),
		users:    users,
		messages: messages,
		nodeID:   nodeID,

		typingWindow: defaultTypingWindow,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the request and runs the connection until the peer goes
// away, then tears everything down.
func (s *Server) HandleWS(c *gin.Context) {
	sock, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("[chat] upgrade: %v", err)
		return
	}
	conn := newConn(sock)

	s.mu.Lock()
	s.conns[conn.ID] = conn
	s.mu.Unlock()
	logger.Infof("[chat] conn %s connected", conn.ID)

	go conn.writePump()
	conn.readPump(s)
	s.disconnect(conn)
}

func (s *Server) dispatch(conn *WsConn, f *Frame) {
	switch f.Event {
	case EventUserOnline:
		p, err := decode.Payload[onlinePayload](f.Data)
		if err != nil || p.UserID == "" {
			logger.Infof("[chat] conn %s %s without userId", conn.ID, f.Event)
			return
		}
		s.markOnline(conn, p.UserID)
	case EventUserOffline:
		userID := ""
		if p, err := decode.Payload[onlinePayload](f.Data); err == nil {
			userID = p.UserID
		}
		s.markOffline(conn, userID)
	case EventJoinChat:
		p, err := decode.Payload[joinPayload](f.Data)
		if err != nil {
			logger.Infof("[chat] conn %s bad join_chat: %v", conn.ID, err)
			return
		}
		// the server derives the canonical room; a supplied chatId overrides
		roomID := p.ChatID
		if roomID == "" {
			if p.SenderID == "" || p.ReceiverID == "" {
				logger.Infof("[chat] conn %s join_chat without participants", conn.ID)
				return
			}
			roomID = RoomID(p.SenderID, p.ReceiverID)
		}
		s.rooms.join(conn.ID, roomID)
	case EventSendMessage:
		p, err := decode.Payload[sendMessagePayload](f.Data)
		if err != nil {
			logger.Infof("[chat] conn %s bad send_message: %v", conn.ID, err)
			return
		}
		s.relayMessage(p)
	case EventTyping:
		s.relayTyping(conn, f.Data, true)
	case EventStopTyping:
		s.relayTyping(conn, f.Data, false)
	default:
		logger.Infof("[chat] conn %s unknown event %q", conn.ID, f.Event)
	}
}

// markOnline registers the user on this connection and announces the status
// change to everyone. A second connection for the same user simply takes
// over the registry slot.
func (s *Server) markOnline(conn *WsConn, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.presence[userID] = conn.ID
	s.connUser[conn.ID] = userID
	if err := s.users.SetOnline(ctx, userID, true); err != nil {
		logger.Errorf("[chat] set online %s: %v", userID, err)
	}
	if err := storage.PresenceOnline(ctx, userID, s.nodeID, 0); err != nil {
		logger.Errorf("[chat] presence mirror %s: %v", userID, err)
	}
	s.broadcastLocked(statusFrame(userID, true))
}

// markOffline takes the user from the event payload when supplied, falling
// back to the connection's announced user; a bare event from a connection
// that never announced is a no-op.
func (s *Server) markOffline(conn *WsConn, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == "" {
		s.markOfflineLocked(ctx, conn)
		return
	}
	// explicit payload: the named user goes offline no matter which
	// connection announced them
	if s.connUser[conn.ID] == userID {
		delete(s.connUser, conn.ID)
	}
	delete(s.presence, userID)
	if err := s.users.SetOnline(ctx, userID, false); err != nil {
		logger.Errorf("[chat] set offline %s: %v", userID, err)
	}
	if err := storage.PresenceOffline(ctx, userID); err != nil {
		logger.Errorf("[chat] presence mirror %s: %v", userID, err)
	}
	s.broadcastLocked(statusFrame(userID, false))
}

func (s *Server) markOfflineLocked(ctx context.Context, conn *WsConn) {
	userID, ok := s.connUser[conn.ID]
	if !ok {
		return
	}
	delete(s.connUser, conn.ID)
	// a newer connection may own the registry slot now
	if s.presence[userID] != conn.ID {
		return
	}
	delete(s.presence, userID)
	if err := s.users.SetOnline(ctx, userID, false); err != nil {
		logger.Errorf("[chat] set offline %s: %v", userID, err)
	}
	if err := storage.PresenceOffline(ctx, userID); err != nil {
		logger.Errorf("[chat] presence mirror %s: %v", userID, err)
	}
	s.broadcastLocked(statusFrame(userID, false))
}

// relayMessage persists then publishes. Invalid frames are logged and
// dropped with no error frame back; a failed write aborts the publish.
func (s *Server) relayMessage(p *sendMessagePayload) {
	if p.SenderID == "" || p.ReceiverID == "" || p.Message == "" {
		logger.Infof("[chat] dropping incomplete send_message sender=%q receiver=%q", p.SenderID, p.ReceiverID)
		return
	}
	sender, err := primitive.ObjectIDFromHex(p.SenderID)
	if err != nil {
		logger.Infof("[chat] dropping send_message, bad sender id %q", p.SenderID)
		return
	}
	receiver, err := primitive.ObjectIDFromHex(p.ReceiverID)
	if err != nil {
		logger.Infof("[chat] dropping send_message, bad receiver id %q", p.ReceiverID)
		return
	}
	chatID := p.ChatID
	if chatID == "" {
		chatID = RoomID(p.SenderID, p.ReceiverID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	msg := &model.Message{
		ChatID:   chatID,
		Sender:   sender,
		Receiver: receiver,
		Text:     p.Message,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		logger.Errorf("[chat] persist message %s -> %s: %v", p.SenderID, p.ReceiverID, err)
		return
	}

	name, photo, err := s.users.DisplayMeta(ctx, p.SenderID)
	if err != nil {
		logger.Errorf("[chat] sender meta %s: %v", p.SenderID, err)
		return
	}

	frame := messageFrame(msg.ID.Hex(), p.SenderID, name, photo, p.ReceiverID, msg.Text, msg.CreatedAt)
	s.emitToRoom(chatID, "", frame)
}

// relayTyping forwards the indicator to the room, never back to the sender's
// own connection, and arms a timer that clears a stuck indicator.
func (s *Server) relayTyping(conn *WsConn, data map[string]any, isTyping bool) {
	p, err := decode.Payload[typingPayload](data)
	if err != nil || p.SenderID == "" || p.ReceiverID == "" {
		logger.Infof("[chat] conn %s dropping typing frame", conn.ID)
		return
	}
	roomID := RoomID(p.SenderID, p.ReceiverID)
	s.emitToRoom(roomID, conn.ID, typingFrame(p.SenderID, isTyping))

	key := p.SenderID + "|" + roomID
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.typing[key]; ok {
		t.Stop()
		delete(s.typing, key)
	}
	if !isTyping {
		return
	}
	origin := conn.ID
	s.typing[key] = time.AfterFunc(s.typingWindow, func() {
		s.mu.Lock()
		delete(s.typing, key)
		s.mu.Unlock()
		s.emitToRoom(roomID, origin, typingFrame(p.SenderID, false))
	})
}

// disconnect runs full teardown: room membership, presence, typing timers,
// connection table.
func (s *Server) disconnect(conn *WsConn) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	rooms := s.rooms.leaveAll(conn.ID)

	s.mu.Lock()
	delete(s.conns, conn.ID)
	s.markOfflineLocked(ctx, conn)
	s.mu.Unlock()

	conn.close()
	logger.Infof("[chat] conn %s disconnected, left %d room(s)", conn.ID, len(rooms))
}

// IsOnline reports whether the user has a live connection on this node, or,
// when the redis mirror is configured, anywhere.
func (s *Server) IsOnline(ctx context.Context, userID string) bool {
	s.mu.Lock()
	_, local := s.presence[userID]
	s.mu.Unlock()
	if local {
		return true
	}
	_, online, err := storage.PresenceLookup(ctx, userID)
	if err != nil {
		logger.Errorf("[chat] presence lookup %s: %v", userID, err)
		return false
	}
	return online
}

// broadcastLocked fans a frame out to every connection. Caller holds mu.
func (s *Server) broadcastLocked(frame []byte) {
	for _, c := range s.conns {
		c.enqueue(frame)
	}
}

// emitToRoom sends a frame to each member of the room except the excluded
// connection (empty string excludes nobody).
func (s *Server) emitToRoom(roomID, exceptConnID string, frame []byte) {
	members := s.rooms.members(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, connID := range members {
		if connID == exceptConnID {
			continue
		}
		if c, ok := s.conns[connID]; ok {
			c.enqueue(frame)
		}
	}
}
