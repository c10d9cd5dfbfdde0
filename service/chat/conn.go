package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"skillswap/logger"
	"skillswap/tools/ids"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 8 * 1024
	sendBuffer   = 64
)

// WsConn is one websocket connection. All outbound traffic goes through Send
// and is drained by a single writer goroutine; handlers never write to the
// socket directly.
type WsConn struct {
	ID   string
	Send chan []byte

	sock    *websocket.Conn
	done    chan struct{}
	closeMu sync.Once
}

func newConn(sock *websocket.Conn) *WsConn {
	return &WsConn{
		ID:   ids.GenerateString(),
		Send: make(chan []byte, sendBuffer),
		sock: sock,
		done: make(chan struct{}),
	}
}

// enqueue hands a frame to the writer without blocking. A consumer that
// cannot keep up loses frames rather than stalling the hub.
func (c *WsConn) enqueue(b []byte) {
	select {
	case c.Send <- b:
	case <-c.done:
	default:
		logger.Infof("[chat] dropping frame for slow conn %s", c.ID)
	}
}

func (c *WsConn) close() {
	c.closeMu.Do(func() {
		close(c.done)
		if c.sock != nil {
			_ = c.sock.Close()
		}
	})
}

// writePump drains Send onto the socket and keeps the connection alive with
// pings.
func (c *WsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case msg := <-c.Send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump parses inbound frames and feeds them to the dispatcher. It returns
// when the peer goes away; the caller runs disconnect cleanup.
func (c *WsConn) readPump(s *Server) {
	c.sock.SetReadLimit(maxFrameSize)
	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Infof("[chat] conn %s read: %v", c.ID, err)
			}
			return
		}
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			logger.Infof("[chat] conn %s bad frame: %v", c.ID, err)
			continue
		}
		s.dispatch(c, &f)
	}
}
