package chat

import (
	"sync"

	"skillswap/module/message/model"
)

// RoomID derives the canonical room for a pair of users. Both sides compute
// the same value regardless of argument order.
func RoomID(a, b string) string {
	return model.ChatIDOf(a, b)
}

// roomTable is a dual-indexed membership table: room to connections and
// connection to rooms. The reverse index makes full teardown on disconnect a
// direct lookup instead of a scan.
type roomTable struct {
	mu     sync.RWMutex
	byRoom map[string]map[string]struct{}
	byConn map[string]map[string]struct{}
}

func newRoomTable() *roomTable {
	return &roomTable{
		byRoom: make(map[string]map[string]struct{}),
		byConn: make(map[string]map[string]struct{}),
	}
}

func (t *roomTable) join(connID, roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.byRoom[roomID] == nil {
		t.byRoom[roomID] = make(map[string]struct{})
	}
	t.byRoom[roomID][connID] = struct{}{}
	if t.byConn[connID] == nil {
		t.byConn[connID] = make(map[string]struct{})
	}
	t.byConn[connID][roomID] = struct{}{}
}

func (t *roomTable) leave(connID, roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(connID, roomID)
}

// leaveAll removes the connection from every room it joined and returns the
// rooms it was in.
func (t *roomTable) leaveAll(connID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	rooms := make([]string, 0, len(t.byConn[connID]))
	for roomID := range t.byConn[connID] {
		rooms = append(rooms, roomID)
		t.removeLocked(connID, roomID)
	}
	return rooms
}

func (t *roomTable) removeLocked(connID, roomID string) {
	if conns, ok := t.byRoom[roomID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(t.byRoom, roomID)
		}
	}
	if rooms, ok := t.byConn[connID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(t.byConn, connID)
		}
	}
}

// members returns the connection ids currently in the room.
func (t *roomTable) members(roomID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.byRoom[roomID]))
	for connID := range t.byRoom[roomID] {
		out = append(out, connID)
	}
	return out
}
