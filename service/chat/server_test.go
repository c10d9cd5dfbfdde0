package chat

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"skillswap/module/message/model"
	"skillswap/tools/errs"
)

type fakeDirectory struct {
	setOnline []string // "<user>:true" / "<user>:false" in call order
}

func (f *fakeDirectory) SetOnline(_ context.Context, userID string, online bool) error {
	state := "false"
	if online {
		state = "true"
	}
	f.setOnline = append(f.setOnline, userID+":"+state)
	return nil
}

func (f *fakeDirectory) DisplayMeta(_ context.Context, userID string) (string, string, error) {
	return "User " + userID[:4], "photo.png", nil
}

type fakeMessages struct {
	created []*model.Message
	fail    bool
}

func (f *fakeMessages) Create(_ context.Context, m *model.Message) error {
	if f.fail {
		return errs.New("write refused")
	}
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	f.created = append(f.created, m)
	return nil
}

func newTestServer() (*Server, *fakeDirectory, *fakeMessages) {
	dir := &fakeDirectory{}
	msgs := &fakeMessages{}
	s := NewServer(dir, msgs, "1")
	return s, dir, msgs
}

func newTestConn(s *Server) *WsConn {
	c := &WsConn{
		ID:   primitive.NewObjectID().Hex(),
		Send: make(chan []byte, 32),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.conns[c.ID] = c
	s.mu.Unlock()
	return c
}

// drain pulls every frame queued on the connection so far.
func drain(c *WsConn) []Frame {
	var out []Frame
	for {
		select {
		case raw := <-c.Send:
			var f Frame
			if err := json.Unmarshal(raw, &f); err != nil {
				panic(err)
			}
			out = append(out, f)
		default:
			return out
		}
	}
}

func frame(event string, data map[string]any) *Frame {
	return &Frame{Event: event, Data: data}
}

func TestRoomIDCommutative(t *testing.T) {
	a, b := "64a000000000000000000001", "64a000000000000000000002"
	if RoomID(a, b) != RoomID(b, a) {
		t.Fatalf("RoomID not symmetric: %q vs %q", RoomID(a, b), RoomID(b, a))
	}
	if want := a + "_" + b; RoomID(b, a) != want {
		t.Fatalf("RoomID = %q, want %q", RoomID(b, a), want)
	}
}

func TestOnlineOfflineBroadcastOrder(t *testing.T) {
	s, dir, _ := newTestServer()
	alice := newTestConn(s)
	observer := newTestConn(s)

	s.dispatch(alice, frame(EventUserOnline, map[string]any{"userId": "u1"}))
	s.dispatch(alice, frame(EventUserOffline, nil))

	got := drain(observer)
	if len(got) != 2 {
		t.Fatalf("observer saw %d frames, want 2", len(got))
	}
	for i, online := range []bool{true, false} {
		if got[i].Event != EventStatusChange {
			t.Fatalf("frame %d event = %q", i, got[i].Event)
		}
		if got[i].Data["userId"] != "u1" || got[i].Data["isOnline"] != online {
			t.Fatalf("frame %d data = %v", i, got[i].Data)
		}
	}
	if len(dir.setOnline) != 2 || dir.setOnline[0] != "u1:true" || dir.setOnline[1] != "u1:false" {
		t.Fatalf("durable writes = %v", dir.setOnline)
	}
}

func TestOfflineWithoutAnnounceIsNoop(t *testing.T) {
	s, dir, _ := newTestServer()
	anon := newTestConn(s)
	observer := newTestConn(s)

	s.dispatch(anon, frame(EventUserOffline, nil))

	if got := drain(observer); len(got) != 0 {
		t.Fatalf("observer saw %d frames, want 0", len(got))
	}
	if len(dir.setOnline) != 0 {
		t.Fatalf("durable writes = %v, want none", dir.setOnline)
	}
}

func TestReconnectKeepsNewerConnectionOnline(t *testing.T) {
	s, _, _ := newTestServer()
	old := newTestConn(s)
	s.dispatch(old, frame(EventUserOnline, map[string]any{"userId": "u1"}))

	// same user announces on a fresh connection, then the old one dies
	fresh := newTestConn(s)
	s.dispatch(fresh, frame(EventUserOnline, map[string]any{"userId": "u1"}))
	s.disconnect(old)

	if !s.IsOnline(context.Background(), "u1") {
		t.Fatal("user went offline although the newer connection is alive")
	}
}

func TestRelayFanOutOncePerMember(t *testing.T) {
	s, _, msgs := newTestServer()
	sender := primitive.NewObjectID().Hex()
	receiver := primitive.NewObjectID().Hex()
	room := RoomID(sender, receiver)

	a := newTestConn(s)
	b := newTestConn(s)
	outsider := newTestConn(s)
	s.dispatch(a, frame(EventJoinChat, map[string]any{"senderId": sender, "receiverId": receiver}))
	s.dispatch(b, frame(EventJoinChat, map[string]any{"senderId": receiver, "receiverId": sender}))

	s.dispatch(a, frame(EventSendMessage, map[string]any{
		"senderId":   sender,
		"receiverId": receiver,
		"message":    "hello",
	}))

	if len(msgs.created) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(msgs.created))
	}
	if msgs.created[0].ChatID != room {
		t.Fatalf("persisted chatId = %q, want %q", msgs.created[0].ChatID, room)
	}

	for name, c := range map[string]*WsConn{"sender": a, "receiver": b} {
		got := drain(c)
		if len(got) != 1 || got[0].Event != EventReceiveMessage {
			t.Fatalf("%s got %d frames, want exactly one receive_message", name, len(got))
		}
		senderMeta, ok := got[0].Data["sender"].(map[string]any)
		if !ok || senderMeta["_id"] != sender || senderMeta["photo"] != "photo.png" {
			t.Fatalf("%s sender meta = %v", name, got[0].Data["sender"])
		}
		if got[0].Data["text"] != "hello" {
			t.Fatalf("%s text = %v", name, got[0].Data["text"])
		}
	}
	if got := drain(outsider); len(got) != 0 {
		t.Fatalf("outsider saw %d frames, want 0", len(got))
	}
}

func TestJoinChatDerivesCanonicalRoom(t *testing.T) {
	s, _, _ := newTestServer()
	sender := primitive.NewObjectID().Hex()
	receiver := primitive.NewObjectID().Hex()
	room := RoomID(sender, receiver)

	a := newTestConn(s)
	b := newTestConn(s)
	// both sides name themselves first; the server computes the same room
	s.dispatch(a, frame(EventJoinChat, map[string]any{"senderId": sender, "receiverId": receiver}))
	s.dispatch(b, frame(EventJoinChat, map[string]any{"senderId": receiver, "receiverId": sender}))

	members := s.rooms.members(room)
	if len(members) != 2 {
		t.Fatalf("room %q has %d members after join_chat, want 2", room, len(members))
	}

	s.dispatch(a, frame(EventSendMessage, map[string]any{
		"senderId":   sender,
		"receiverId": receiver,
		"message":    "made it",
	}))
	if got := drain(b); len(got) != 1 || got[0].Event != EventReceiveMessage {
		t.Fatalf("receiver frames = %v, want one receive_message", got)
	}
}

func TestDuplicateSendPersistsTwice(t *testing.T) {
	s, _, msgs := newTestServer()
	sender := primitive.NewObjectID().Hex()
	receiver := primitive.NewObjectID().Hex()

	a := newTestConn(s)
	b := newTestConn(s)
	s.dispatch(a, frame(EventJoinChat, map[string]any{"senderId": sender, "receiverId": receiver}))
	s.dispatch(b, frame(EventJoinChat, map[string]any{"senderId": receiver, "receiverId": sender}))

	payload := map[string]any{
		"senderId":   sender,
		"receiverId": receiver,
		"message":    "again",
	}
	// no dedup on the relay path: a resend is a second message
	s.dispatch(a, frame(EventSendMessage, payload))
	s.dispatch(a, frame(EventSendMessage, payload))

	if len(msgs.created) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(msgs.created))
	}
	if msgs.created[0].ID == msgs.created[1].ID {
		t.Fatalf("both messages share id %s", msgs.created[0].ID.Hex())
	}
	got := drain(b)
	if len(got) != 2 {
		t.Fatalf("receiver saw %d frames, want 2", len(got))
	}
	if got[0].Data["_id"] == got[1].Data["_id"] {
		t.Fatalf("published frames share _id %v", got[0].Data["_id"])
	}
}

func TestOfflinePayloadWithoutAnnounceBroadcasts(t *testing.T) {
	s, dir, _ := newTestServer()
	anon := newTestConn(s)
	observer := newTestConn(s)

	s.dispatch(anon, frame(EventUserOffline, map[string]any{"userId": "u1"}))

	got := drain(observer)
	if len(got) != 1 || got[0].Event != EventStatusChange {
		t.Fatalf("observer frames = %v, want one user_status_change", got)
	}
	if got[0].Data["userId"] != "u1" || got[0].Data["isOnline"] != false {
		t.Fatalf("status data = %v", got[0].Data)
	}
	if len(dir.setOnline) != 1 || dir.setOnline[0] != "u1:false" {
		t.Fatalf("durable writes = %v", dir.setOnline)
	}
}

func TestRelaySuppliedChatIDWins(t *testing.T) {
	s, _, msgs := newTestServer()
	sender := primitive.NewObjectID().Hex()
	receiver := primitive.NewObjectID().Hex()

	a := newTestConn(s)
	s.dispatch(a, frame(EventJoinChat, map[string]any{"chatId": "custom_room"}))
	s.dispatch(a, frame(EventSendMessage, map[string]any{
		"senderId":   sender,
		"receiverId": receiver,
		"message":    "hi",
		"chatId":     "custom_room",
	}))

	if len(msgs.created) != 1 || msgs.created[0].ChatID != "custom_room" {
		t.Fatalf("supplied chatId not trusted: %+v", msgs.created)
	}
	if got := drain(a); len(got) != 1 {
		t.Fatalf("sender saw %d frames, want 1", len(got))
	}
}

func TestMalformedSendDroppedSilently(t *testing.T) {
	s, _, msgs := newTestServer()
	sender := primitive.NewObjectID().Hex()
	receiver := primitive.NewObjectID().Hex()

	a := newTestConn(s)
	s.dispatch(a, frame(EventJoinChat, map[string]any{"senderId": sender, "receiverId": receiver}))

	for _, data := range []map[string]any{
		{"receiverId": receiver, "message": "x"},     // no sender
		{"senderId": sender, "message": "x"},         // no receiver
		{"senderId": sender, "receiverId": receiver}, // no text
		{"senderId": "nothex", "receiverId": receiver, "message": "x"},
	} {
		s.dispatch(a, frame(EventSendMessage, data))
	}

	if len(msgs.created) != 0 {
		t.Fatalf("persisted %d messages, want 0", len(msgs.created))
	}
	if got := drain(a); len(got) != 0 {
		t.Fatalf("sender saw %d frames, want 0 (no error frames either)", len(got))
	}
}

func TestPersistFailureAbortsPublish(t *testing.T) {
	s, _, msgs := newTestServer()
	msgs.fail = true
	sender := primitive.NewObjectID().Hex()
	receiver := primitive.NewObjectID().Hex()

	a := newTestConn(s)
	b := newTestConn(s)
	s.dispatch(a, frame(EventJoinChat, map[string]any{"senderId": sender, "receiverId": receiver}))
	s.dispatch(b, frame(EventJoinChat, map[string]any{"senderId": receiver, "receiverId": sender}))

	s.dispatch(a, frame(EventSendMessage, map[string]any{
		"senderId":   sender,
		"receiverId": receiver,
		"message":    "will not land",
	}))

	if got := drain(b); len(got) != 0 {
		t.Fatalf("receiver saw %d frames after failed write, want 0", len(got))
	}
}

func TestTypingExcludesSender(t *testing.T) {
	s, _, _ := newTestServer()
	sender := primitive.NewObjectID().Hex()
	receiver := primitive.NewObjectID().Hex()

	a := newTestConn(s)
	b := newTestConn(s)
	s.dispatch(a, frame(EventJoinChat, map[string]any{"senderId": sender, "receiverId": receiver}))
	s.dispatch(b, frame(EventJoinChat, map[string]any{"senderId": receiver, "receiverId": sender}))

	s.dispatch(a, frame(EventTyping, map[string]any{"senderId": sender, "receiverId": receiver}))
	s.dispatch(a, frame(EventStopTyping, map[string]any{"senderId": sender, "receiverId": receiver}))

	if got := drain(a); len(got) != 0 {
		t.Fatalf("sender saw %d of its own typing frames", len(got))
	}
	got := drain(b)
	if len(got) != 2 {
		t.Fatalf("peer saw %d frames, want 2", len(got))
	}
	if got[0].Data["isTyping"] != true || got[1].Data["isTyping"] != false {
		t.Fatalf("typing sequence = %v, %v", got[0].Data, got[1].Data)
	}
}

func TestTypingAutoClearAfterInactivity(t *testing.T) {
	s, _, _ := newTestServer()
	s.typingWindow = 20 * time.Millisecond
	sender := primitive.NewObjectID().Hex()
	receiver := primitive.NewObjectID().Hex()

	a := newTestConn(s)
	b := newTestConn(s)
	s.dispatch(a, frame(EventJoinChat, map[string]any{"senderId": sender, "receiverId": receiver}))
	s.dispatch(b, frame(EventJoinChat, map[string]any{"senderId": receiver, "receiverId": sender}))

	s.dispatch(a, frame(EventTyping, map[string]any{"senderId": sender, "receiverId": receiver}))

	deadline := time.After(time.Second)
	var got []Frame
	for len(got) < 2 {
		select {
		case raw := <-b.Send:
			var f Frame
			if err := json.Unmarshal(raw, &f); err != nil {
				t.Fatal(err)
			}
			got = append(got, f)
		case <-deadline:
			t.Fatalf("auto-clear never arrived, got %v", got)
		}
	}
	if got[0].Data["isTyping"] != true || got[1].Data["isTyping"] != false {
		t.Fatalf("typing sequence = %v, %v", got[0].Data, got[1].Data)
	}
}

func TestDisconnectTeardown(t *testing.T) {
	s, dir, msgs := newTestServer()
	sender := primitive.NewObjectID().Hex()
	receiver := primitive.NewObjectID().Hex()
	room := RoomID(sender, receiver)

	a := newTestConn(s)
	b := newTestConn(s)
	s.dispatch(a, frame(EventUserOnline, map[string]any{"userId": sender}))
	s.dispatch(b, frame(EventUserOnline, map[string]any{"userId": receiver}))
	s.dispatch(a, frame(EventJoinChat, map[string]any{"senderId": sender, "receiverId": receiver}))
	s.dispatch(b, frame(EventJoinChat, map[string]any{"senderId": receiver, "receiverId": sender}))
	s.dispatch(a, frame(EventSendMessage, map[string]any{
		"senderId": sender, "receiverId": receiver, "message": "hi",
	}))
	drain(a)
	drain(b)

	s.disconnect(a)

	if s.IsOnline(context.Background(), sender) {
		t.Fatal("disconnected user still online")
	}
	got := drain(b)
	if len(got) != 1 || got[0].Event != EventStatusChange || got[0].Data["isOnline"] != false {
		t.Fatalf("peer frames after disconnect = %v", got)
	}
	if members := s.rooms.members(room); len(members) != 1 || members[0] != b.ID {
		t.Fatalf("room members after disconnect = %v", members)
	}
	if last := dir.setOnline[len(dir.setOnline)-1]; last != sender+":false" {
		t.Fatalf("last durable write = %q", last)
	}
	if len(msgs.created) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(msgs.created))
	}
}
