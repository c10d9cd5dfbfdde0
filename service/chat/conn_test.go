package chat

import (
	"strconv"
	"testing"
)

func TestNewConnSnowflakeIDs(t *testing.T) {
	a := newConn(nil)
	b := newConn(nil)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("conn ids = %q, %q", a.ID, b.ID)
	}
	for _, c := range []*WsConn{a, b} {
		if _, err := strconv.ParseInt(c.ID, 10, 64); err != nil {
			t.Fatalf("conn id %q is not a snowflake: %v", c.ID, err)
		}
	}
}
