package chat

import (
	"sort"
	"testing"
)

func TestRoomTableDualIndex(t *testing.T) {
	rt := newRoomTable()
	rt.join("c1", "r1")
	rt.join("c1", "r2")
	rt.join("c2", "r1")

	members := rt.members("r1")
	sort.Strings(members)
	if len(members) != 2 || members[0] != "c1" || members[1] != "c2" {
		t.Fatalf("r1 members = %v", members)
	}

	left := rt.leaveAll("c1")
	sort.Strings(left)
	if len(left) != 2 || left[0] != "r1" || left[1] != "r2" {
		t.Fatalf("leaveAll = %v", left)
	}
	if m := rt.members("r1"); len(m) != 1 || m[0] != "c2" {
		t.Fatalf("r1 members after leaveAll = %v", m)
	}
	if m := rt.members("r2"); len(m) != 0 {
		t.Fatalf("r2 members after leaveAll = %v", m)
	}
	// second teardown of the same conn is a no-op
	if left := rt.leaveAll("c1"); len(left) != 0 {
		t.Fatalf("repeat leaveAll = %v", left)
	}
}

func TestRoomTableJoinIsIdempotent(t *testing.T) {
	rt := newRoomTable()
	rt.join("c1", "r1")
	rt.join("c1", "r1")
	if m := rt.members("r1"); len(m) != 1 {
		t.Fatalf("r1 members = %v", m)
	}
}
