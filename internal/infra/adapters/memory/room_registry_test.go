package memory

import (
	"testing"

	"github.com/google/uuid"
)

func TestRoomRegistryJoinAndMembers(t *testing.T) {
	r := NewRoomRegistry()

	a, b := uuid.New(), uuid.New()

	r.Join(a, "m1")
	r.Join(b, "m1")

	members := r.MembersOf("m1")
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	if room, ok := r.RoomOf(a); !ok || room != "m1" {
		t.Fatalf("RoomOf(a) = %q, %v; want m1, true", room, ok)
	}
}

func TestRoomRegistryJoinIdempotent(t *testing.T) {
	r := NewRoomRegistry()

	a := uuid.New()

	r.Join(a, "m1")
	r.Join(a, "m1")

	if got := len(r.MembersOf("m1")); got != 1 {
		t.Fatalf("expected 1 member after double join, got %d", got)
	}
}

func TestRoomRegistryJoinMovesBetweenRooms(t *testing.T) {
	r := NewRoomRegistry()

	a := uuid.New()

	r.Join(a, "m1")
	r.Join(a, "m2")

	if got := len(r.MembersOf("m1")); got != 0 {
		t.Fatalf("expected old room empty, got %d members", got)
	}

	if room, _ := r.RoomOf(a); room != "m2" {
		t.Fatalf("RoomOf(a) = %q, want m2", room)
	}
}

func TestRoomRegistryLeaveUnknownIsNoop(t *testing.T) {
	r := NewRoomRegistry()

	// Must not panic or error on a session that never joined.
	r.Leave(uuid.New())

	if got := r.RoomCount(); got != 0 {
		t.Fatalf("RoomCount() = %d, want 0", got)
	}
}

func TestRoomRegistryRoomDisappearsWithLastMember(t *testing.T) {
	r := NewRoomRegistry()

	a := uuid.New()

	r.Join(a, "m1")
	if got := r.RoomCount(); got != 1 {
		t.Fatalf("RoomCount() = %d, want 1", got)
	}

	r.Leave(a)

	if got := r.RoomCount(); got != 0 {
		t.Fatalf("RoomCount() after last leave = %d, want 0", got)
	}
	if got := r.MembersOf("m1"); len(got) != 0 {
		t.Fatalf("MembersOf(m1) after last leave = %v, want empty", got)
	}
	if _, ok := r.RoomOf(a); ok {
		t.Fatal("RoomOf(a) still set after leave")
	}
}

func TestRoomRegistryRoomsAreIsolated(t *testing.T) {
	r := NewRoomRegistry()

	a, b := uuid.New(), uuid.New()

	r.Join(a, "m1")
	r.Join(b, "m2")

	m1 := r.MembersOf("m1")
	if len(m1) != 1 || m1[0] != a {
		t.Fatalf("MembersOf(m1) = %v, want [a]", m1)
	}
}
