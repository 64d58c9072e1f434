package app

import (
	"testing"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/core"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

func TestRelay(t *testing.T) {
	setup := func(t *testing.T) (*RoomRegistry, *Relay, domain.RoomID, map[domain.ParticipantID]*fakeConn) {
		t.Helper()
		rr := NewRoomRegistry()
		relay := NewRelay(rr)
		id := rr.Create("a")
		conns := make(map[domain.ParticipantID]*fakeConn)
		for _, sid := range []domain.ParticipantID{"a", "b", "c"} {
			s, c := newMember(sid)
			if _, err := rr.Join(id, sid, s); err != nil {
				t.Fatalf("join %s: %v", sid, err)
			}
			conns[sid] = c
		}
		return rr, relay, id, conns
	}

	t.Run("broadcast excludes the sender", func(t *testing.T) {
		_, relay, _, conns := setup(t)

		res := relay.Broadcast("a", core.Frame("hello"))
		if res.SentTo != 2 {
			t.Fatalf("expected fan-out to 2, got %d", res.SentTo)
		}
		if conns["a"].count() != 0 {
			t.Fatal("sender must not receive its own broadcast")
		}
		for _, sid := range []domain.ParticipantID{"b", "c"} {
			if conns[sid].count() != 1 {
				t.Fatalf("%s expected 1 frame, got %d", sid, conns[sid].count())
			}
			if string(conns[sid].last()) != "hello" {
				t.Fatalf("%s got frame %q", sid, conns[sid].last())
			}
		}
	})

	t.Run("broadcast uses the membership at the moment of delivery", func(t *testing.T) {
		rr, relay, _, conns := setup(t)
		rr.Leave("c")

		res := relay.Broadcast("a", core.Frame("x"))
		if res.SentTo != 1 {
			t.Fatalf("expected fan-out to 1, got %d", res.SentTo)
		}
		if conns["c"].count() != 0 {
			t.Fatal("departed member must receive nothing")
		}
	})

	t.Run("directed delivers to exactly one recipient", func(t *testing.T) {
		_, relay, _, conns := setup(t)

		if !relay.Direct("a", "b", core.Frame("offer")) {
			t.Fatal("expected delivery")
		}
		if conns["b"].count() != 1 || conns["c"].count() != 0 || conns["a"].count() != 0 {
			t.Fatalf("delivery counts a=%d b=%d c=%d", conns["a"].count(), conns["b"].count(), conns["c"].count())
		}
	})

	t.Run("directed to an absent target is a silent no-op", func(t *testing.T) {
		_, relay, _, conns := setup(t)

		if relay.Direct("a", "ghost", core.Frame("offer")) {
			t.Fatal("expected drop for unknown target")
		}
		for sid, c := range conns {
			if c.count() != 0 {
				t.Fatalf("%s must receive nothing, got %d", sid, c.count())
			}
		}
	})

	t.Run("sender outside any room sends to nobody", func(t *testing.T) {
		rr := NewRoomRegistry()
		relay := NewRelay(rr)
		res := relay.Broadcast("stranger", core.Frame("x"))
		if res.SentTo != 0 || len(res.Dropped) != 0 {
			t.Fatalf("expected empty result, got %+v", res)
		}
		if relay.Direct("stranger", "anyone", core.Frame("x")) {
			t.Fatal("directed from roomless sender must drop")
		}
	})

	t.Run("a captured set excludes members who joined after it", func(t *testing.T) {
		rr, relay, id, conns := setup(t)
		snaps := rr.Snapshot(id)

		sd, cd := newMember("d")
		if _, err := rr.Join(id, "d", sd); err != nil {
			t.Fatalf("join d: %v", err)
		}

		res := relay.BroadcastTo(id, snaps, "a", core.Frame("x"))
		if res.SentTo != 2 {
			t.Fatalf("expected fan-out to 2, got %d", res.SentTo)
		}
		if cd.count() != 0 {
			t.Fatal("member outside the captured set must receive nothing")
		}
		if conns["b"].count() != 1 || conns["c"].count() != 1 {
			t.Fatalf("captured members got b=%d c=%d frames", conns["b"].count(), conns["c"].count())
		}
	})

	t.Run("a full recipient buffer drops the frame without stalling others", func(t *testing.T) {
		_, relay, _, conns := setup(t)
		conns["b"].full = true

		res := relay.Broadcast("a", core.Frame("x"))
		if res.SentTo != 1 {
			t.Fatalf("expected 1 delivery, got %d", res.SentTo)
		}
		if len(res.Dropped) != 1 || res.Dropped[0] != "b" {
			t.Fatalf("expected b dropped, got %v", res.Dropped)
		}
		if conns["c"].count() != 1 {
			t.Fatal("healthy recipient must still receive the frame")
		}
	})
}
