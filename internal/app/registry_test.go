package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/core"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

// fakeConn records frames for assertions and can simulate backpressure.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return errors.New("backpressure")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeConn) last() core.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[len(f.frames)-1]
}

func newMember(id domain.ParticipantID) (core.MemberSession, *fakeConn) {
	conn := &fakeConn{}
	return core.NewMemberSession(domain.NewParticipant(id), conn), conn
}

func TestRoomRegistry(t *testing.T) {
	t.Run("join and leave maintain the non-empty invariant", func(t *testing.T) {
		rr := NewRoomRegistry()
		id := rr.Create("alice")

		sa, _ := newMember("alice")
		if _, err := rr.Join(id, "alice", sa); err != nil {
			t.Fatalf("join alice: %v", err)
		}
		if !rr.Exists(id) || rr.MemberCount(id) != 1 {
			t.Fatalf("expected room with 1 member, exists=%v count=%d", rr.Exists(id), rr.MemberCount(id))
		}

		sb, _ := newMember("bob")
		if _, err := rr.Join(id, "bob", sb); err != nil {
			t.Fatalf("join bob: %v", err)
		}
		if rr.MemberCount(id) != 2 {
			t.Fatalf("expected 2 members, got %d", rr.MemberCount(id))
		}

		if room, ok := rr.Leave("bob"); !ok || room != id {
			t.Fatalf("leave bob: ok=%v room=%s", ok, room)
		}
		if !rr.Exists(id) {
			t.Fatal("room must survive while alice remains")
		}

		rr.Leave("alice")
		if rr.Exists(id) {
			t.Fatal("room must be deleted the instant its last member leaves")
		}
	})

	t.Run("joining a nonexistent room never mutates state", func(t *testing.T) {
		rr := NewRoomRegistry()
		sa, _ := newMember("alice")
		if _, err := rr.Join("no-such-room", "alice", sa); !errors.Is(err, ErrRoomNotFound) {
			t.Fatalf("expected ErrRoomNotFound, got %v", err)
		}
		if _, ok := rr.RoomOf("alice"); ok {
			t.Fatal("failed join must not bind the participant to a room")
		}
	})

	t.Run("leave is idempotent", func(t *testing.T) {
		rr := NewRoomRegistry()
		id := rr.Create("alice")
		sa, _ := newMember("alice")
		if _, err := rr.Join(id, "alice", sa); err != nil {
			t.Fatalf("join: %v", err)
		}

		if _, ok := rr.Leave("alice"); !ok {
			t.Fatal("first leave must report membership")
		}
		if _, ok := rr.Leave("alice"); ok {
			t.Fatal("second leave must be a no-op")
		}
	})

	t.Run("creator gets the host flag on join", func(t *testing.T) {
		rr := NewRoomRegistry()
		id := rr.Create("alice")

		sa, _ := newMember("alice")
		sb, _ := newMember("bob")
		if _, err := rr.Join(id, "bob", sb); err != nil {
			t.Fatalf("join bob: %v", err)
		}
		if _, err := rr.Join(id, "alice", sa); err != nil {
			t.Fatalf("join alice: %v", err)
		}

		if !sa.Meta().Host {
			t.Fatal("creator must become host")
		}
		if sb.Meta().Host {
			t.Fatal("non-creator must not be host")
		}
	})

	t.Run("snapshot preserves join order", func(t *testing.T) {
		rr := NewRoomRegistry()
		id := rr.Create("a")
		for _, sid := range []domain.ParticipantID{"a", "b", "c"} {
			s, _ := newMember(sid)
			if _, err := rr.Join(id, sid, s); err != nil {
				t.Fatalf("join %s: %v", sid, err)
			}
		}
		snaps := rr.Snapshot(id)
		if len(snaps) != 3 {
			t.Fatalf("expected 3 members, got %d", len(snaps))
		}
		for i, want := range []domain.ParticipantID{"a", "b", "c"} {
			if snaps[i].ID != want {
				t.Fatalf("order[%d] = %s, want %s", i, snaps[i].ID, want)
			}
		}
	})

	t.Run("a drained room id is not joinable again", func(t *testing.T) {
		rr := NewRoomRegistry()
		id := rr.Create("alice")
		sa, _ := newMember("alice")
		if _, err := rr.Join(id, "alice", sa); err != nil {
			t.Fatalf("join: %v", err)
		}
		rr.Leave("alice")

		sb, _ := newMember("bob")
		if _, err := rr.Join(id, "bob", sb); !errors.Is(err, ErrRoomNotFound) {
			t.Fatalf("expected ErrRoomNotFound after drain, got %v", err)
		}
	})

	t.Run("join reports the members present at the instant of joining", func(t *testing.T) {
		rr := NewRoomRegistry()
		id := rr.Create("a")

		sa, _ := newMember("a")
		prior, err := rr.Join(id, "a", sa)
		if err != nil {
			t.Fatalf("join a: %v", err)
		}
		if len(prior) != 0 {
			t.Fatalf("first joiner must see an empty room, got %d", len(prior))
		}

		sb, _ := newMember("b")
		prior, err = rr.Join(id, "b", sb)
		if err != nil {
			t.Fatalf("join b: %v", err)
		}
		if len(prior) != 1 || prior[0].ID != "a" {
			t.Fatalf("b's prior set = %v", prior)
		}

		sc, _ := newMember("c")
		prior, err = rr.Join(id, "c", sc)
		if err != nil {
			t.Fatalf("join c: %v", err)
		}
		if len(prior) != 2 || prior[0].ID != "a" || prior[1].ID != "b" {
			t.Fatalf("c's prior set = %v", prior)
		}
	})

	t.Run("of two concurrent joiners exactly one observes the other", func(t *testing.T) {
		rr := NewRoomRegistry()
		id := rr.Create("seed")
		seed, _ := newMember("seed")
		if _, err := rr.Join(id, "seed", seed); err != nil {
			t.Fatalf("join seed: %v", err)
		}

		const n = 20
		sids := make([]domain.ParticipantID, n)
		priors := make(map[domain.ParticipantID]map[domain.ParticipantID]bool)
		var mu sync.Mutex
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			sid := domain.ParticipantID(string(rune('A'+i%26)) + string(rune('0'+i/26)))
			sids[i] = sid
			wg.Add(1)
			go func(sid domain.ParticipantID) {
				defer wg.Done()
				s, _ := newMember(sid)
				prior, err := rr.Join(id, sid, s)
				if err != nil {
					t.Errorf("join %s: %v", sid, err)
					return
				}
				seen := make(map[domain.ParticipantID]bool, len(prior))
				for _, m := range prior {
					seen[m.ID] = true
				}
				mu.Lock()
				priors[sid] = seen
				mu.Unlock()
			}(sid)
		}
		wg.Wait()

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				x, y := sids[i], sids[j]
				if priors[x][y] == priors[y][x] {
					t.Fatalf("pair %s/%s: x sees y=%v, y sees x=%v; exactly one must observe the other",
						x, y, priors[x][y], priors[y][x])
				}
			}
		}
	})

	t.Run("concurrent joins and leaves keep counts consistent", func(t *testing.T) {
		rr := NewRoomRegistry()
		id := rr.Create("keeper")
		keeper, _ := newMember("keeper")
		if _, err := rr.Join(id, "keeper", keeper); err != nil {
			t.Fatalf("join keeper: %v", err)
		}

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				sid := domain.ParticipantID(rune('A' + n%26))
				sid = domain.ParticipantID(string(sid) + string(rune('0'+n/26)))
				s, _ := newMember(sid)
				if _, err := rr.Join(id, sid, s); err != nil {
					t.Errorf("join %s: %v", sid, err)
					return
				}
				rr.Leave(sid)
			}(i)
		}
		wg.Wait()

		if got := rr.MemberCount(id); got != 1 {
			t.Fatalf("expected only keeper to remain, got %d", got)
		}
		if !rr.Exists(id) {
			t.Fatal("room must still exist")
		}
	})
}
