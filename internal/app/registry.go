package app

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/core"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

// ErrRoomNotFound is surfaced to the caller; the caller must create or
// request a fresh room id, there is nothing to retry.
var ErrRoomNotFound = errors.New("room not found")

// roomState is one mutual-exclusion domain: every membership mutation for a
// given room goes through its own lock, so operations on different rooms
// proceed fully in parallel.
type roomState struct {
	mu      sync.Mutex
	id      domain.RoomID
	creator domain.ParticipantID
	members map[domain.ParticipantID]core.MemberSession
	order   []domain.ParticipantID
	// gone marks a room drained to zero members. A joiner that raced the
	// last leave sees gone under the room lock and gets ErrRoomNotFound.
	gone bool
}

// RoomRegistry owns the room table: the only component with global
// knowledge of room membership.
type RoomRegistry struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]*roomState
	byPart map[domain.ParticipantID]domain.RoomID
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:  make(map[domain.RoomID]*roomState),
		byPart: make(map[domain.ParticipantID]domain.RoomID),
	}
}

// Create allocates a fresh room with an empty participant set. The creator
// becomes host when it joins.
func (rr *RoomRegistry) Create(creator domain.ParticipantID) domain.RoomID {
	id := domain.RoomID(uuid.NewString())
	rr.mu.Lock()
	rr.rooms[id] = &roomState{
		id:      id,
		creator: creator,
		members: make(map[domain.ParticipantID]core.MemberSession),
	}
	rr.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("room", string(id)).Str("creator", string(creator)).Msg("room created")
	return id
}

// Join adds the participant to the room's set and returns the membership as
// it was immediately before, captured under the room lock. Announcing the
// arrival to exactly that set keeps concurrent joins ordered: of any two
// joiners, precisely one observes the other. The caller must have removed
// the participant from any previous room first; a participant belongs to at
// most one room at a time.
func (rr *RoomRegistry) Join(id domain.RoomID, sid domain.ParticipantID, sess core.MemberSession) ([]core.MemberSnap, error) {
	rr.mu.Lock()
	room, ok := rr.rooms[id]
	if !ok {
		rr.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	rr.byPart[sid] = id
	rr.mu.Unlock()

	room.mu.Lock()
	if room.gone {
		room.mu.Unlock()
		rr.mu.Lock()
		if rr.byPart[sid] == id {
			delete(rr.byPart, sid)
		}
		rr.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if sid == room.creator {
		sess.Meta().Host = true
	}
	prior := make([]core.MemberSnap, 0, len(room.members))
	for _, mid := range room.order {
		if m, ok := room.members[mid]; ok && mid != sid {
			prior = append(prior, core.MemberSnap{ID: mid, Session: m})
		}
	}
	if _, dup := room.members[sid]; !dup {
		room.order = append(room.order, sid)
	}
	room.members[sid] = sess
	room.mu.Unlock()

	log.Info().Str("module", "app.registry").Str("room", string(id)).Str("sid", string(sid)).Msg("member joined")
	return prior, nil
}

// Leave removes the participant from whichever room it occupies. Idempotent:
// a participant not in any room is a no-op. Returns the room it left and
// whether it was a member, so the caller can broadcast exactly once. If the
// room drains to zero it is deleted at that instant.
func (rr *RoomRegistry) Leave(sid domain.ParticipantID) (domain.RoomID, bool) {
	rr.mu.Lock()
	id, ok := rr.byPart[sid]
	if !ok {
		rr.mu.Unlock()
		return "", false
	}
	delete(rr.byPart, sid)
	room := rr.rooms[id]
	rr.mu.Unlock()
	if room == nil {
		return "", false
	}

	room.mu.Lock()
	delete(room.members, sid)
	for i, m := range room.order {
		if m == sid {
			room.order = append(room.order[:i], room.order[i+1:]...)
			break
		}
	}
	empty := len(room.members) == 0
	if empty {
		room.gone = true
	}
	room.mu.Unlock()

	if empty {
		rr.mu.Lock()
		if cur, ok := rr.rooms[id]; ok && cur == room {
			delete(rr.rooms, id)
		}
		rr.mu.Unlock()
		log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room drained, deleted")
	}
	log.Info().Str("module", "app.registry").Str("room", string(id)).Str("sid", string(sid)).Msg("member left")
	return id, true
}

// RoomOf reports the room the participant currently occupies.
func (rr *RoomRegistry) RoomOf(sid domain.ParticipantID) (domain.RoomID, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	id, ok := rr.byPart[sid]
	return id, ok
}

// Exists reports whether the room id is present in the registry.
func (rr *RoomRegistry) Exists(id domain.RoomID) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	_, ok := rr.rooms[id]
	return ok
}

// MemberCount returns the size of the room's participant set.
func (rr *RoomRegistry) MemberCount(id domain.RoomID) int {
	room := rr.lookup(id)
	if room == nil {
		return 0
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return len(room.members)
}

// Member looks up one participant's session inside a specific room.
func (rr *RoomRegistry) Member(id domain.RoomID, sid domain.ParticipantID) (core.MemberSession, bool) {
	room := rr.lookup(id)
	if room == nil {
		return nil, false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	sess, ok := room.members[sid]
	return sess, ok
}

// Snapshot returns the room's membership in join order, computed under the
// room lock so fan-out always sees a consistent set.
func (rr *RoomRegistry) Snapshot(id domain.RoomID) []core.MemberSnap {
	room := rr.lookup(id)
	if room == nil {
		return nil
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	out := make([]core.MemberSnap, 0, len(room.members))
	for _, sid := range room.order {
		if sess, ok := room.members[sid]; ok {
			out = append(out, core.MemberSnap{ID: sid, Session: sess})
		}
	}
	return out
}

func (rr *RoomRegistry) lookup(id domain.RoomID) *roomState {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return rr.rooms[id]
}
