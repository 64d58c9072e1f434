package app

import (
	"github.com/rs/zerolog/log"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/core"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

// Relay does pure forwarding. It is stateless with respect to rooms: it only
// reads membership from the registry at the moment of delivery. No retries,
// no queuing beyond each connection's outbound buffer.
type Relay struct {
	Rooms  *RoomRegistry
	Policy Policy
}

func NewRelay(rooms *RoomRegistry) *Relay {
	return &Relay{Rooms: rooms, Policy: SimplePolicy{}}
}

// Direct delivers a frame to exactly one recipient in the sender's room.
// A target not currently reachable from the sender's room is silently
// dropped: signaling is best-effort and an absent peer is an expected
// transient state. The return value exists for tests, not for callers to
// surface.
func (r *Relay) Direct(from, target domain.ParticipantID, frame core.Frame) bool {
	roomID, ok := r.Rooms.RoomOf(from)
	if !ok {
		return false
	}
	sess, ok := r.Rooms.Member(roomID, target)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("from", string(from)).Str("target", string(target)).Msg("directed target absent, dropped")
		return false
	}
	if err := sess.Signal().TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "app.relay").Str("target", string(target)).Msg("directed send dropped")
		return false
	}
	return true
}

// Broadcast fans a frame out to every current member of the sender's room,
// excluding the sender. The fan-out set is a locked snapshot, so a
// concurrent leave receives either all or none of a given broadcast.
func (r *Relay) Broadcast(from domain.ParticipantID, frame core.Frame) core.PublishResult {
	roomID, ok := r.Rooms.RoomOf(from)
	if !ok {
		return core.PublishResult{}
	}
	return r.BroadcastRoom(roomID, from, frame)
}

// BroadcastRoom fans out to a room the sender may have already left, which
// is how the departure event itself reaches the remaining members.
func (r *Relay) BroadcastRoom(roomID domain.RoomID, from domain.ParticipantID, frame core.Frame) core.PublishResult {
	return r.BroadcastTo(roomID, r.Rooms.Snapshot(roomID), from, frame)
}

// BroadcastTo fans out to a membership set captured earlier under the room
// lock. The recipients are exactly the members that preceded the triggering
// event, regardless of joins or leaves since.
func (r *Relay) BroadcastTo(roomID domain.RoomID, members []core.MemberSnap, from domain.ParticipantID, frame core.Frame) core.PublishResult {
	res := core.PublishResult{}
	for _, m := range members {
		if m.ID == from {
			continue
		}
		if err := m.Session.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, m.ID)
			if r.Policy != nil {
				r.Policy.OnBackpressure(roomID, m.ID)
			}
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "app.relay").Str("room", string(roomID)).Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
