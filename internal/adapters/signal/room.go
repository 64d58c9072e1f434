package signal

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/app"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/protocol"
)

func (ctl *Controller) handleCreateRoom(s *session) {
	if !ctl.Limiter.Allow(s.sid) {
		ctl.sendError(s.conn, "too_many_requests")
		return
	}
	id := ctl.Rooms.Create(s.sid)
	ctl.sendEnv(s.conn, &protocol.Envelope{
		Type: protocol.TypeRoomCreated,
		Room: id,
	})
}

func (ctl *Controller) handleJoin(s *session, env *protocol.Envelope) {
	if env.Room == "" {
		ctl.sendError(s.conn, "bad_payload")
		return
	}
	if !ctl.Limiter.Allow(s.sid) {
		ctl.sendError(s.conn, "too_many_requests")
		return
	}

	// Validate the target before evicting the sender from its current room:
	// a join to a nonexistent id must leave all registry state untouched.
	if !ctl.Rooms.Exists(env.Room) {
		log.Warn().Str("module", "signal").Str("sid", string(s.sid)).Str("room", string(env.Room)).Msg("join: room not found")
		ctl.sendError(s.conn, "room_not_found")
		return
	}

	// A participant belongs to at most one room: joining while already in a
	// room leaves the old one first, with its departure broadcast.
	if _, ok := ctl.Rooms.RoomOf(s.sid); ok {
		ctl.leaveAndNotify(s)
	}

	prior, err := ctl.Rooms.Join(env.Room, s.sid, s.sess)
	if err != nil {
		if errors.Is(err, app.ErrRoomNotFound) {
			// The room drained between the existence check and the join.
			log.Warn().Str("module", "signal").Str("sid", string(s.sid)).Str("room", string(env.Room)).Msg("join: room not found")
			ctl.sendError(s.conn, "room_not_found")
			return
		}
		log.Error().Err(err).Str("module", "signal").Str("sid", string(s.sid)).Msg("join failed")
		ctl.sendError(s.conn, "bad_payload")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(s.sid)).Str("room", string(env.Room)).Msg("join")

	// Snapshot back to the joiner so it can seed its roster, built from the
	// same membership set the join captured. The joiner never initiates
	// handshakes from this list; existing members initiate toward it when
	// their user_connected arrives.
	members := make([]domain.Participant, 0, len(prior)+1)
	for _, m := range prior {
		members = append(members, *m.Session.Meta())
	}
	members = append(members, *s.meta)

	ctl.sendEnv(s.conn, &protocol.Envelope{
		Type:    protocol.TypeRoomState,
		Room:    env.Room,
		Members: members,
		Count:   len(members),
		Host:    s.meta.Host,
	})

	frame, err := marshalEnv(&protocol.Envelope{
		Type:   protocol.TypeUserConnected,
		Sender: s.sid,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal user_connected")
		return
	}
	// Exactly the members that preceded this join learn about it. A joiner
	// racing this one is announced by its own join's snapshot instead, so
	// precisely one side of any pair initiates.
	ctl.Relay.BroadcastTo(env.Room, prior, s.sid, frame)
}

func (ctl *Controller) handleLeave(s *session) {
	log.Info().Str("module", "signal").Str("sid", string(s.sid)).Msg("leave")
	ctl.leaveAndNotify(s)
	ctl.sendEnv(s.conn, &protocol.Envelope{Type: protocol.TypeLeft})
}

// leaveAndNotify removes the participant from its room, if any, and
// broadcasts the departure to the remaining members. Idempotent: the
// broadcast fires exactly once even when an explicit leave is followed by
// the disconnect path.
func (ctl *Controller) leaveAndNotify(s *session) {
	roomID, ok := ctl.Rooms.Leave(s.sid)
	if !ok {
		return
	}
	s.meta.Host = false

	frame, err := marshalEnv(&protocol.Envelope{
		Type:   protocol.TypeUserDisconnected,
		Sender: s.sid,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal user_disconnected")
		return
	}
	ctl.Relay.BroadcastRoom(roomID, s.sid, frame)
}
