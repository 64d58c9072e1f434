package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/protocol"
)

// handleDirectedSignal forwards an opaque negotiation payload to exactly one
// recipient. The payload is never inspected here.
func (ctl *Controller) handleDirectedSignal(s *session, env *protocol.Envelope) {
	if env.Target == "" || len(env.Payload) == 0 {
		ctl.sendError(s.conn, "bad_payload")
		return
	}
	frame, err := marshalEnv(&protocol.Envelope{
		Type:    protocol.TypeReceiveSignal,
		Sender:  s.sid,
		Payload: env.Payload,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal receive_signal")
		return
	}
	// Delivery is at-most-once: an absent target is dropped without an error
	// back to the sender.
	ctl.Relay.Direct(s.sid, env.Target, frame)
}

func (ctl *Controller) handleChat(s *session, env *protocol.Envelope) {
	if env.Chat == nil {
		ctl.sendError(s.conn, "bad_payload")
		return
	}
	// Sender identity comes from the channel, not from the payload.
	msg, err := domain.NewChatMessage(s.sid, env.Chat.Content)
	if err != nil {
		ctl.sendError(s.conn, "bad_payload")
		return
	}
	frame, err := marshalEnv(&protocol.Envelope{
		Type: protocol.TypeChatMessage,
		Chat: msg,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal chat_message")
		return
	}
	ctl.Relay.Broadcast(s.sid, frame)
}

// handleToggle covers both a participant's own mute/camera toggle and a
// host's targeted instruction toward another member. Either way the event is
// broadcast to the room excluding the sender, carrying the id of whoever the
// flag belongs to.
func (ctl *Controller) handleToggle(s *session, env *protocol.Envelope, outType string) {
	if env.Enabled == nil {
		ctl.sendError(s.conn, "bad_payload")
		return
	}
	target := env.Target
	if target == "" {
		target = s.sid
	}
	if target != s.sid && !s.meta.Host {
		ctl.sendError(s.conn, "not_host")
		return
	}

	ctl.updateFlags(s, target, outType, *env.Enabled)

	frame, err := marshalEnv(&protocol.Envelope{
		Type:    outType,
		Target:  target,
		Enabled: env.Enabled,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal toggle")
		return
	}
	ctl.Relay.Broadcast(s.sid, frame)
}

// updateFlags keeps the server-side meta truthful so room_state snapshots
// reflect the latest toggles.
func (ctl *Controller) updateFlags(s *session, target domain.ParticipantID, outType string, enabled bool) {
	roomID, ok := ctl.Rooms.RoomOf(s.sid)
	if !ok {
		return
	}
	sess, ok := ctl.Rooms.Member(roomID, target)
	if !ok {
		return
	}
	switch outType {
	case protocol.TypeUserAudioToggle:
		sess.Meta().Audio = enabled
	case protocol.TypeUserVideoToggle:
		sess.Meta().Video = enabled
	}
}

func (ctl *Controller) handleSpotlight(s *session, env *protocol.Envelope) {
	if env.Target == "" {
		ctl.sendError(s.conn, "bad_payload")
		return
	}
	frame, err := marshalEnv(&protocol.Envelope{
		Type:   protocol.TypeUserSpotlighted,
		Target: env.Target,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal spotlight")
		return
	}
	ctl.Relay.Broadcast(s.sid, frame)
}
