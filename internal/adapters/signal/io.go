package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/protocol"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump services one control channel. The disconnect path is installed
// exactly once, here, and looks up current membership at disconnect time:
// an explicit leave and a dropped connection take the same exit.
func (ctl *Controller) readPump(ctx context.Context, s *session) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(s.sid)).Msg("readPump closing")
		ctl.leaveAndNotify(s)
		s.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(s.sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := s.conn.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(s.sid)).Msg("readPump read error")
				return
			}
			ctl.dispatch(s, data)
		}
	}
}

func (ctl *Controller) dispatch(s *session, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(s.conn, "bad_payload")
		return
	}

	switch env.Type {
	case protocol.TypeCreateRoom:
		ctl.handleCreateRoom(s)
	case protocol.TypeJoinRoom:
		ctl.handleJoin(s, &env)
	case protocol.TypeLeave:
		ctl.handleLeave(s)
	case protocol.TypeSignal:
		ctl.handleDirectedSignal(s, &env)
	case protocol.TypeChat:
		ctl.handleChat(s, &env)
	case protocol.TypeToggleAudio:
		ctl.handleToggle(s, &env, protocol.TypeUserAudioToggle)
	case protocol.TypeToggleVideo:
		ctl.handleToggle(s, &env, protocol.TypeUserVideoToggle)
	case protocol.TypeSpotlight:
		ctl.handleSpotlight(s, &env)
	case protocol.TypePing:
		ctl.handlePing(s.conn)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) sendEnv(c *WsSignalConn, env *protocol.Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendEnv marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *WsSignalConn, msg string) {
	ctl.sendEnv(c, &protocol.Envelope{Type: protocol.TypeError, Error: msg})
}

func marshalEnv(env *protocol.Envelope) ([]byte, error) {
	return json.Marshal(env)
}
