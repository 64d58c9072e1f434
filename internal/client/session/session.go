// Package session drives one participant's meeting: it binds the signaling
// client, the connection orchestrator, and the roster, and routes every
// server event to the right place in arrival order.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/client/media"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/client/orchestrator"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/client/roster"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/protocol"
)

// Transport is the control channel the session drives. *signaling.Client
// implements it.
type Transport interface {
	Send(env *protocol.Envelope)
	Incoming() <-chan *protocol.Envelope
	SelfID() domain.ParticipantID
	Close()
}

// ErrRoomNotFound mirrors the server's join rejection: the caller must
// create or obtain a fresh room id, there is nothing to retry.
var ErrRoomNotFound = errors.New("room not found")

type Session struct {
	sig    Transport
	orch   *orchestrator.Orchestrator
	roster *roster.Roster

	self *domain.Participant

	mu     sync.Mutex
	roomID domain.RoomID

	roomCreated chan domain.RoomID
	joined      chan *protocol.Envelope
	errs        chan string

	startOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
}

// New wires a session over a connected control channel.
func New(sig Transport, factory media.Factory) *Session {
	s := &Session{
		sig:         sig,
		roster:      roster.New(),
		self:        domain.NewParticipant(sig.SelfID()),
		roomCreated: make(chan domain.RoomID, 1),
		joined:      make(chan *protocol.Envelope, 1),
		errs:        make(chan string, 1),
	}
	s.orch = orchestrator.New(factory, func(target domain.ParticipantID, payload []byte) {
		sig.Send(&protocol.Envelope{
			Type:    protocol.TypeSignal,
			Target:  target,
			Payload: payload,
		})
	})
	s.orch.OnPeerConnected = func(id domain.ParticipantID) { s.roster.SetConnected(id, true) }
	s.orch.OnPeerClosed = func(id domain.ParticipantID) { s.roster.SetConnected(id, false) }
	return s
}

// Start launches the dispatch loop. It exits when the control channel
// closes, tearing down every peer connection on the way out. Calling Start
// again is a no-op.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() { s.start(ctx) })
}

func (s *Session) start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	go func() {
		defer s.orch.CloseAll()
		for {
			select {
			case <-s.ctx.Done():
				return
			case env, ok := <-s.sig.Incoming():
				if !ok {
					return
				}
				s.dispatch(env)
			}
		}
	}()
}

func (s *Session) dispatch(env *protocol.Envelope) {
	switch env.Type {
	case protocol.TypeRoomCreated:
		select {
		case s.roomCreated <- env.Room:
		default:
		}
	case protocol.TypeRoomState:
		select {
		case s.joined <- env:
		default:
		}
	case protocol.TypeUserConnected:
		// A new peer: we are the existing member, so we initiate.
		s.roster.Add(*domain.NewParticipant(env.Sender))
		s.orch.PeerJoined(s.ctx, env.Sender)
	case protocol.TypeUserDisconnected:
		// Roster removal and connection teardown belong together: no stale
		// tile may outlive its handle.
		s.orch.PeerLeft(env.Sender)
		s.roster.Remove(env.Sender)
	case protocol.TypeReceiveSignal:
		s.orch.HandleSignal(s.ctx, env.Sender, env.Payload)
	case protocol.TypeChatMessage:
		if env.Chat != nil {
			s.roster.AddChat(*env.Chat)
		}
	case protocol.TypeUserAudioToggle:
		if env.Enabled != nil {
			s.applyToggle(env.Target, *env.Enabled, true)
		}
	case protocol.TypeUserVideoToggle:
		if env.Enabled != nil {
			s.applyToggle(env.Target, *env.Enabled, false)
		}
	case protocol.TypeUserSpotlighted:
		s.roster.Spotlight(env.Target)
	case protocol.TypeLeft, protocol.TypePong:
		// acknowledgements, nothing to update
	case protocol.TypeError:
		select {
		case s.errs <- env.Error:
		default:
		}
		log.Warn().Str("module", "client.session").Str("error", env.Error).Msg("server error")
	default:
		log.Warn().Str("module", "client.session").Str("type", env.Type).Msg("unknown message")
	}
}

// applyToggle updates whoever the flag belongs to: a room mate's tile, or
// our own flags when a host muted us remotely.
func (s *Session) applyToggle(target domain.ParticipantID, enabled, audio bool) {
	if target == s.self.ID {
		if audio {
			s.self.Audio = enabled
		} else {
			s.self.Video = enabled
		}
		return
	}
	if audio {
		s.roster.SetAudio(target, enabled)
	} else {
		s.roster.SetVideo(target, enabled)
	}
}

// drainStale discards replies left over from an earlier request, so an old
// server error is never mistaken for the answer to this one.
func (s *Session) drainStale() {
	for {
		select {
		case <-s.errs:
		case <-s.roomCreated:
		case <-s.joined:
		default:
			return
		}
	}
}

// CreateRoom asks the registry for a fresh room and returns its id.
func (s *Session) CreateRoom(ctx context.Context) (domain.RoomID, error) {
	s.drainStale()
	s.sig.Send(&protocol.Envelope{Type: protocol.TypeCreateRoom})
	select {
	case id := <-s.roomCreated:
		return id, nil
	case msg := <-s.errs:
		return "", fmt.Errorf("create room: %s", msg)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Join enters the room and seeds the roster from the membership snapshot.
// The snapshot never triggers handshakes: existing members initiate toward
// us once our arrival reaches them.
func (s *Session) Join(ctx context.Context, id domain.RoomID) error {
	s.drainStale()
	s.sig.Send(&protocol.Envelope{Type: protocol.TypeJoinRoom, Room: id})
	select {
	case env := <-s.joined:
		s.mu.Lock()
		s.roomID = env.Room
		s.mu.Unlock()
		s.self.Host = env.Host
		for _, p := range env.Members {
			if p.ID == s.self.ID {
				continue
			}
			s.roster.Add(p)
		}
		return nil
	case msg := <-s.errs:
		if msg == "room_not_found" {
			return ErrRoomNotFound
		}
		return fmt.Errorf("join: %s", msg)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Leave exits the current room. Every outstanding peer connection is torn
// down before Leave returns; late payloads for those handles are dropped.
func (s *Session) Leave() {
	s.mu.Lock()
	inRoom := s.roomID != ""
	s.roomID = ""
	s.mu.Unlock()
	if inRoom {
		s.sig.Send(&protocol.Envelope{Type: protocol.TypeLeave})
	}
	s.orch.CloseAll()
	s.roster.Clear()
	s.self.Host = false
}

// SendChat broadcasts a chat line and appends it to the local log; the
// server never echoes a sender's own broadcast back.
func (s *Session) SendChat(content string) error {
	msg, err := domain.NewChatMessage(s.self.ID, content)
	if err != nil {
		return err
	}
	s.sig.Send(&protocol.Envelope{Type: protocol.TypeChat, Chat: msg})
	s.roster.AddChat(*msg)
	return nil
}

// ToggleAudio flips the local audio flag and announces it to the room.
func (s *Session) ToggleAudio(enabled bool) {
	s.self.Audio = enabled
	s.sig.Send(&protocol.Envelope{Type: protocol.TypeToggleAudio, Enabled: protocol.Bool(enabled)})
}

// ToggleVideo flips the local video flag and announces it to the room.
func (s *Session) ToggleVideo(enabled bool) {
	s.self.Video = enabled
	s.sig.Send(&protocol.Envelope{Type: protocol.TypeToggleVideo, Enabled: protocol.Bool(enabled)})
}

// MutePeer is a host instruction toward a specific participant.
func (s *Session) MutePeer(target domain.ParticipantID) {
	s.sig.Send(&protocol.Envelope{
		Type:    protocol.TypeToggleAudio,
		Target:  target,
		Enabled: protocol.Bool(false),
	})
}

// Spotlight asks the room to spotlight the named participant.
func (s *Session) Spotlight(target domain.ParticipantID) {
	s.sig.Send(&protocol.Envelope{Type: protocol.TypeSpotlight, Target: target})
}

func (s *Session) Self() domain.Participant { return *s.self }

func (s *Session) Roster() *roster.Roster { return s.roster }

// PeerState exposes the orchestrator's view of one peer's link.
func (s *Session) PeerState(id domain.ParticipantID) (orchestrator.State, bool) {
	return s.orch.State(id)
}

// Close leaves the room and shuts the control channel down.
func (s *Session) Close() {
	s.Leave()
	if s.cancel != nil {
		s.cancel()
	}
	s.sig.Close()
}
