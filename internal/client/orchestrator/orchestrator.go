// Package orchestrator manages one media connection per remote peer. The
// tie-break is asymmetric: an existing member initiates toward a new joiner,
// and the joiner never initiates toward members it already knows about, so
// exactly one side of every pair opens the handshake.
package orchestrator

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/client/media"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

type State int

const (
	StateNegotiating State = iota
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNegotiating:
		return "negotiating"
	case StateConnected:
		return "connected"
	default:
		return "closed"
	}
}

// SendFunc delivers an opaque negotiation payload to the named peer over
// the control channel.
type SendFunc func(target domain.ParticipantID, payload []byte)

type handle struct {
	remote domain.ParticipantID
	role   media.Role
	conn   media.Connection

	mu    sync.Mutex
	state State
}

func (h *handle) setState(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

func (h *handle) getState() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Orchestrator holds at most one handle per remote peer. Handles negotiate
// concurrently; one peer's handshake never blocks another's.
type Orchestrator struct {
	mu    sync.Mutex
	peers map[domain.ParticipantID]*handle

	factory media.Factory
	send    SendFunc

	// Optional hooks for the presence layer.
	OnPeerConnected func(domain.ParticipantID)
	OnPeerClosed    func(domain.ParticipantID)
}

func New(factory media.Factory, send SendFunc) *Orchestrator {
	return &Orchestrator{
		peers:   make(map[domain.ParticipantID]*handle),
		factory: factory,
		send:    send,
	}
}

// PeerJoined reacts to a membership event for a new peer: the local side
// becomes the initiator. A live handle for the peer already existing is a
// no-op, which keeps the one-handle-per-pair invariant when events race.
func (o *Orchestrator) PeerJoined(ctx context.Context, id domain.ParticipantID) {
	h, created := o.createHandle(id, media.Initiator)
	if !created {
		return
	}

	go func() {
		payload, err := h.conn.Describe(ctx)
		if err != nil {
			log.Error().Err(err).Str("module", "orchestrator").Str("remote", string(id)).Msg("offer failed")
			o.closeHandle(h)
			return
		}
		if h.getState() == StateClosed {
			return
		}
		o.send(id, payload)
	}()
}

// HandleSignal feeds a relayed negotiation payload to the peer's handle,
// creating it in the responder role for a first contact. Payloads for a
// closed handle are dropped, never resurrected.
func (o *Orchestrator) HandleSignal(ctx context.Context, from domain.ParticipantID, payload []byte) {
	o.mu.Lock()
	h, ok := o.peers[from]
	o.mu.Unlock()

	if ok {
		if h.getState() == StateClosed {
			log.Debug().Str("module", "orchestrator").Str("remote", string(from)).Msg("payload for closed handle dropped")
			return
		}
		if err := h.conn.HandleRemote(payload); err != nil {
			log.Error().Err(err).Str("module", "orchestrator").Str("remote", string(from)).Msg("remote payload failed")
			o.closeHandle(h)
		}
		return
	}

	h, created := o.createHandle(from, media.Responder)
	if !created {
		return
	}

	go func() {
		answer, err := h.conn.Accept(ctx, payload)
		if err != nil {
			log.Error().Err(err).Str("module", "orchestrator").Str("remote", string(from)).Msg("answer failed")
			o.closeHandle(h)
			return
		}
		if h.getState() == StateClosed {
			return
		}
		o.send(from, answer)
	}()
}

// PeerLeft tears the peer's handle down. Idempotent: a missing or already
// closed handle is a no-op.
func (o *Orchestrator) PeerLeft(id domain.ParticipantID) {
	o.mu.Lock()
	h, ok := o.peers[id]
	o.mu.Unlock()
	if !ok {
		return
	}
	o.closeHandle(h)
}

// CloseAll synchronously tears down every handle. Used when the local
// participant leaves the room or the control channel closes.
func (o *Orchestrator) CloseAll() {
	o.mu.Lock()
	handles := make([]*handle, 0, len(o.peers))
	for _, h := range o.peers {
		handles = append(handles, h)
	}
	o.mu.Unlock()
	for _, h := range handles {
		o.closeHandle(h)
	}
}

// State reports the peer's handle state; the second result is false for an
// unknown peer.
func (o *Orchestrator) State(id domain.ParticipantID) (State, bool) {
	o.mu.Lock()
	h, ok := o.peers[id]
	o.mu.Unlock()
	if !ok {
		return StateClosed, false
	}
	return h.getState(), true
}

// createHandle builds a handle in Negotiating unless a live one exists. A
// closed tombstone is replaced: the same peer id can legitimately come back
// after leaving and rejoining on the same control channel.
func (o *Orchestrator) createHandle(id domain.ParticipantID, role media.Role) (*handle, bool) {
	o.mu.Lock()
	if existing, ok := o.peers[id]; ok && existing.getState() != StateClosed {
		o.mu.Unlock()
		return existing, false
	}

	conn, err := o.factory.NewConnection(role, id)
	if err != nil {
		o.mu.Unlock()
		log.Error().Err(err).Str("module", "orchestrator").Str("remote", string(id)).Msg("media connection failed")
		return nil, false
	}
	h := &handle{remote: id, role: role, conn: conn, state: StateNegotiating}
	o.peers[id] = h
	o.mu.Unlock()

	conn.OnConnected(func() {
		h.setState(StateConnected)
		log.Info().Str("module", "orchestrator").Str("remote", string(id)).Str("role", role.String()).Msg("peer connected")
		if o.OnPeerConnected != nil {
			o.OnPeerConnected(id)
		}
	})
	conn.OnClosed(func() {
		o.closeHandle(h)
	})

	log.Info().Str("module", "orchestrator").Str("remote", string(id)).Str("role", role.String()).Msg("handle created")
	return h, true
}

// closeHandle transitions a handle to Closed and releases its media
// resources. Closing an already closed handle is a no-op. No automatic
// retry: a failed pair stays down until the peer leaves.
func (o *Orchestrator) closeHandle(h *handle) {
	h.mu.Lock()
	if h.state == StateClosed {
		h.mu.Unlock()
		return
	}
	h.state = StateClosed
	h.mu.Unlock()

	h.conn.Close()
	log.Info().Str("module", "orchestrator").Str("remote", string(h.remote)).Msg("handle closed")
	if o.OnPeerClosed != nil {
		o.OnPeerClosed(h.remote)
	}
}
