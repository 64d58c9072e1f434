// Package media defines the boundary to the real-time media transport. The
// orchestrator drives these interfaces and never interprets the negotiation
// payloads they produce or consume.
package media

import (
	"context"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

// Role is decided once per peer pair: exactly one initiator and one
// responder.
type Role int

const (
	Initiator Role = iota
	Responder
)

func (r Role) String() string {
	if r == Initiator {
		return "initiator"
	}
	return "responder"
}

// Connection is one media link toward a single remote peer.
type Connection interface {
	// Describe produces the local negotiation payload. Called on the
	// initiator side to open the handshake.
	Describe(ctx context.Context) ([]byte, error)
	// Accept applies the remote offer payload and returns the local answer.
	// Called on the responder side with the first payload received.
	Accept(ctx context.Context, remote []byte) ([]byte, error)
	// HandleRemote applies any subsequent remote payload.
	HandleRemote(remote []byte) error
	// OnConnected fires once the direct link is established.
	OnConnected(func())
	// OnClosed fires when the link fails or shuts down.
	OnClosed(func())
	Close()
}

// Factory creates connections; swapping it out keeps the orchestrator
// testable without a network.
type Factory interface {
	NewConnection(role Role, remote domain.ParticipantID) (Connection, error)
}
