package app

import (
	"github.com/rs/zerolog/log"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	MarkSlow
)

// Policy decides what happens when a recipient's outbound buffer is full.
type Policy interface {
	OnBackpressure(room domain.RoomID, member domain.ParticipantID) BackpressureAction
}

// SimplePolicy drops the frame: a slow recipient must never stall the sender
// or the rest of the room, and the recipient's own disconnect path handles
// cleanup when the connection is actually dead.
type SimplePolicy struct{}

func (SimplePolicy) OnBackpressure(room domain.RoomID, member domain.ParticipantID) BackpressureAction {
	log.Warn().Str("module", "app.relay").Str("room", string(room)).Str("sid", string(member)).Msg("recipient backpressure, frame dropped")
	return DropFrame
}
