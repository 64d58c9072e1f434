package core

import "github.com/KrishnaKumarSoni/gmeetpro/internal/domain"

// MemberSnap pairs a participant id with its session for fan-out. The slice
// returned by a snapshot is computed under the room's lock, so a concurrent
// leave sees either all or none of a given broadcast.
type MemberSnap struct {
	ID      domain.ParticipantID
	Session MemberSession
}

// PublishResult reports delivery stats to the relay's caller.
type PublishResult struct {
	SentTo  int
	Dropped []domain.ParticipantID
}
