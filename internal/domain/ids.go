// Package domain contains entities without logic, just meta-data.
package domain

type (
	// RoomID is an opaque room token. Not interchangeable with ParticipantID.
	RoomID string

	// ParticipantID identifies one control-channel connection. Assigned by the
	// transport at connect time and stable until that connection closes.
	ParticipantID string
)
