// Package protocol defines the control-channel message vocabulary shared by
// the server adapter and the client. One Envelope per websocket frame.
package protocol

import (
	"encoding/json"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

// Client to server.
const (
	TypeCreateRoom  = "create_room"
	TypeJoinRoom    = "join_room"
	TypeLeave       = "leave"
	TypeSignal      = "signal"
	TypeChat        = "chat"
	TypeToggleAudio = "toggle_audio"
	TypeToggleVideo = "toggle_video"
	TypeSpotlight   = "spotlight"
	TypePing        = "ping"
)

// Server to client.
const (
	TypeRoomCreated      = "room_created"
	TypeRoomState        = "room_state"
	TypeUserConnected    = "user_connected"
	TypeUserDisconnected = "user_disconnected"
	TypeReceiveSignal    = "receive_signal"
	TypeChatMessage      = "chat_message"
	TypeUserAudioToggle  = "user_audio_toggle"
	TypeUserVideoToggle  = "user_video_toggle"
	TypeUserSpotlighted  = "user_spotlighted"
	TypeLeft             = "left"
	TypePong             = "pong"
	TypeError            = "error"
)

// Envelope is the single wire shape for every message. Fields not used by a
// given type stay empty and are omitted. Payload is opaque negotiation data;
// neither the relay nor the registry ever inspects it.
type Envelope struct {
	Type string `json:"type"`

	Room   domain.RoomID        `json:"room,omitempty"`
	Sender domain.ParticipantID `json:"sender,omitempty"`
	Target domain.ParticipantID `json:"target,omitempty"`

	Payload json.RawMessage `json:"payload,omitempty"`

	Enabled *bool               `json:"enabled,omitempty"`
	Chat    *domain.ChatMessage `json:"chat,omitempty"`

	// Room state snapshot sent back on join.
	Members []domain.Participant `json:"members,omitempty"`
	Count   int                  `json:"count,omitempty"`
	Host    bool                 `json:"isHost,omitempty"`

	Error string `json:"error,omitempty"`
}

// Bool is a convenience for the Enabled pointer field.
func Bool(v bool) *bool { return &v }
