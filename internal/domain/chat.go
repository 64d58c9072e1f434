package domain

import (
	"errors"
	"time"
)

const MaxChatContentLen = 2048

var ErrChatContentEmpty = errors.New("chat content empty")
var ErrChatContentTooLong = errors.New("chat content too long")

// ChatMessage is transient: broadcast once, never persisted.
type ChatMessage struct {
	Sender    ParticipantID `json:"sender"`
	Content   string        `json:"content"`
	Timestamp int64         `json:"timestamp"`
}

// NewChatMessage stamps the message with the current unix-millisecond time.
func NewChatMessage(sender ParticipantID, content string) (*ChatMessage, error) {
	if len(content) == 0 {
		return nil, ErrChatContentEmpty
	}
	if len(content) > MaxChatContentLen {
		return nil, ErrChatContentTooLong
	}
	return &ChatMessage{
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}
