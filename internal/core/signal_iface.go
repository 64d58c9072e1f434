package core

// Frame is one encoded control-channel message.
type Frame []byte

// SignalConnection abstracts the per-participant messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend never blocks: a full outbound buffer is reported as an error
	// and the frame is dropped (fire-and-forget delivery).
	TrySend(Frame) error
	Close()
}
