package media

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

// PionFactory builds webrtc.PeerConnection-backed media connections.
type PionFactory struct {
	cfg webrtc.Configuration
}

func NewPionFactory(stunServers []string) *PionFactory {
	return &PionFactory{
		cfg: webrtc.Configuration{
			ICEServers: []webrtc.ICEServer{
				{URLs: stunServers},
			},
		},
	}
}

func (f *PionFactory) NewConnection(role Role, remote domain.ParticipantID) (Connection, error) {
	pc, err := webrtc.NewPeerConnection(f.cfg)
	if err != nil {
		return nil, err
	}
	c := &pionConnection{pc: pc, remote: remote}

	// Negotiate a receive path for both kinds; capture devices are the
	// presentation layer's concern.
	for _, kind := range []webrtc.RTPCodecType{webrtc.RTPCodecTypeAudio, webrtc.RTPCodecTypeVideo} {
		if _, err := pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		}); err != nil {
			_ = pc.Close()
			return nil, err
		}
	}

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "media").Str("remote", string(remote)).Str("peer_connection_state", s.String()).Msg("peer state")
		switch s {
		case webrtc.PeerConnectionStateConnected:
			c.fireConnected()
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed:
			c.fireClosed()
		}
	})

	return c, nil
}

// pionConnection exchanges complete descriptions: local gathering finishes
// before the payload goes out, so one payload per direction suffices and no
// trickle candidates cross the relay.
type pionConnection struct {
	pc     *webrtc.PeerConnection
	remote domain.ParticipantID

	mu          sync.Mutex
	onConnected func()
	onClosed    func()

	connectedOnce sync.Once
	closedOnce    sync.Once
	closePCOnce   sync.Once
}

func (c *pionConnection) Describe(ctx context.Context) ([]byte, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return nil, err
	}
	return c.settleLocal(ctx, offer)
}

func (c *pionConnection) Accept(ctx context.Context, remote []byte) ([]byte, error) {
	var desc webrtc.SessionDescription
	if err := json.Unmarshal(remote, &desc); err != nil {
		return nil, err
	}
	if err := c.pc.SetRemoteDescription(desc); err != nil {
		return nil, err
	}
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}
	return c.settleLocal(ctx, answer)
}

func (c *pionConnection) settleLocal(ctx context.Context, desc webrtc.SessionDescription) ([]byte, error) {
	gatherComplete := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(desc); err != nil {
		return nil, err
	}
	select {
	case <-gatherComplete:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return json.Marshal(c.pc.LocalDescription())
}

func (c *pionConnection) HandleRemote(remote []byte) error {
	var desc webrtc.SessionDescription
	if err := json.Unmarshal(remote, &desc); err != nil {
		return err
	}
	return c.pc.SetRemoteDescription(desc)
}

func (c *pionConnection) OnConnected(fn func()) {
	c.mu.Lock()
	c.onConnected = fn
	c.mu.Unlock()
}

func (c *pionConnection) OnClosed(fn func()) {
	c.mu.Lock()
	c.onClosed = fn
	c.mu.Unlock()
}

func (c *pionConnection) fireConnected() {
	c.connectedOnce.Do(func() {
		c.mu.Lock()
		fn := c.onConnected
		c.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

func (c *pionConnection) fireClosed() {
	c.closedOnce.Do(func() {
		c.mu.Lock()
		fn := c.onClosed
		c.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

func (c *pionConnection) Close() {
	c.closePCOnce.Do(func() {
		if err := c.pc.Close(); err != nil {
			log.Error().Err(err).Str("module", "media").Str("remote", string(c.remote)).Msg("close error")
		} else {
			log.Info().Str("module", "media").Str("remote", string(c.remote)).Msg("closed")
		}
	})
	c.fireClosed()
}
