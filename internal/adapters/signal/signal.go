package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/app"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/config"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/core"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the websocket side of the control channel: one connection
// per participant, upgraded here and serviced by a read/write pump pair.
type Controller struct {
	Rooms   *app.RoomRegistry
	Relay   *app.Relay
	Cfg     *config.Config
	Limiter *JoinRateLimiter
}

func NewController(rooms *app.RoomRegistry, relay *app.Relay, cfg *config.Config) *Controller {
	return &Controller{
		Rooms:   rooms,
		Relay:   relay,
		Cfg:     cfg,
		Limiter: NewJoinRateLimiter(10, cfg.JoinWindow),
	}
}

// WsSignalConn wraps one websocket connection behind core.SignalConnection.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// session is the per-connection state threaded through every handler.
type session struct {
	sid  domain.ParticipantID
	meta *domain.Participant
	sess core.MemberSession
	conn *WsSignalConn
}

func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := domain.ParticipantID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	// The upgrade hijacks the connection and writes its own 101, discarding
	// anything staged on the gin writer, so the token cookie must ride the
	// upgrade response headers.
	cookie := http.Cookie{Name: "ct", Value: string(sid), Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true}
	ws, err := upgrader.Upgrade(c.Writer, c.Request, http.Header{"Set-Cookie": {cookie.String()}})
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.Cfg.ReadLimit > 0 {
		ws.SetReadLimit(ctl.Cfg.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	meta := domain.NewParticipant(sid)
	s := &session{
		sid:  sid,
		meta: meta,
		sess: core.NewMemberSession(meta, conn),
		conn: conn,
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, s)
	}()
}
