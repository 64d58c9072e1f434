package signal

import "github.com/KrishnaKumarSoni/gmeetpro/internal/protocol"

func (ctl *Controller) handlePing(conn *WsSignalConn) {
	ctl.sendEnv(conn, &protocol.Envelope{Type: protocol.TypePong})
}
