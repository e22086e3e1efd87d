package quicnet

import (
	"github.com/aptpod/quicnet-go/internal/ch"
	"github.com/aptpod/quicnet-go/transport"
)

// Updateは、全てのコネクションのキューを読み出して状態を更新し、イベントをsinkへ発行します。
//
// ホストのティックごとに一度呼び出します。Updateはブロックしません。
// コネクションごとに、トランスポートのエンベロープを全て処理してからチャネルのエンベロープを処理します。
// コネクション間の処理順は不定です。
func (c *Client) Update(sink EventSink) {
	counts := make(map[ConnectionState]int, len(connectionStates))
	for _, conn := range c.connections {
		c.drain(conn, sink)
		counts[conn.state]++
	}
	for _, s := range connectionStates {
		c.config.Metrics.SetConnections(s.String(), counts[s])
	}
}

func (c *Client) drain(conn *Connection, sink EventSink) {
	for {
		e, ok := ch.TryRead(conn.pipe.Envelopes)
		if !ok {
			break
		}
		c.publish(sink, conn.handleEnvelope(e))
	}
	for {
		e, ok := ch.TryRead(conn.pipe.ChannelEnvelopes)
		if !ok {
			break
		}
		c.publish(sink, conn.handleChannelEnvelope(e))
	}
}

func (c *Client) publish(sink EventSink, ev Event) {
	if ev == nil {
		return
	}
	c.config.Metrics.EventPublished(string(ev.Kind()))
	sink.Publish(ev)
}

// handleEnvelopeは、エンベロープに応じて状態を遷移させ、発行するイベントを返却します。
//
// 切断済みのコネクションは状態を変えるエンベロープを破棄します。証明書のエンベロープは状態に関わらず発行します。
func (c *Connection) handleEnvelope(e transport.Envelope) Event {
	switch e := e.(type) {
	case transport.Connected:
		if c.IsDisconnected() {
			return c.discard(e)
		}
		if c.IsConnected() {
			c.logger.Debugf(c.ctx(), "Suppressed duplicate %T", e)
			return nil
		}
		c.state = ConnectionStateConnected
		c.peerID = e.PeerID
		c.remoteAddr = e.RemoteAddr
		c.logger.Debugf(c.ctx(), "Connection state changed to %s", c.state)
		return &ConnectionEstablishedEvent{ID: c.id, PeerID: e.PeerID, RemoteAddr: e.RemoteAddr}
	case transport.ConnectionFailed:
		if c.IsDisconnected() {
			return c.discard(e)
		}
		c.Disconnect()
		c.logger.Debugf(c.ctx(), "Connection failed: %v", e.Err)
		return &ConnectionFailedEvent{ID: c.id, Err: e.Err}
	case transport.ConnectionClosed:
		if c.IsDisconnected() {
			return c.discard(e)
		}
		c.Disconnect()
		c.logger.Debugf(c.ctx(), "Connection lost: %v", e.Err)
		return &ConnectionLostEvent{ID: c.id, Err: e.Err}
	case transport.CertInteractionRequest:
		return &CertInteractionEvent{ID: c.id, Status: e.Status, Info: e.Info, Responder: e.Responder}
	case transport.CertTrustUpdate:
		return &CertTrustUpdateEvent{ID: c.id, Info: e.Info}
	case transport.CertConnectionAbort:
		return &CertAbortEvent{ID: c.id, Status: e.Status, Info: e.Info}
	default:
		c.logger.Warnf(c.ctx(), "Discarded unknown envelope %T", e)
		return nil
	}
}

func (c *Connection) discard(e interface{}) Event {
	c.logger.Debugf(c.ctx(), "Discarded %T on a disconnected connection", e)
	return nil
}

func (c *Connection) handleChannelEnvelope(e transport.ChannelEnvelope) Event {
	if c.IsDisconnected() {
		return c.discard(e)
	}
	switch e := e.(type) {
	case transport.LostConnection:
		c.Disconnect()
		c.logger.Debugf(c.ctx(), "Lost connection on channel %d: %v", e.Channel, e.Err)
		return &ConnectionLostEvent{ID: c.id, Err: e.Err}
	default:
		c.logger.Warnf(c.ctx(), "Discarded unknown channel envelope %T", e)
		return nil
	}
}
