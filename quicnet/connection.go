package quicnet

import (
	"context"
	"net"

	"github.com/aptpod/quicnet-go/channel"
	"github.com/aptpod/quicnet-go/errors"
	"github.com/aptpod/quicnet-go/internal/ch"
	"github.com/aptpod/quicnet-go/log"
	"github.com/aptpod/quicnet-go/transport"
)

// Connectionは、Clientに登録された1つのコネクションです。
//
// Connectionはゴルーチンセーフではありません。Clientと同じゴルーチンから操作してください。
type Connection struct {
	id         transport.ConnectionID
	state      ConnectionState
	peerID     *transport.PeerID
	remoteAddr net.Addr

	pipe      *transport.Pipe
	queueSize int
	logger    log.Logger

	ids            channel.IDGenerator
	channels       map[channel.ID]chan []byte
	types          map[channel.ID]channel.Type
	defaultChannel channel.ID
	hasDefault     bool
}

func newConnection(pipe *transport.Pipe, queueSize int, logger log.Logger) *Connection {
	return &Connection{
		state:     ConnectionStateConnecting,
		pipe:      pipe,
		queueSize: queueSize,
		logger:    logger,
		channels:  make(map[channel.ID]chan []byte),
		types:     make(map[channel.ID]channel.Type),
	}
}

func (c *Connection) ctx() context.Context {
	return log.WithTrackConnectionID(context.Background(), uint64(c.id))
}

// IDは、コネクションIDを返却します。
func (c *Connection) ID() transport.ConnectionID {
	return c.id
}

// Stateは、コネクションの状態を返却します。
func (c *Connection) State() ConnectionState {
	return c.state
}

// PeerIDは、サーバーから受信したピアIDを返却します。受信していない場合はokにfalseを返却します。
func (c *Connection) PeerID() (id transport.PeerID, ok bool) {
	if c.peerID == nil {
		return 0, false
	}
	return *c.peerID, true
}

// RemoteAddrは、接続先のアドレスを返却します。接続が確立していない場合はnilを返却します。
func (c *Connection) RemoteAddr() net.Addr {
	return c.remoteAddr
}

// IsConnectingは、接続処理中かどうかを返却します。
func (c *Connection) IsConnecting() bool {
	return c.state == ConnectionStateConnecting
}

// IsConnectedは、接続が確立しているかどうかを返却します。
func (c *Connection) IsConnected() bool {
	return c.state == ConnectionStateConnected
}

// IsDisconnectedは、切断済みかどうかを返却します。切断済みのコネクションは再接続しません。
func (c *Connection) IsDisconnected() bool {
	return c.state == ConnectionStateDisconnected
}

// OpenChannelは、チャネルを開きます。
//
// 最初に開いたチャネルがデフォルトチャネルとなります。
func (c *Connection) OpenChannel(typ channel.Type) (channel.ID, error) {
	if c.IsDisconnected() {
		return 0, errors.ErrConnectionClosed
	}
	if !typ.Valid() {
		return 0, errors.ConfigurationError{Index: len(c.channels), Cause: errors.ErrInvalidChannelType}
	}
	id, err := c.ids.Next()
	if err != nil {
		return 0, errors.ConfigurationError{Index: len(c.channels), Cause: err}
	}
	outbound := make(chan []byte, c.queueSize)
	if !ch.TryWrite[channel.SyncMessage](channel.OpenRequest{ID: id, Type: typ, Outbound: outbound}, c.pipe.Control) {
		c.ids.Release(id)
		return 0, errors.Errorf("control queue is full: %w", errors.ErrChannelFull)
	}
	c.channels[id] = outbound
	c.types[id] = typ
	if !c.hasDefault {
		c.defaultChannel, c.hasDefault = id, true
	}
	return id, nil
}

// CloseChannelは、チャネルを閉じます。キュー済みのメッセージはドライバーが送信し終えてからチャネルを閉じます。
//
// デフォルトチャネルを閉じた場合、デフォルトチャネルは未設定になります。
func (c *Connection) CloseChannel(id channel.ID) error {
	if _, ok := c.channels[id]; !ok {
		return errors.Errorf("channel %d: %w", id, errors.ErrUnknownChannel)
	}
	if !c.IsDisconnected() {
		if !ch.TryWrite[channel.SyncMessage](channel.CloseRequest{ID: id}, c.pipe.Control) {
			return errors.Errorf("control queue is full: %w", errors.ErrChannelFull)
		}
	}
	c.removeChannel(id)
	return nil
}

func (c *Connection) removeChannel(id channel.ID) {
	delete(c.channels, id)
	delete(c.types, id)
	c.ids.Release(id)
	if c.hasDefault && c.defaultChannel == id {
		c.defaultChannel, c.hasDefault = 0, false
	}
}

// DefaultChannelは、デフォルトチャネルのIDを返却します。
func (c *Connection) DefaultChannel() (channel.ID, bool) {
	return c.defaultChannel, c.hasDefault
}

// SetDefaultChannelは、デフォルトチャネルを設定します。
func (c *Connection) SetDefaultChannel(id channel.ID) error {
	if _, ok := c.channels[id]; !ok {
		return errors.Errorf("channel %d: %w", id, errors.ErrUnknownChannel)
	}
	c.defaultChannel, c.hasDefault = id, true
	return nil
}

// ChannelTypeは、チャネルのタイプを返却します。
func (c *Connection) ChannelType(id channel.ID) (channel.Type, bool) {
	t, ok := c.types[id]
	return t, ok
}

// Sendは、デフォルトチャネルへペイロードを送信します。
func (c *Connection) Send(payload []byte) error {
	if !c.hasDefault {
		return errors.ErrNoDefaultChannel
	}
	return c.SendOn(c.defaultChannel, payload)
}

// SendOnは、指定したチャネルへペイロードを送信します。
//
// 送信はブロックしません。チャネルの送信キューが一杯の場合はErrChannelFullを返却します。
// 接続の確立前に送信したペイロードは、接続の確立後に送信されます。
func (c *Connection) SendOn(id channel.ID, payload []byte) error {
	if c.IsDisconnected() {
		return errors.ErrConnectionClosed
	}
	outbound, ok := c.channels[id]
	if !ok {
		return errors.Errorf("channel %d: %w", id, errors.ErrUnknownChannel)
	}
	if !ch.TryWrite(payload, outbound) {
		return errors.Errorf("channel %d: %w", id, errors.ErrChannelFull)
	}
	return nil
}

// Receiveは、受信したペイロードを1件読み出します。受信済みのペイロードがない場合はokにfalseを返却します。
func (c *Connection) Receive() (channel.Payload, bool) {
	return ch.TryRead(c.pipe.Payloads)
}

// ReceiveAllは、受信済みの全てのペイロードを読み出します。
func (c *Connection) ReceiveAll() []channel.Payload {
	var res []channel.Payload
	for {
		p, ok := c.Receive()
		if !ok {
			return res
		}
		res = append(res, p)
	}
}

// Disconnectは、コネクションを切断状態にし、ドライバーへシャットダウンを通知します。
//
// ドライバーは送信キューに残ったメッセージを送信してから終了します。切断済みの場合は何もしません。
func (c *Connection) Disconnect() {
	if c.pipe.Shutdown() {
		c.logger.Debugf(c.ctx(), "Signaled shutdown to the driver")
	}
	c.state = ConnectionStateDisconnected
	for id := range c.channels {
		c.removeChannel(id)
	}
}
