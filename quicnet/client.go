package quicnet

import (
	"context"
	"sort"

	"github.com/aptpod/quicnet-go/certificate"
	"github.com/aptpod/quicnet-go/channel"
	"github.com/aptpod/quicnet-go/errors"
	"github.com/aptpod/quicnet-go/log"
	"github.com/aptpod/quicnet-go/transport"
	"github.com/aptpod/quicnet-go/transport/quic"
)

// Clientは、複数のコネクションを管理するレジストリです。
//
// Clientはゴルーチンセーフではありません。コネクションの操作とUpdateは同じゴルーチンから呼び出してください。
type Client struct {
	config  ClientConfig
	runtime Runtime
	owned   *GroupRuntime

	connections map[transport.ConnectionID]*Connection
	nextID      transport.ConnectionID
	defaultID   transport.ConnectionID
	hasDefault  bool
}

// NewClientは、Clientを返却します。
func NewClient(opts ...ClientOption) *Client {
	config := DefaultClientConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = log.NewNop()
	}
	if config.Driver == nil {
		config.Driver = quic.NewDriver(quic.DialerConfig{Logger: config.Logger})
	}
	if config.MessageQueueSize <= 0 {
		config.MessageQueueSize = DefaultMessageQueueSize
	}
	if config.InternalQueueSize <= 0 {
		config.InternalQueueSize = DefaultInternalQueueSize
	}

	c := &Client{
		config:      config,
		runtime:     config.Runtime,
		connections: make(map[transport.ConnectionID]*Connection),
	}
	if c.runtime == nil {
		c.owned = NewRuntime(context.Background())
		c.runtime = c.owned
	}
	if c.config.Metrics == nil {
		c.config.Metrics = defaultClientConfig.Metrics
	}
	return c
}

// OpenConnectionは、コネクションを登録し、ドライバーを起動します。
//
// channelsに含まれるチャネルは、ドライバーの起動前に開かれます。
// チャネルの設定が不正な場合はConfigurationErrorを返却し、コネクションは登録されません。
// デフォルトコネクションが未設定の場合は、登録したコネクションがデフォルトコネクションになります。
func (c *Client) OpenConnection(conf transport.ConnectionConfig, mode certificate.VerificationMode, channels channel.Configuration) (transport.ConnectionID, error) {
	if err := channels.Validate(); err != nil {
		return 0, err
	}
	types := channels.Types()
	controlQueueSize := c.config.InternalQueueSize
	if len(types) > controlQueueSize {
		controlQueueSize = len(types)
	}
	pipe, ep := transport.NewPipe(transport.PipeConfig{
		MessageQueueSize:  c.config.MessageQueueSize,
		InternalQueueSize: c.config.InternalQueueSize,
		ControlQueueSize:  controlQueueSize,
	})
	conn := newConnection(pipe, c.config.MessageQueueSize, c.config.Logger)
	for _, t := range types {
		if _, err := conn.OpenChannel(t); err != nil {
			return 0, err
		}
	}

	id := c.nextID
	c.nextID++
	conn.id = id
	c.connections[id] = conn
	if !c.hasDefault {
		c.defaultID, c.hasDefault = id, true
	}
	c.config.Metrics.ConnectionOpened()
	c.config.Logger.Infof(conn.ctx(), "Opened connection to %s", conf.ServerAddress)

	driver := c.config.Driver
	tc := transport.Config{Connection: conf, Verification: mode}
	c.runtime.Go(func(ctx context.Context) {
		driver.Run(ctx, id, tc, ep)
	})
	return id, nil
}

// SetDefaultConnectionは、デフォルトコネクションを設定します。
func (c *Client) SetDefaultConnection(id transport.ConnectionID) error {
	if _, ok := c.connections[id]; !ok {
		return errors.UnknownConnectionError{ID: uint64(id)}
	}
	c.defaultID, c.hasDefault = id, true
	return nil
}

// DefaultConnectionは、デフォルトコネクションのIDを返却します。
func (c *Client) DefaultConnection() (transport.ConnectionID, bool) {
	return c.defaultID, c.hasDefault
}

// Connectionは、デフォルトコネクションを返却します。
func (c *Client) Connection() (*Connection, bool) {
	if !c.hasDefault {
		return nil, false
	}
	return c.ConnectionByID(c.defaultID)
}

// ConnectionByIDは、IDに対応するコネクションを返却します。
func (c *Client) ConnectionByID(id transport.ConnectionID) (*Connection, bool) {
	conn, ok := c.connections[id]
	return conn, ok
}

// ConnectionIDsは、登録されている全てのコネクションIDを昇順で返却します。
func (c *Client) ConnectionIDs() []transport.ConnectionID {
	ids := make([]transport.ConnectionID, 0, len(c.connections))
	for id := range c.connections {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Rangeは、登録されている全てのコネクションをID順にfへ渡します。fがfalseを返却した時点で終了します。
func (c *Client) Range(f func(id transport.ConnectionID, conn *Connection) bool) {
	for _, id := range c.ConnectionIDs() {
		if !f(id, c.connections[id]) {
			return
		}
	}
}

// Lenは、登録されているコネクション数を返却します。
func (c *Client) Len() int {
	return len(c.connections)
}

// CloseConnectionは、コネクションを登録解除し、ドライバーへシャットダウンを通知します。
//
// ドライバーの終了は待機しません。IDが登録されていない場合はUnknownConnectionErrorを返却します。
func (c *Client) CloseConnection(id transport.ConnectionID) error {
	conn, ok := c.connections[id]
	if !ok {
		return errors.UnknownConnectionError{ID: uint64(id)}
	}
	delete(c.connections, id)
	if c.hasDefault && c.defaultID == id {
		c.defaultID, c.hasDefault = 0, false
	}
	conn.Disconnect()
	c.config.Metrics.ConnectionClosed()
	c.config.Logger.Infof(conn.ctx(), "Closed connection")
	return nil
}

// CloseAllConnectionsは、登録されている全てのコネクションを閉じます。
//
// 失敗したコネクションがあっても全てのコネクションを閉じ、エラーをまとめて返却します。
func (c *Client) CloseAllConnections() error {
	var err error
	for _, id := range c.ConnectionIDs() {
		err = errors.Append(err, c.CloseConnection(id))
	}
	return err
}

// IsConnectingは、デフォルトコネクションが接続中かどうかを返却します。デフォルトコネクションがない場合はfalseです。
func (c *Client) IsConnecting() bool {
	conn, ok := c.Connection()
	return ok && conn.IsConnecting()
}

// IsConnectedは、デフォルトコネクションが接続済みかどうかを返却します。デフォルトコネクションがない場合はfalseです。
func (c *Client) IsConnected() bool {
	conn, ok := c.Connection()
	return ok && conn.IsConnected()
}

// IsDisconnectedは、デフォルトコネクションが切断済みかどうかを返却します。デフォルトコネクションがない場合はtrueです。
func (c *Client) IsDisconnected() bool {
	conn, ok := c.Connection()
	return !ok || conn.IsDisconnected()
}

// Closeは、全てのコネクションを閉じます。
//
// Clientが生成したRuntimeを使用している場合は、全てのドライバーの終了を待機します。
func (c *Client) Close() error {
	return c.CloseContext(context.Background())
}

// CloseContextは、Closeと同様ですが、ctxが完了した場合はドライバーの終了を待たずにキャンセルします。
func (c *Client) CloseContext(ctx context.Context) error {
	err := c.CloseAllConnections()
	if c.owned != nil {
		err = errors.Append(err, c.owned.Shutdown(ctx))
	}
	return err
}
