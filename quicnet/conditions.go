package quicnet

// ConnectingConditionは、デフォルトコネクションが接続中かどうかを返却します。cがnilの場合はfalseです。
func ConnectingCondition(c *Client) bool {
	return c != nil && c.IsConnecting()
}

// ConnectedConditionは、デフォルトコネクションが接続済みかどうかを返却します。cがnilの場合はfalseです。
func ConnectedCondition(c *Client) bool {
	return c != nil && c.IsConnected()
}

// ConnectionWatcherは、ティックごとにデフォルトコネクションの接続状態の変化を検出します。
type ConnectionWatcher struct {
	connected        bool
	justConnected    bool
	justDisconnected bool
}

// Observeは、現在の接続状態を記録します。ティックごとにUpdateの後で一度呼び出します。
func (w *ConnectionWatcher) Observe(c *Client) {
	connected := ConnectedCondition(c)
	w.justConnected = !w.connected && connected
	w.justDisconnected = w.connected && !connected
	w.connected = connected
}

// JustConnectedは、直前のObserveで接続済みに変化したかどうかを返却します。
func (w *ConnectionWatcher) JustConnected() bool {
	return w.justConnected
}

// JustDisconnectedは、直前のObserveで接続済みでなくなったかどうかを返却します。
func (w *ConnectionWatcher) JustDisconnected() bool {
	return w.justDisconnected
}
