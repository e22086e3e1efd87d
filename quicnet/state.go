package quicnet

import "fmt"

// ConnectionStateは、コネクションの状態です。
//
// 初期状態はConnectionStateConnectingです。ConnectionStateDisconnectedに遷移した後は状態が変化しません。
type ConnectionState uint8

const (
	// ConnectionStateConnectingは、接続中の状態です。
	ConnectionStateConnecting ConnectionState = iota
	// ConnectionStateConnectedは、接続が確立した状態です。
	ConnectionStateConnected
	// ConnectionStateDisconnectedは、切断された状態です。
	ConnectionStateDisconnected
)

var connectionStates = []ConnectionState{
	ConnectionStateConnecting,
	ConnectionStateConnected,
	ConnectionStateDisconnected,
}

func (s ConnectionState) String() string {
	switch s {
	case ConnectionStateConnecting:
		return "connecting"
	case ConnectionStateConnected:
		return "connected"
	case ConnectionStateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("ConnectionState(%d)", uint8(s))
	}
}
