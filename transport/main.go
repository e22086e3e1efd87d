/*
Package transport は、同期側のレジストリとコネクションドライバーの間でやり取りするエンベロープと、ドライバーの契約をまとめたパッケージです。
*/
package transport

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// ConnectionIDは、レジストリ内でコネクションを一意に識別するIDです。
type ConnectionID uint64

func (id ConnectionID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// PeerIDは、サーバーがクライアントに割り当てたIDです。
type PeerID uint64

const (
	// DefaultALPNは、TLSのALPNで使用するプロトコル名のデフォルト値です。
	DefaultALPN = "quicnet"
	// DefaultPeerIDTimeoutは、ピアIDを待機する時間のデフォルト値です。
	DefaultPeerIDTimeout = 5 * time.Second
	// DefaultShutdownGracePeriodは、シャットダウン時に送信済みデータのフラッシュを待つ時間のデフォルト値です。
	DefaultShutdownGracePeriod = 3 * time.Second
	// DefaultMaxIdleTimeoutは、無通信で切断するまでの時間のデフォルト値です。
	DefaultMaxIdleTimeout = 30 * time.Second
)

// ConnectionConfigは、コネクションの接続設定です。
type ConnectionConfig struct {
	// 接続先のアドレス(host:port)
	ServerAddress string

	// TLSのサーバー名。空の場合はServerAddressのホスト部を使用します。
	ServerName string

	// ローカルでバインドするアドレス。空の場合は接続先のアドレスファミリーに応じて `0.0.0.0:0` または `[::]:0` を使用します。
	LocalAddress string

	// ALPNで使用するプロトコル名。空の場合はDefaultALPNを使用します。
	ALPN []string

	// 接続後にサーバーからピアIDを受信するかどうか
	ReceivePeerID bool
	// ピアIDの待機時間
	PeerIDTimeout time.Duration

	// ダイアルの試行回数
	DialAttempts int

	// キープアライブの間隔。0の場合はキープアライブを送信しません。
	KeepAlivePeriod time.Duration
	// 無通信で切断するまでの時間
	MaxIdleTimeout time.Duration

	// シャットダウン時に送信キューのフラッシュを待つ時間
	ShutdownGracePeriod time.Duration
}

// NewConnectionConfigは、serverAddressへ接続するデフォルト設定のConnectionConfigを返却します。
func NewConnectionConfig(serverAddress string) ConnectionConfig {
	return ConnectionConfig{ServerAddress: serverAddress}.WithDefaults()
}

// WithDefaultsは、未設定の項目をデフォルト値で補完したConnectionConfigを返却します。
func (c ConnectionConfig) WithDefaults() ConnectionConfig {
	if c.ServerName == "" {
		if host, _, err := net.SplitHostPort(c.ServerAddress); err == nil {
			c.ServerName = host
		}
	}
	if len(c.ALPN) == 0 {
		c.ALPN = []string{DefaultALPN}
	}
	if c.PeerIDTimeout <= 0 {
		c.PeerIDTimeout = DefaultPeerIDTimeout
	}
	if c.DialAttempts <= 0 {
		c.DialAttempts = 1
	}
	if c.MaxIdleTimeout <= 0 {
		c.MaxIdleTimeout = DefaultMaxIdleTimeout
	}
	if c.ShutdownGracePeriod <= 0 {
		c.ShutdownGracePeriod = DefaultShutdownGracePeriod
	}
	return c
}

// ResolveLocalAddressは、リモートアドレスに合わせたローカルのバインドアドレスを返却します。
func (c ConnectionConfig) ResolveLocalAddress(remote *net.UDPAddr) string {
	if c.LocalAddress != "" {
		return c.LocalAddress
	}
	if remote != nil && remote.IP.To4() == nil && remote.IP.To16() != nil {
		return "[::]:0"
	}
	return "0.0.0.0:0"
}

func (c ConnectionConfig) String() string {
	return fmt.Sprintf("server=%s name=%s peer_id=%t", c.ServerAddress, c.ServerName, c.ReceivePeerID)
}
