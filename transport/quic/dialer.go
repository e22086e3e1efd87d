package quic

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/benbjohnson/clock"
	quicgo "github.com/quic-go/quic-go"

	"github.com/aptpod/quicnet-go/certificate"
	"github.com/aptpod/quicnet-go/errors"
	"github.com/aptpod/quicnet-go/internal/retry"
	"github.com/aptpod/quicnet-go/log"
	"github.com/aptpod/quicnet-go/transport"
)

const (
	defaultUnorderedConcurrency = 32
	dialRetryBaseInterval       = 200 * time.Millisecond
	dialRetryMaxInterval        = 3 * time.Second
	defaultShutdownLinger       = 100 * time.Millisecond
)

var defaultDialerConfig = DialerConfig{
	TLSConfig: &tls.Config{},
}

// DialerConfigは、Driverの設定です。
type DialerConfig struct {
	// TLSConfigは、TLS接続の基本設定です。
	//
	// ServerName、NextProtosと証明書の検証に関する項目は、コネクションごとの設定で上書きします。
	TLSConfig *tls.Config

	// QUICConfigは、QUICの基本設定です。nilの場合はquic-goのデフォルト値を使用します。
	//
	// EnableDatagramsは常に有効にします。
	QUICConfig *quicgo.Config

	// UnorderedConcurrencyは、UnorderedReliableチャネルで同時に送信するストリーム数の上限です。
	UnorderedConcurrency int

	// ShutdownLingerは、シャットダウン時に全チャネルの送信を終えてからコネクションをクローズするまでの待機時間です。
	ShutdownLinger time.Duration

	// Loggerは、ドライバーのロガーです。nilの場合はログを出力しません。
	Logger log.Logger

	// Clockは、リトライやタイムアウトで使用する時計です。nilの場合は実時間を使用します。
	Clock clock.Clock
}

// Driverは、QUICのコネクションドライバーです。
//
// 1つのDriverを複数のコネクションで共有できます。コネクションごとにUDPソケットを作成します。
type Driver struct {
	DialerConfig
}

// NewDefaultDriverは、デフォルト設定のDriverを返却します。
func NewDefaultDriver() *Driver {
	return NewDriver(defaultDialerConfig)
}

// NewDriverは、Driverを返却します。
func NewDriver(c DialerConfig) *Driver {
	if c.TLSConfig == nil {
		c.TLSConfig = defaultDialerConfig.TLSConfig
	}
	if c.UnorderedConcurrency <= 0 {
		c.UnorderedConcurrency = defaultUnorderedConcurrency
	}
	if c.ShutdownLinger <= 0 {
		c.ShutdownLinger = defaultShutdownLinger
	}
	if c.Logger == nil {
		c.Logger = log.NewNop()
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	return &Driver{DialerConfig: c}
}

func (d *Driver) quicConfig(c transport.ConnectionConfig) *quicgo.Config {
	var qc *quicgo.Config
	if d.QUICConfig != nil {
		qc = d.QUICConfig.Clone()
	} else {
		qc = &quicgo.Config{}
	}
	qc.EnableDatagrams = true
	if c.KeepAlivePeriod > 0 {
		qc.KeepAlivePeriod = c.KeepAlivePeriod
	}
	if c.MaxIdleTimeout > 0 {
		qc.MaxIdleTimeout = c.MaxIdleTimeout
	}
	return qc
}

func (d *Driver) tlsConfig(c transport.ConnectionConfig, mode certificate.VerificationMode) *tls.Config {
	tc := mode.ClientTLSConfig(d.TLSConfig, c.ServerName)
	tc.NextProtos = append([]string(nil), c.ALPN...)
	return tc
}

// endpointは、1つのコネクションが専有するUDPソケットとQUICトランスポートです。
type endpoint struct {
	udp *net.UDPConn
	tr  *quicgo.Transport
}

func (e *endpoint) close() {
	e.tr.Close()
	e.udp.Close()
}

// dialは、接続先へ最大DialAttempts回ダイアルします。
func (d *Driver) dial(ctx context.Context, c transport.ConnectionConfig, mode certificate.VerificationMode) (*endpoint, quicgo.Connection, error) {
	raddr, err := net.ResolveUDPAddr("udp", c.ServerAddress)
	if err != nil {
		return nil, nil, &errors.TransportError{Op: "resolve", Err: err}
	}
	laddr, err := net.ResolveUDPAddr("udp", c.ResolveLocalAddress(raddr))
	if err != nil {
		return nil, nil, &errors.TransportError{Op: "resolve", Err: err}
	}
	udp, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, nil, &errors.TransportError{Op: "listen", Err: err}
	}
	ep := &endpoint{udp: udp, tr: &quicgo.Transport{Conn: udp}}

	tc := d.tlsConfig(c, mode)
	qc := d.quicConfig(c)

	var (
		conn    quicgo.Connection
		lastErr error
		attempt int
	)
	r := retry.Retry{
		MaxAttempt:      c.DialAttempts,
		BaseInterval:    dialRetryBaseInterval,
		MaxBaseInterval: dialRetryMaxInterval,
		Clock:           d.Clock,
	}
	if err := r.Do(ctx, func(ctx context.Context) bool {
		attempt++
		conn, lastErr = ep.tr.Dial(ctx, raddr, tc, qc)
		if lastErr != nil {
			d.Logger.Warnf(ctx, "Failed to dial %s (attempt %d/%d): %v", c.ServerAddress, attempt, c.DialAttempts, lastErr)
			return ctx.Err() != nil
		}
		return true
	}); err != nil {
		ep.close()
		return nil, nil, &errors.TransportError{Op: "dial", Err: err}
	}
	if conn == nil {
		ep.close()
		return nil, nil, &errors.TransportError{Op: "dial", Err: lastErr}
	}
	return ep, conn, nil
}
