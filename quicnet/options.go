package quicnet

import (
	"github.com/aptpod/quicnet-go/log"
	"github.com/aptpod/quicnet-go/metrics"
	"github.com/aptpod/quicnet-go/transport"
)

const (
	// DefaultMessageQueueSizeは、受信したアプリケーションデータとチャネルごとの送信キューの長さのデフォルト値です。
	DefaultMessageQueueSize = 150
	// DefaultInternalQueueSizeは、ドライバーとの間のエンベロープと制御メッセージのキューの長さのデフォルト値です。
	DefaultInternalQueueSize = 100
)

var defaultClientConfig = ClientConfig{
	Logger:            log.NewNop(),
	Metrics:           metrics.Noop(),
	MessageQueueSize:  DefaultMessageQueueSize,
	InternalQueueSize: DefaultInternalQueueSize,

	// 状態を持つものはnilをデフォルトとする。
	Runtime: nil,
	Driver:  nil,
}

// ClientConfigは、Clientの設定です。
type ClientConfig struct {
	// ドライバーを実行する環境
	//
	// nilの場合はClientがGroupRuntimeを生成し、Closeで停止します。
	Runtime Runtime

	// コネクションドライバー
	//
	// nilの場合はQUICのドライバーを使用します。
	Driver transport.Driver

	// ロガー
	Logger log.Logger

	// メトリクスのコレクター
	Metrics metrics.Collector

	// 受信したアプリケーションデータのキューと、チャネルごとの送信キューの長さ
	MessageQueueSize int

	// エンベロープと制御メッセージのキューの長さ
	InternalQueueSize int
}

// DefaultClientConfigは、デフォルトのClientConfigを返却します。
func DefaultClientConfig() ClientConfig {
	return defaultClientConfig
}

// ClientOptionは、Clientのオプションです。
type ClientOption func(*ClientConfig)

// WithClientRuntimeは、ドライバーを実行する環境を設定します。
func WithClientRuntime(r Runtime) ClientOption {
	return func(c *ClientConfig) {
		c.Runtime = r
	}
}

// WithClientDriverは、コネクションドライバーを設定します。
func WithClientDriver(d transport.Driver) ClientOption {
	return func(c *ClientConfig) {
		c.Driver = d
	}
}

// WithClientLoggerは、ロガーを設定します。
func WithClientLogger(l log.Logger) ClientOption {
	return func(c *ClientConfig) {
		c.Logger = l
	}
}

// WithClientMetricsは、メトリクスのコレクターを設定します。
func WithClientMetrics(m metrics.Collector) ClientOption {
	return func(c *ClientConfig) {
		c.Metrics = m
	}
}

// WithClientMessageQueueSizeは、アプリケーションデータのキューの長さを設定します。
func WithClientMessageQueueSize(n int) ClientOption {
	return func(c *ClientConfig) {
		c.MessageQueueSize = n
	}
}

// WithClientInternalQueueSizeは、エンベロープと制御メッセージのキューの長さを設定します。
func WithClientInternalQueueSize(n int) ClientOption {
	return func(c *ClientConfig) {
		c.InternalQueueSize = n
	}
}
