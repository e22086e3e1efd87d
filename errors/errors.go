package errors

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrQuicNetは、quicnetライブラリで定義されている基底エラーです。
	ErrQuicNet = errors.New("quicnet")

	// ErrUnknownConnectionは、レジストリに存在しないコネクションIDを指定した場合のエラーです。
	ErrUnknownConnection = fmt.Errorf("unknown connection: %w", ErrQuicNet)
	// ErrConfigurationは、コネクションを開く際の設定が不正な場合のエラーです。
	ErrConfiguration = fmt.Errorf("invalid configuration: %w", ErrQuicNet)
	// ErrMaxChannelsCountReachedは、1コネクションで開けるチャネル数の上限に達した場合のエラーです。
	ErrMaxChannelsCountReached = fmt.Errorf("max channels count reached: %w", ErrConfiguration)
	// ErrInvalidChannelTypeは、未定義のチャネルタイプを指定した場合のエラーです。
	ErrInvalidChannelType = fmt.Errorf("invalid channel type: %w", ErrConfiguration)

	// ErrUnknownChannelは、開かれていないチャネルIDを指定した場合のエラーです。
	ErrUnknownChannel = fmt.Errorf("unknown channel: %w", ErrQuicNet)
	// ErrNoDefaultChannelは、デフォルトチャネルが存在しない状態で送信した場合のエラーです。
	ErrNoDefaultChannel = fmt.Errorf("no default channel: %w", ErrQuicNet)
	// ErrChannelFullは、チャネルの送信キューが一杯の場合のエラーです。
	ErrChannelFull = fmt.Errorf("channel queue is full: %w", ErrQuicNet)
	// ErrChannelClosedは、閉じられたチャネルへ読み書きした場合のエラーです。
	ErrChannelClosed = fmt.Errorf("closed channel: %w", ErrQuicNet)
	// ErrConnectionClosedは、切断されたコネクションへ読み書きした場合のエラーです。
	ErrConnectionClosed = fmt.Errorf("closed connection: %w", ErrQuicNet)

	// ErrMalformedMessageは、フレームのエンコードやデコードに失敗した時のエラーです。
	ErrMalformedMessage = fmt.Errorf("malformed message: %w", ErrQuicNet)
	// ErrMessageTooLargeは、フレームが大きすぎる場合のエラーです。
	ErrMessageTooLarge = fmt.Errorf("message is too large: %w", ErrMalformedMessage)

	// ErrPeerIDNotReceivedは、サーバーからピアIDを受信できなかった場合のエラーです。
	ErrPeerIDNotReceived = fmt.Errorf("peer id not received: %w", ErrQuicNet)
	// ErrInvalidPeerIDは、サーバーから受信したピアIDが不正な場合のエラーです。
	ErrInvalidPeerID = fmt.Errorf("invalid peer id: %w", ErrQuicNet)

	// ErrCertificateRejectedは、サーバー証明書が拒否されコネクションを中断した場合のエラーです。
	ErrCertificateRejected = fmt.Errorf("certificate rejected: %w", ErrQuicNet)
	// ErrInteractionTimeoutは、証明書の確認要求に対して時間内に応答がなかった場合のエラーです。
	ErrInteractionTimeout = fmt.Errorf("certificate interaction timed out: %w", ErrCertificateRejected)
	// ErrResponderAlreadyUsedは、応答済みのResponderへ再度応答した場合のエラーです。
	ErrResponderAlreadyUsed = fmt.Errorf("responder already used: %w", ErrQuicNet)
)

// UnknownConnectionErrorは、存在しないコネクションIDを参照した場合に返却されるエラーです。
type UnknownConnectionError struct {
	ID uint64 // コネクションID
}

func (e UnknownConnectionError) Error() string {
	return fmt.Sprintf("unknown connection id %d", e.ID)
}

func (e UnknownConnectionError) Is(err error) bool {
	return err == ErrUnknownConnection || err == ErrQuicNet
}

// ConfigurationErrorは、チャネル設定の不正によりコネクションを開けなかった場合のエラーです。
type ConfigurationError struct {
	Index int   // 設定内のチャネルの位置
	Cause error // 原因
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("invalid channel configuration at index %d: %v", e.Index, e.Cause)
}

func (e ConfigurationError) Unwrap() error {
	return e.Cause
}

func (e ConfigurationError) Is(err error) bool {
	return err == ErrConfiguration || err == ErrQuicNet
}

// TransportErrorは、トランスポート層で発生したエラーです。
//
// ConnectionFailedEventやConnectionLostEventの原因として通知され、呼び出し元へ直接返却されることはありません。
type TransportError struct {
	Op  string // 失敗した操作
	Err error  // 下位のエラー
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(err error) bool {
	return err == ErrQuicNet
}

func AsConfigurationError(err error) (*ConfigurationError, bool) {
	var res ConfigurationError
	ok := As(err, &res)
	return &res, ok
}

func AsTransportError(err error) (*TransportError, bool) {
	var res *TransportError
	ok := As(err, &res)
	return res, ok
}

func New(text string) error {
	return errors.New(text)
}

func Errorf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// Appendは、2つのエラーを1つにまとめます。どちらかがnilの場合はもう一方をそのまま返却します。
func Append(left, right error) error {
	return multierr.Append(left, right)
}

// Errorsは、Appendでまとめられたエラーを分解して返却します。
func Errors(err error) []error {
	return multierr.Errors(err)
}
