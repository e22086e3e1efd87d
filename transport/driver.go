package transport

import (
	"context"

	"github.com/aptpod/quicnet-go/certificate"
	"github.com/aptpod/quicnet-go/channel"
	"github.com/aptpod/quicnet-go/internal/ch"
)

//go:generate mockgen -destination ./${GOPACKAGE}mock/${GOFILE} -package ${GOPACKAGE}mock -source ./${GOFILE}

// Configは、ドライバーへ渡すコネクションごとの設定です。
type Config struct {
	Connection   ConnectionConfig
	Verification certificate.VerificationMode
}

// Endpointsは、ドライバー側から見たキューの組です。
type Endpoints struct {
	// トランスポート層のエンベロープの送信先
	Envelopes chan<- Envelope
	// チャネルのエンベロープの送信先
	ChannelEnvelopes chan<- ChannelEnvelope
	// 受信したアプリケーションデータの送信先
	Payloads chan<- channel.Payload
	// 同期側からのチャネル制御メッセージ
	Control <-chan channel.SyncMessage
	// シャットダウン通知。クローズされることで通知します。
	Shutdown <-chan struct{}
}

// Driverは、1つのコネクションのトランスポートを駆動する非同期タスクです。
//
// Runはコネクションの終了、シャットダウン通知の受信、またはctxの完了まで戻りません。
// 同期側へのキューが一杯の場合は破棄せずに待機します。
// シャットダウン通知の受信後は、レジストリがIDを保持していることを前提にしてはいけません。
type Driver interface {
	Run(ctx context.Context, id ConnectionID, c Config, ep Endpoints)
}

// DriverFuncは、関数をDriverとして扱うアダプターです。
type DriverFunc func(ctx context.Context, id ConnectionID, c Config, ep Endpoints)

func (f DriverFunc) Run(ctx context.Context, id ConnectionID, c Config, ep Endpoints) {
	f(ctx, id, c, ep)
}

// IsShutdownは、シャットダウン通知を受信済みかどうかを返却します。
func (ep Endpoints) IsShutdown() bool {
	select {
	case <-ep.Shutdown:
		return true
	default:
		return false
	}
}

// Emitは、エンベロープを送信します。
//
// キューが一杯の場合は空きができるまで待機します。シャットダウン後は待機せず、送信できない場合は破棄してfalseを返却します。
func (ep Endpoints) Emit(ctx context.Context, e Envelope) bool {
	return send(ctx, ep.Shutdown, ep.Envelopes, e)
}

// EmitChannelは、チャネルのエンベロープを送信します。振る舞いはEmitと同様です。
func (ep Endpoints) EmitChannel(ctx context.Context, e ChannelEnvelope) bool {
	return send(ctx, ep.Shutdown, ep.ChannelEnvelopes, e)
}

// Deliverは、受信したアプリケーションデータを送信します。振る舞いはEmitと同様です。
func (ep Endpoints) Deliver(ctx context.Context, p channel.Payload) bool {
	return send(ctx, ep.Shutdown, ep.Payloads, p)
}

func send[T any](ctx context.Context, shutdown <-chan struct{}, c chan<- T, v T) bool {
	select {
	case <-shutdown:
		return ch.TryWrite(v, c)
	default:
	}
	select {
	case c <- v:
		return true
	case <-ctx.Done():
		return false
	case <-shutdown:
		return ch.TryWrite(v, c)
	}
}
