package transport

import (
	"net"

	"github.com/aptpod/quicnet-go/certificate"
	"github.com/aptpod/quicnet-go/channel"
)

// Envelopeは、ドライバーから同期側へ送られるトランスポート層のメッセージです。
//
// 実装はConnected、ConnectionFailed、ConnectionClosed、CertInteractionRequest、CertTrustUpdate、CertConnectionAbortです。
type Envelope interface {
	isEnvelope()
}

// Connectedは、コネクションが確立したことを表します。
type Connected struct {
	// サーバーから受信したピアID。受信しない設定の場合はnilです。
	PeerID *PeerID
	// 接続先のアドレス
	RemoteAddr net.Addr
}

// ConnectionFailedは、コネクションの確立に失敗したことを表します。
type ConnectionFailed struct {
	Err error
}

// ConnectionClosedは、確立したコネクションが切断されたことを表します。
type ConnectionClosed struct {
	Err error
}

// CertInteractionRequestは、証明書の判定を利用者に問い合わせる要求です。
//
// Responderは一度だけ応答できます。
type CertInteractionRequest struct {
	Status    certificate.VerificationStatus
	Info      certificate.VerificationInfo
	Responder *certificate.Responder
}

// CertTrustUpdateは、known hostsを更新したことを表します。
type CertTrustUpdate struct {
	Info certificate.VerificationInfo
}

// CertConnectionAbortは、証明書を拒否しコネクションを中断したことを表します。
type CertConnectionAbort struct {
	Status certificate.VerificationStatus
	Info   certificate.VerificationInfo
}

func (Connected) isEnvelope()              {}
func (ConnectionFailed) isEnvelope()       {}
func (ConnectionClosed) isEnvelope()       {}
func (CertInteractionRequest) isEnvelope() {}
func (CertTrustUpdate) isEnvelope()        {}
func (CertConnectionAbort) isEnvelope()    {}

// ChannelEnvelopeは、ドライバーのチャネルタスクから同期側へ送られるメッセージです。
type ChannelEnvelope interface {
	isChannelEnvelope()
}

// LostConnectionは、チャネルへの書き込み中にコネクションを失ったことを表します。
type LostConnection struct {
	Channel channel.ID
	Err     error
}

func (LostConnection) isChannelEnvelope() {}
