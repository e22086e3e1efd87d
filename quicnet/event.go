package quicnet

import (
	"net"

	"github.com/aptpod/quicnet-go/certificate"
	"github.com/aptpod/quicnet-go/transport"
)

// EventKindは、イベントの種類です。
type EventKind string

const (
	EventKindConnectionEstablished EventKind = "connection_established"
	EventKindConnectionFailed      EventKind = "connection_failed"
	EventKindConnectionLost        EventKind = "connection_lost"
	EventKindCertInteraction       EventKind = "cert_interaction"
	EventKindCertTrustUpdate       EventKind = "cert_trust_update"
	EventKindCertAbort             EventKind = "cert_abort"
)

// Eventは、Updateが発行するイベントです。
type Event interface {
	// ConnectionIDは、イベントが発生したコネクションのIDを返却します。
	ConnectionID() transport.ConnectionID
	// Kindは、イベントの種類を返却します。
	Kind() EventKind
}

// ConnectionEstablishedEventは、コネクションが確立したイベントです。
type ConnectionEstablishedEvent struct {
	ID transport.ConnectionID
	// サーバーから受信したピアID
	PeerID *transport.PeerID
	// 接続先のアドレス
	RemoteAddr net.Addr
}

// ConnectionFailedEventは、コネクションの確立に失敗したイベントです。
type ConnectionFailedEvent struct {
	ID  transport.ConnectionID
	Err error
}

// ConnectionLostEventは、コネクションが切断されたイベントです。
type ConnectionLostEvent struct {
	ID  transport.ConnectionID
	Err error
}

// CertInteractionEventは、証明書の判定を利用者に問い合わせるイベントです。
//
// 利用者はResponderへ一度だけアクションを応答します。
type CertInteractionEvent struct {
	ID        transport.ConnectionID
	Status    certificate.VerificationStatus
	Info      certificate.VerificationInfo
	Responder *certificate.Responder
}

// CertTrustUpdateEventは、known hostsが更新されたイベントです。
type CertTrustUpdateEvent struct {
	ID   transport.ConnectionID
	Info certificate.VerificationInfo
}

// CertAbortEventは、証明書が拒否されたイベントです。
type CertAbortEvent struct {
	ID     transport.ConnectionID
	Status certificate.VerificationStatus
	Info   certificate.VerificationInfo
}

func (e ConnectionEstablishedEvent) ConnectionID() transport.ConnectionID { return e.ID }
func (e ConnectionFailedEvent) ConnectionID() transport.ConnectionID      { return e.ID }
func (e ConnectionLostEvent) ConnectionID() transport.ConnectionID        { return e.ID }
func (e CertInteractionEvent) ConnectionID() transport.ConnectionID       { return e.ID }
func (e CertTrustUpdateEvent) ConnectionID() transport.ConnectionID       { return e.ID }
func (e CertAbortEvent) ConnectionID() transport.ConnectionID             { return e.ID }

func (ConnectionEstablishedEvent) Kind() EventKind { return EventKindConnectionEstablished }
func (ConnectionFailedEvent) Kind() EventKind      { return EventKindConnectionFailed }
func (ConnectionLostEvent) Kind() EventKind        { return EventKindConnectionLost }
func (CertInteractionEvent) Kind() EventKind       { return EventKindCertInteraction }
func (CertTrustUpdateEvent) Kind() EventKind       { return EventKindCertTrustUpdate }
func (CertAbortEvent) Kind() EventKind             { return EventKindCertAbort }
