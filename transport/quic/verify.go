package quic

import (
	"context"

	quicgo "github.com/quic-go/quic-go"

	"github.com/aptpod/quicnet-go/certificate"
	"github.com/aptpod/quicnet-go/errors"
	"github.com/aptpod/quicnet-go/transport"
)

// notifierは、Verifierの通知をエンベロープとして同期側へ送信します。
type notifier struct {
	ctx context.Context
	ep  transport.Endpoints
}

func (n notifier) RequestInteraction(status certificate.VerificationStatus, info certificate.VerificationInfo, r *certificate.Responder) {
	n.ep.Emit(n.ctx, transport.CertInteractionRequest{Status: status, Info: info, Responder: r})
}

func (n notifier) TrustUpdated(info certificate.VerificationInfo) {
	n.ep.Emit(n.ctx, transport.CertTrustUpdate{Info: info})
}

func (n notifier) ConnectionAborted(status certificate.VerificationStatus, info certificate.VerificationInfo) {
	n.ep.Emit(n.ctx, transport.CertConnectionAbort{Status: status, Info: info})
}

// verifyは、ハンドシェイク完了後にTOFUでサーバー証明書を検証します。
//
// TOFU以外の検証方式では何もしません。
func (d *Driver) verify(ctx context.Context, conn quicgo.Connection, c transport.Config, ep transport.Endpoints) error {
	if c.Verification.Mode != certificate.ModeTrustOnFirstUse {
		return nil
	}
	certs := conn.ConnectionState().TLS.PeerCertificates
	if len(certs) == 0 {
		return errors.Errorf("no peer certificate: %w", errors.ErrCertificateRejected)
	}
	tofu := c.Verification.TOFU
	if tofu.Clock == nil {
		tofu.Clock = d.Clock
	}
	v := certificate.NewVerifier(tofu, notifier{ctx: ctx, ep: ep})
	return v.Verify(ctx, c.Connection.ServerName, certs[0].Raw)
}
