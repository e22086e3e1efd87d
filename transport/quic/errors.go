package quic

import (
	"context"

	quicgo "github.com/quic-go/quic-go"

	"github.com/aptpod/quicnet-go/errors"
)

const (
	errorCodeNoError quicgo.ApplicationErrorCode = iota
	errorCodeCertificateRejected
	errorCodePeerID
)

const (
	streamErrorCodeNoError quicgo.StreamErrorCode = iota
	streamErrorCodeMalformed
)

// isErrTransportClosedは、コネクションの正常なクローズによるエラーかどうかを返却します。
func isErrTransportClosed(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}

	var aerr *quicgo.ApplicationError
	if errors.As(err, &aerr) {
		if aerr.ErrorCode == errorCodeNoError {
			return true
		}
	}

	var qerr *quicgo.TransportError
	if errors.As(err, &qerr) {
		if qerr.ErrorCode == quicgo.ApplicationErrorErrorCode {
			return true
		}
	}

	return false
}

// closeCauseは、切断されたコネクションの原因をTransportErrorとして返却します。
func closeCause(conn quicgo.Connection) error {
	cause := context.Cause(conn.Context())
	if cause == nil {
		cause = errors.ErrConnectionClosed
	}
	return &errors.TransportError{Op: "connection", Err: cause}
}
