package quic

import (
	"context"
	"encoding/binary"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	quicgo "github.com/quic-go/quic-go"

	"github.com/aptpod/quicnet-go/errors"
	"github.com/aptpod/quicnet-go/transport"
)

const peerIDLength = 8

// receivePeerIDは、サーバーが最初に開くストリームからピアIDを受信します。
//
// timeout以内にストリームを受け付けられない場合はErrPeerIDNotReceivedを返却します。
// ストリームの内容が8バイトに満たない場合はErrInvalidPeerIDを返却します。
func receivePeerID(ctx context.Context, conn quicgo.Connection, timeout time.Duration, clk clock.Clock) (transport.PeerID, error) {
	ctx, cancel := clk.WithTimeout(ctx, timeout)
	defer cancel()

	stream, err := conn.AcceptUniStream(ctx)
	if err != nil {
		return 0, errors.Errorf("accept peer id stream: %v: %w", err, errors.ErrPeerIDNotReceived)
	}
	if err := stream.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, errors.Errorf("set read deadline: %v: %w", err, errors.ErrPeerIDNotReceived)
	}

	bs := make([]byte, peerIDLength)
	if _, err := io.ReadFull(stream, bs); err != nil {
		stream.CancelRead(streamErrorCodeMalformed)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, errors.Errorf("read peer id: %v: %w", err, errors.ErrInvalidPeerID)
		}
		return 0, errors.Errorf("read peer id: %v: %w", err, errors.ErrPeerIDNotReceived)
	}
	return transport.PeerID(binary.BigEndian.Uint64(bs)), nil
}
