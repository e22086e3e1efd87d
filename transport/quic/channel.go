package quic

import (
	"context"
	"sync"

	quicgo "github.com/quic-go/quic-go"
	"golang.org/x/sync/errgroup"

	"github.com/aptpod/quicnet-go/channel"
	"github.com/aptpod/quicnet-go/errors"
	"github.com/aptpod/quicnet-go/internal/ch"
	"github.com/aptpod/quicnet-go/transport"
)

// channelTaskは、1つのチャネルの送信キューをQUICへ書き込むタスクです。
type channelTask struct {
	id       channel.ID
	typ      channel.Type
	outbound <-chan []byte

	closeOnce sync.Once
	closing   chan struct{}
	failOnce  sync.Once
}

func newChannelTask(req channel.OpenRequest) *channelTask {
	return &channelTask{
		id:       req.ID,
		typ:      req.Type,
		outbound: req.Outbound,
		closing:  make(chan struct{}),
	}
}

// finishは、キュー済みのメッセージを送信し終えた後にタスクを終了させます。
func (t *channelTask) finish() {
	t.closeOnce.Do(func() { close(t.closing) })
}

// channelWriterは、チャネルタイプごとの書き込み方式です。
type channelWriter interface {
	write(ctx context.Context, bs []byte) error
	close() error
}

func (s *session) newChannelWriter(t *channelTask) channelWriter {
	switch t.typ {
	case channel.UnorderedReliable:
		g := &errgroup.Group{}
		g.SetLimit(s.driver.UnorderedConcurrency)
		return &unorderedWriter{s: s, t: t, g: g}
	case channel.Unreliable:
		return &datagramWriter{s: s, t: t}
	default:
		return &orderedWriter{conn: s.conn, id: t.id}
	}
}

// runChannelは、チャネルの送信キューを読み出しQUICへ書き込みます。
//
// 書き込みに失敗した場合はLostConnectionを送信して終了します。
func (s *session) runChannel(ctx context.Context, t *channelTask) {
	w := s.newChannelWriter(t)
	defer func() {
		if err := w.close(); err != nil && !isErrTransportClosed(err) {
			s.logger.Warnf(ctx, "Failed to close channel %d: %v", t.id, err)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case bs := <-t.outbound:
			if err := w.write(ctx, bs); err != nil {
				s.lost(ctx, t, err)
				return
			}
		case <-t.closing:
			for {
				bs, ok := ch.TryRead(t.outbound)
				if !ok {
					return
				}
				if err := w.write(ctx, bs); err != nil {
					s.lost(ctx, t, err)
					return
				}
			}
		}
	}
}

func (s *session) lost(ctx context.Context, t *channelTask, err error) {
	t.failOnce.Do(func() {
		if !s.ep.IsShutdown() {
			s.logger.Warnf(ctx, "Lost connection while writing on channel %d: %v", t.id, err)
		}
		s.ep.EmitChannel(ctx, transport.LostConnection{
			Channel: t.id,
			Err:     &errors.TransportError{Op: "write", Err: err},
		})
	})
}

// orderedWriterは、1本のストリームに全てのメッセージを順番に書き込みます。
type orderedWriter struct {
	conn   quicgo.Connection
	id     channel.ID
	stream quicgo.SendStream
}

func (w *orderedWriter) write(ctx context.Context, bs []byte) error {
	if w.stream == nil {
		stream, err := w.conn.OpenUniStreamSync(ctx)
		if err != nil {
			return err
		}
		if err := channel.WriteHeader(stream, w.id); err != nil {
			return err
		}
		w.stream = stream
	}
	_, err := channel.WriteFrame(w.stream, bs)
	return err
}

func (w *orderedWriter) close() error {
	if w.stream == nil {
		return nil
	}
	return w.stream.Close()
}

// unorderedWriterは、メッセージごとにストリームを開いて並行に書き込みます。
type unorderedWriter struct {
	s *session
	t *channelTask
	g *errgroup.Group
}

func (w *unorderedWriter) write(ctx context.Context, bs []byte) error {
	w.g.Go(func() error {
		stream, err := w.s.conn.OpenUniStreamSync(ctx)
		if err == nil {
			err = channel.WriteHeader(stream, w.t.id)
		}
		if err == nil {
			_, err = channel.WriteFrame(stream, bs)
		}
		if err == nil {
			err = stream.Close()
		}
		if err != nil {
			w.s.lost(ctx, w.t, err)
		}
		return err
	})
	return nil
}

func (w *unorderedWriter) close() error {
	return w.g.Wait()
}

// datagramWriterは、メッセージをデータグラムとして送信します。
//
// データグラムに収まらないメッセージは破棄します。
type datagramWriter struct {
	s *session
	t *channelTask
}

func (w *datagramWriter) write(ctx context.Context, bs []byte) error {
	err := w.s.conn.SendDatagram(channel.EncodeDatagram(w.t.id, bs))
	var tooLarge *quicgo.DatagramTooLargeError
	if errors.As(err, &tooLarge) {
		w.s.logger.Warnf(ctx, "Dropped datagram on channel %d: %d bytes exceeds %d bytes", w.t.id, len(bs), tooLarge.MaxDatagramPayloadSize)
		return nil
	}
	return err
}

func (w *datagramWriter) close() error {
	return nil
}
