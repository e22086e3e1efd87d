/*
Package quic は、QUICを使用したコネクションドライバーを提供するパッケージです。
*/
package quic

import (
	"context"
	"io"
	"sync"

	quicgo "github.com/quic-go/quic-go"
	"golang.org/x/sync/errgroup"

	"github.com/aptpod/quicnet-go/channel"
	"github.com/aptpod/quicnet-go/errors"
	"github.com/aptpod/quicnet-go/log"
	"github.com/aptpod/quicnet-go/transport"
)

// sessionは、確立した1つのコネクションの状態です。
type session struct {
	driver *Driver
	logger log.Logger
	conn   quicgo.Connection
	conf   transport.ConnectionConfig
	ep     transport.Endpoints

	// チャネルタスクはcontrolLoopのゴルーチンのみが操作します。
	channels map[channel.ID]*channelTask
	tasks    sync.WaitGroup
}

// Runは、コネクションを確立しシャットダウン通知またはコネクションの切断まで駆動します。
func (d *Driver) Run(ctx context.Context, id transport.ConnectionID, c transport.Config, ep transport.Endpoints) {
	ctx = log.WithTrackConnectionID(ctx, uint64(id))
	ctx = log.WithTrackSessionID(ctx)
	c.Connection = c.Connection.WithDefaults()
	conf := c.Connection

	// 接続の確立中はシャットダウン通知で中断します。
	setupCtx, cancelSetup := withShutdown(ctx, ep.Shutdown)
	defer cancelSetup()

	d.Logger.Infof(ctx, "Connecting to %s", conf)
	endpoint, conn, err := d.dial(setupCtx, conf, c.Verification)
	if err != nil {
		d.Logger.Warnf(ctx, "Failed to connect to %s: %v", conf.ServerAddress, err)
		ep.Emit(ctx, transport.ConnectionFailed{Err: err})
		return
	}
	defer endpoint.close()

	if err := d.verify(setupCtx, conn, c, ep); err != nil {
		d.Logger.Warnf(ctx, "Rejected certificate of %s: %v", conf.ServerName, err)
		conn.CloseWithError(errorCodeCertificateRejected, "certificate rejected")
		ep.Emit(ctx, transport.ConnectionFailed{Err: err})
		return
	}

	var peerID *transport.PeerID
	if conf.ReceivePeerID {
		pid, err := receivePeerID(setupCtx, conn, conf.PeerIDTimeout, d.Clock)
		if err != nil {
			d.Logger.Warnf(ctx, "Failed to receive peer id from %s: %v", conf.ServerAddress, err)
			conn.CloseWithError(errorCodePeerID, "peer id")
			ep.Emit(ctx, transport.ConnectionFailed{Err: err})
			return
		}
		peerID = &pid
	}

	if !ep.Emit(ctx, transport.Connected{PeerID: peerID, RemoteAddr: conn.RemoteAddr()}) {
		conn.CloseWithError(errorCodeNoError, "")
		return
	}
	d.Logger.Infof(ctx, "Connected to %s", conn.RemoteAddr())

	s := &session{
		driver:   d,
		logger:   d.Logger,
		conn:     conn,
		conf:     conf,
		ep:       ep,
		channels: make(map[channel.ID]*channelTask),
	}
	s.serve(ctx)
}

func (s *session) serve(ctx context.Context) {
	recvCtx, cancelRecv := context.WithCancel(ctx)
	defer cancelRecv()
	var recv errgroup.Group
	recv.Go(func() error { return s.acceptStreams(recvCtx) })
	recv.Go(func() error { return s.receiveDatagrams(recvCtx) })

	sendCtx, cancelSend := context.WithCancel(ctx)
	defer cancelSend()

	shutdown := s.controlLoop(ctx, sendCtx)
	if shutdown {
		s.flush(ctx)
		s.conn.CloseWithError(errorCodeNoError, "")
		s.logger.Infof(ctx, "Closed connection to %s", s.conn.RemoteAddr())
	}
	cancelSend()
	s.tasks.Wait()
	cancelRecv()
	_ = recv.Wait()
}

// controlLoopは、チャネル制御メッセージを処理します。シャットダウン通知を受信した場合はtrueを返却します。
func (s *session) controlLoop(ctx, sendCtx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			s.conn.CloseWithError(errorCodeNoError, "")
			return false
		case <-s.conn.Context().Done():
			err := closeCause(s.conn)
			s.logger.Infof(ctx, "Connection to %s closed: %v", s.conn.RemoteAddr(), err)
			s.ep.Emit(ctx, transport.ConnectionClosed{Err: err})
			return false
		case <-s.ep.Shutdown:
			return true
		case msg := <-s.ep.Control:
			s.handleControl(sendCtx, msg)
		}
	}
}

func (s *session) handleControl(ctx context.Context, msg channel.SyncMessage) {
	switch m := msg.(type) {
	case channel.OpenRequest:
		if _, ok := s.channels[m.ID]; ok {
			s.logger.Warnf(ctx, "Channel %d is already open", m.ID)
			return
		}
		t := newChannelTask(m)
		s.channels[m.ID] = t
		s.tasks.Add(1)
		go func() {
			defer s.tasks.Done()
			s.runChannel(ctx, t)
		}()
		s.logger.Debugf(ctx, "Opened channel %d (%s)", m.ID, m.Type)
	case channel.CloseRequest:
		t, ok := s.channels[m.ID]
		if !ok {
			return
		}
		delete(s.channels, m.ID)
		t.finish()
		s.logger.Debugf(ctx, "Closed channel %d", m.ID)
	}
}

// flushは、全てのチャネルの送信キューを書き込み終えるか、猶予期間が経過するまで待機します。
func (s *session) flush(ctx context.Context) {
	// シャットダウン前に到着した制御メッセージを処理します。
	for drained := false; !drained; {
		select {
		case msg := <-s.ep.Control:
			s.handleControl(ctx, msg)
		default:
			drained = true
		}
	}
	for _, t := range s.channels {
		t.finish()
	}
	done := make(chan struct{})
	go func() {
		s.tasks.Wait()
		close(done)
	}()
	timer := s.driver.Clock.Timer(s.conf.ShutdownGracePeriod)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		s.logger.Warnf(ctx, "Shutdown grace period %s elapsed before flushing all channels", s.conf.ShutdownGracePeriod)
		return
	case <-s.conn.Context().Done():
		return
	}

	// クローズ前に、書き込み済みのデータがピアへ送信されるのを待ちます。
	linger := s.driver.Clock.Timer(s.driver.ShutdownLinger)
	defer linger.Stop()
	select {
	case <-linger.C:
	case <-s.conn.Context().Done():
	}
}

func (s *session) acceptStreams(ctx context.Context) error {
	var g errgroup.Group
	defer func() { _ = g.Wait() }()
	for {
		stream, err := s.conn.AcceptUniStream(ctx)
		if err != nil {
			return nil
		}
		g.Go(func() error {
			s.receiveStream(ctx, stream)
			return nil
		})
	}
}

func (s *session) receiveStream(ctx context.Context, stream quicgo.ReceiveStream) {
	id, err := channel.ReadHeader(stream)
	if err != nil {
		if !isErrTransportClosed(err) && !errors.Is(err, io.EOF) {
			s.logger.Warnf(ctx, "Failed to read channel header: %v", err)
		}
		return
	}
	for {
		bs, err := channel.ReadFrame(stream, channel.DefaultMaxFrameSize)
		if err != nil {
			if errors.Is(err, errors.ErrMalformedMessage) {
				s.logger.Warnf(ctx, "Discarded stream on channel %d: %v", id, err)
				stream.CancelRead(streamErrorCodeMalformed)
			}
			return
		}
		if !s.ep.Deliver(ctx, channel.Payload{Channel: id, Bytes: bs}) {
			stream.CancelRead(streamErrorCodeNoError)
			return
		}
	}
}

func (s *session) receiveDatagrams(ctx context.Context) error {
	for {
		bs, err := s.conn.ReceiveDatagram(ctx)
		if err != nil {
			return nil
		}
		id, payload, err := channel.DecodeDatagram(bs)
		if err != nil {
			s.logger.Warnf(ctx, "Discarded datagram: %v", err)
			continue
		}
		if !s.ep.Deliver(ctx, channel.Payload{Channel: id, Bytes: payload}) {
			return nil
		}
	}
}

// withShutdownは、shutdownがクローズされるとキャンセルされるコンテキストを返却します。
func withShutdown(ctx context.Context, shutdown <-chan struct{}) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
