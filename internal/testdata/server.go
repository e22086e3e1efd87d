package testdata

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"io"
	"sync"
	"testing"

	quic "github.com/quic-go/quic-go"
	"github.com/stretchr/testify/require"

	"github.com/aptpod/quicnet-go/channel"
)

// ServerConfigは、テスト用サーバーの設定です。
type ServerConfig struct {
	// 接続直後にクライアントへ送信するピアID。nilの場合は送信しません。
	PeerID *uint64
	// サーバー証明書。nilの場合はCertificateを使用します。
	Certificate *tls.Certificate
	// 受信したストリームとデータグラムを送り返すかどうか
	Echo bool
}

// Serverは、テスト用のQUICサーバーです。
//
// 受信したアプリケーションデータはReceivedで参照できます。
type Server struct {
	lis      *quic.Listener
	conf     ServerConfig
	received chan channel.Payload

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	conns []quic.Connection
}

// StartServerは、ループバックアドレスでテスト用サーバーを起動します。サーバーはテスト終了時に停止します。
func StartServer(t testing.TB, c ServerConfig) *Server {
	t.Helper()
	tlsConfig := GetTLSConfig()
	if c.Certificate != nil {
		tlsConfig.Certificates = []tls.Certificate{*c.Certificate}
	}
	lis, err := quic.ListenAddr("127.0.0.1:0", tlsConfig, &quic.Config{
		EnableDatagrams: true,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		lis:      lis,
		conf:     c,
		received: make(chan channel.Payload, 1024),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.wg.Add(1)
	go s.acceptLoop()
	t.Cleanup(s.Close)
	return s
}

// Addrは、サーバーのアドレスを返却します。
func (s *Server) Addr() string {
	return s.lis.Addr().String()
}

// Receivedは、サーバーが受信したアプリケーションデータを返却します。
func (s *Server) Received() <-chan channel.Payload {
	return s.received
}

// ConnCountは、サーバー側でハンドシェイクが完了したコネクションの数を返却します。
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// CloseConnectionsは、接続中の全てのコネクションをサーバー側から切断します。
func (s *Server) CloseConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		conn.CloseWithError(0, "server closed")
	}
	s.conns = nil
}

// Closeは、サーバーを停止します。
func (s *Server) Close() {
	s.cancel()
	s.CloseConnections()
	s.lis.Close()
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.lis.Accept(s.ctx)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		s.wg.Add(2)
		go s.serveStreams(conn)
		go s.serveDatagrams(conn)
	}
}

func (s *Server) serveStreams(conn quic.Connection) {
	defer s.wg.Done()
	if s.conf.PeerID != nil {
		stream, err := conn.OpenUniStreamSync(s.ctx)
		if err != nil {
			return
		}
		bs := make([]byte, 8)
		binary.BigEndian.PutUint64(bs, *s.conf.PeerID)
		if _, err := stream.Write(bs); err != nil {
			return
		}
		stream.Close()
	}
	for {
		stream, err := conn.AcceptUniStream(s.ctx)
		if err != nil {
			return
		}
		s.wg.Add(1)
		go s.serveStream(conn, stream)
	}
}

func (s *Server) serveStream(conn quic.Connection, rd quic.ReceiveStream) {
	defer s.wg.Done()
	id, err := channel.ReadHeader(rd)
	if err != nil {
		return
	}
	var wr quic.SendStream
	if s.conf.Echo {
		wr, err = conn.OpenUniStreamSync(s.ctx)
		if err != nil {
			return
		}
		defer wr.Close()
		if err := channel.WriteHeader(wr, id); err != nil {
			return
		}
	}
	for {
		bs, err := channel.ReadFrame(rd, channel.DefaultMaxFrameSize)
		if err != nil {
			if err != io.EOF {
				rd.CancelRead(0)
			}
			return
		}
		s.record(channel.Payload{Channel: id, Bytes: bs})
		if wr != nil {
			if _, err := channel.WriteFrame(wr, bs); err != nil {
				return
			}
		}
	}
}

func (s *Server) serveDatagrams(conn quic.Connection) {
	defer s.wg.Done()
	for {
		bs, err := conn.ReceiveDatagram(s.ctx)
		if err != nil {
			return
		}
		id, payload, err := channel.DecodeDatagram(bs)
		if err != nil {
			continue
		}
		s.record(channel.Payload{Channel: id, Bytes: payload})
		if s.conf.Echo {
			if err := conn.SendDatagram(bs); err != nil {
				return
			}
		}
	}
}

func (s *Server) record(p channel.Payload) {
	select {
	case s.received <- p:
	default:
	}
}
