package transport_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aptpod/quicnet-go/channel"
	. "github.com/aptpod/quicnet-go/transport"
)

func TestPipe(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Run("emit and receive", func(t *testing.T) {
		p, ep := NewPipe(PipeConfig{MessageQueueSize: 1, InternalQueueSize: 1, ControlQueueSize: 1})
		ctx := context.Background()

		require.True(t, ep.Emit(ctx, Connected{}))
		require.True(t, ep.EmitChannel(ctx, LostConnection{Channel: 1}))
		require.True(t, ep.Deliver(ctx, channel.Payload{Channel: 2, Bytes: []byte{1}}))

		assert.Equal(t, Connected{}, <-p.Envelopes)
		assert.Equal(t, LostConnection{Channel: 1}, <-p.ChannelEnvelopes)
		assert.Equal(t, channel.Payload{Channel: 2, Bytes: []byte{1}}, <-p.Payloads)

		p.Control <- channel.CloseRequest{ID: 3}
		assert.Equal(t, channel.CloseRequest{ID: 3}, <-ep.Control)
	})

	t.Run("emit suspends while the queue is full", func(t *testing.T) {
		p, ep := NewPipe(PipeConfig{InternalQueueSize: 1})
		ctx := context.Background()
		require.True(t, ep.Emit(ctx, Connected{}))

		done := make(chan bool)
		go func() {
			done <- ep.Emit(ctx, ConnectionClosed{})
		}()
		select {
		case <-done:
			t.Fatal("emit must not drop an envelope")
		case <-time.After(50 * time.Millisecond):
		}
		<-p.Envelopes
		assert.True(t, <-done)
		assert.Equal(t, ConnectionClosed{}, <-p.Envelopes)
	})

	t.Run("emit gives up on cancel", func(t *testing.T) {
		_, ep := NewPipe(PipeConfig{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, ep.Emit(ctx, Connected{}))
	})

	t.Run("emit discards after shutdown", func(t *testing.T) {
		p, ep := NewPipe(PipeConfig{InternalQueueSize: 1})
		assert.True(t, p.Shutdown())
		assert.False(t, p.Shutdown())
		assert.True(t, p.IsShutdown())
		assert.True(t, ep.IsShutdown())

		ctx := context.Background()
		assert.True(t, ep.Emit(ctx, Connected{}))
		assert.False(t, ep.Emit(ctx, Connected{}))
	})
}

func TestConnectionConfig_WithDefaults(t *testing.T) {
	got := NewConnectionConfig("example.com:6000")
	assert.Equal(t, "example.com", got.ServerName)
	assert.Equal(t, []string{DefaultALPN}, got.ALPN)
	assert.Equal(t, DefaultPeerIDTimeout, got.PeerIDTimeout)
	assert.Equal(t, 1, got.DialAttempts)
	assert.Equal(t, DefaultMaxIdleTimeout, got.MaxIdleTimeout)
	assert.Equal(t, DefaultShutdownGracePeriod, got.ShutdownGracePeriod)

	keep := ConnectionConfig{ServerAddress: "127.0.0.1:1", ServerName: "custom", DialAttempts: 3}.WithDefaults()
	assert.Equal(t, "custom", keep.ServerName)
	assert.Equal(t, 3, keep.DialAttempts)
}

func TestConnectionConfig_ResolveLocalAddress(t *testing.T) {
	tests := []struct {
		name   string
		config ConnectionConfig
		remote *net.UDPAddr
		want   string
	}{
		{name: "ipv4", remote: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}, want: "0.0.0.0:0"},
		{name: "ipv6", remote: &net.UDPAddr{IP: net.IPv6loopback}, want: "[::]:0"},
		{name: "explicit", config: ConnectionConfig{LocalAddress: "127.0.0.1:0"}, remote: &net.UDPAddr{IP: net.IPv6loopback}, want: "127.0.0.1:0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.ResolveLocalAddress(tt.remote))
		})
	}
}

func TestDriverFunc(t *testing.T) {
	var got ConnectionID
	var d Driver = DriverFunc(func(_ context.Context, id ConnectionID, _ Config, _ Endpoints) {
		got = id
	})
	d.Run(context.Background(), 42, Config{}, Endpoints{})
	assert.Equal(t, ConnectionID(42), got)
	assert.Equal(t, "42", got.String())
}
