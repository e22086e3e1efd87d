package transport

import (
	"sync"

	"github.com/aptpod/quicnet-go/channel"
)

// PipeConfigは、Pipeのキューの長さです。
type PipeConfig struct {
	// 受信したアプリケーションデータのキューの長さ
	MessageQueueSize int
	// エンベロープのキューの長さ
	InternalQueueSize int
	// チャネル制御メッセージのキューの長さ
	ControlQueueSize int
}

// Pipeは、同期側から見たキューの組です。対になるEndpointsはNewPipeが返却します。
type Pipe struct {
	Envelopes        <-chan Envelope
	ChannelEnvelopes <-chan ChannelEnvelope
	Payloads         <-chan channel.Payload
	Control          chan<- channel.SyncMessage

	once     sync.Once
	shutdown chan struct{}
}

// NewPipeは、Pipeと、ドライバーへ渡すEndpointsを生成します。
func NewPipe(c PipeConfig) (*Pipe, Endpoints) {
	envelopes := make(chan Envelope, c.InternalQueueSize)
	channelEnvelopes := make(chan ChannelEnvelope, c.InternalQueueSize)
	payloads := make(chan channel.Payload, c.MessageQueueSize)
	control := make(chan channel.SyncMessage, c.ControlQueueSize)
	shutdown := make(chan struct{})

	p := &Pipe{
		Envelopes:        envelopes,
		ChannelEnvelopes: channelEnvelopes,
		Payloads:         payloads,
		Control:          control,
		shutdown:         shutdown,
	}
	return p, Endpoints{
		Envelopes:        envelopes,
		ChannelEnvelopes: channelEnvelopes,
		Payloads:         payloads,
		Control:          control,
		Shutdown:         shutdown,
	}
}

// Shutdownは、ドライバーへシャットダウンを通知します。
//
// 通知は一度だけ行われ、初回の呼び出しのみtrueを返却します。
func (p *Pipe) Shutdown() bool {
	var first bool
	p.once.Do(func() {
		close(p.shutdown)
		first = true
	})
	return first
}

// IsShutdownは、シャットダウンを通知済みかどうかを返却します。
func (p *Pipe) IsShutdown() bool {
	select {
	case <-p.shutdown:
		return true
	default:
		return false
	}
}
