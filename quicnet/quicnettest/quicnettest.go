/*
Package quicnettest は、quicnetのClientを同期的にテストするためのRuntimeとDriverを提供します。
*/
package quicnettest

import (
	"context"
	"sync"

	"github.com/aptpod/quicnet-go/channel"
	"github.com/aptpod/quicnet-go/internal/ch"
	"github.com/aptpod/quicnet-go/transport"
)

// ManualRuntimeは、Goに渡された関数をRunPendingの呼び出しまで保留するRuntimeです。
type ManualRuntime struct {
	mu      sync.Mutex
	pending []func(context.Context)
}

func (r *ManualRuntime) Go(f func(ctx context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, f)
}

// Pendingは、保留中の関数の数を返却します。
func (r *ManualRuntime) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// RunPendingは、保留中の関数を登録順に呼び出し元のゴルーチンで実行し、実行した数を返却します。
func (r *ManualRuntime) RunPending(ctx context.Context) int {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()
	for _, f := range pending {
		f(ctx)
	}
	return len(pending)
}

// FakeDriverは、Runに渡されたEndpointsを記録するだけのDriverです。
//
// テストはFakeConnectionを通してエンベロープを送信します。
type FakeDriver struct {
	mu    sync.Mutex
	conns map[transport.ConnectionID]*FakeConnection
}

// FakeConnectionは、FakeDriverが記録した1回分のRunです。
type FakeConnection struct {
	ID        transport.ConnectionID
	Config    transport.Config
	Endpoints transport.Endpoints
}

func (d *FakeDriver) Run(_ context.Context, id transport.ConnectionID, c transport.Config, ep transport.Endpoints) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conns == nil {
		d.conns = make(map[transport.ConnectionID]*FakeConnection)
	}
	d.conns[id] = &FakeConnection{ID: id, Config: c, Endpoints: ep}
}

// Connectionは、IDに対応するFakeConnectionを返却します。
func (d *FakeDriver) Connection(id transport.ConnectionID) (*FakeConnection, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fc, ok := d.conns[id]
	return fc, ok
}

// MustConnectionは、Connectionと同様ですが、存在しない場合はpanicします。
func (d *FakeDriver) MustConnection(id transport.ConnectionID) *FakeConnection {
	fc, ok := d.Connection(id)
	if !ok {
		panic("quicnettest: driver has not run for the connection")
	}
	return fc
}

// Emitは、トランスポートのエンベロープを送信します。キューが一杯の場合はfalseを返却します。
func (fc *FakeConnection) Emit(e transport.Envelope) bool {
	return ch.TryWrite(e, fc.Endpoints.Envelopes)
}

// EmitChannelは、チャネルのエンベロープを送信します。キューが一杯の場合はfalseを返却します。
func (fc *FakeConnection) EmitChannel(e transport.ChannelEnvelope) bool {
	return ch.TryWrite(e, fc.Endpoints.ChannelEnvelopes)
}

// Deliverは、受信データを送信します。キューが一杯の場合はfalseを返却します。
func (fc *FakeConnection) Deliver(p channel.Payload) bool {
	return ch.TryWrite(p, fc.Endpoints.Payloads)
}

// Controlは、同期側から送られたチャネル制御メッセージを全て読み出します。
func (fc *FakeConnection) Control() []channel.SyncMessage {
	var res []channel.SyncMessage
	for {
		m, ok := ch.TryRead(fc.Endpoints.Control)
		if !ok {
			return res
		}
		res = append(res, m)
	}
}

// IsShutdownは、シャットダウンが通知されたかどうかを返却します。
func (fc *FakeConnection) IsShutdown() bool {
	return fc.Endpoints.IsShutdown()
}
