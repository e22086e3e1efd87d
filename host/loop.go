/*
Package host は、quicnetのClientをホストのティックループへ組み込む機能を提供します。

Clientはゴルーチンセーフではないため、Clientの操作は全てTickFuncの中で行います。
*/
package host

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/aptpod/quicnet-go/log"
	"github.com/aptpod/quicnet-go/quicnet"
)

// DefaultTickIntervalは、ティックの間隔のデフォルト値です。
const DefaultTickInterval = 16 * time.Millisecond

// TickFuncは、ティックごとにUpdateの後で呼び出される関数です。
type TickFunc func(c *quicnet.Client, w *quicnet.ConnectionWatcher)

// LoopConfigは、Loopの設定です。
type LoopConfig struct {
	// ティックの間隔
	Interval time.Duration
	// ティックに使用するクロック
	Clock clock.Clock
	// ロガー
	Logger log.Logger
	// ティックごとに呼び出す関数
	OnTick TickFunc
}

// Loopは、一定間隔でClientのUpdateを呼び出すティックループです。
type Loop struct {
	client *quicnet.Client
	sink   quicnet.EventSink
	config LoopConfig

	watcher quicnet.ConnectionWatcher

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoopは、Loopを返却します。sinkがnilの場合、発行されたイベントは破棄します。
func NewLoop(client *quicnet.Client, sink quicnet.EventSink, c LoopConfig) *Loop {
	if sink == nil {
		sink = quicnet.EventSinkFunc(func(quicnet.Event) {})
	}
	if c.Interval <= 0 {
		c.Interval = DefaultTickInterval
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Logger == nil {
		c.Logger = log.NewNop()
	}
	return &Loop{client: client, sink: sink, config: c}
}

// Tickは、1ティック分の処理を行います。
func (l *Loop) Tick() {
	l.client.Update(l.sink)
	l.watcher.Observe(l.client)
	if l.watcher.JustConnected() {
		l.config.Logger.Infof(context.Background(), "Default connection established")
	}
	if l.watcher.JustDisconnected() {
		l.config.Logger.Infof(context.Background(), "Default connection disconnected")
	}
	if l.config.OnTick != nil {
		l.config.OnTick(l.client, &l.watcher)
	}
}

// Runは、ctxが完了するまでティックループを実行します。
func (l *Loop) Run(ctx context.Context) {
	l.run(ctx, l.config.Clock.Ticker(l.config.Interval))
}

func (l *Loop) run(ctx context.Context, ticker *clock.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Startは、バックグラウンドでティックループを開始します。開始済みまたは停止処理中の場合は何もしません。
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	ticker := l.config.Clock.Ticker(l.config.Interval)
	done := make(chan struct{})
	l.cancel, l.done = cancel, done
	go func() {
		defer close(done)
		l.run(ctx, ticker)
	}()
}

// Stopは、ティックループを停止し、終了を待機します。
//
// ctxが先に完了した場合はctx.Err()を返却します。実行中のティックはその後も続くため、終了はDoneで待機するか、再度Stopを呼び出します。
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		l.mu.Lock()
		if l.done == done {
			l.cancel = nil
		}
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Doneは、バックグラウンドのティックループが終了するとクローズされるチャネルを返却します。
// 一度も開始していない場合は、クローズ済みのチャネルを返却します。
func (l *Loop) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done == nil {
		return closedCh
	}
	return l.done
}

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()
