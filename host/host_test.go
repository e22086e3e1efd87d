package host_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/aptpod/quicnet-go/certificate"
	"github.com/aptpod/quicnet-go/channel"
	. "github.com/aptpod/quicnet-go/host"
	"github.com/aptpod/quicnet-go/quicnet"
	"github.com/aptpod/quicnet-go/quicnet/quicnettest"
	"github.com/aptpod/quicnet-go/transport"
)

const (
	interval    = 10 * time.Millisecond
	waitTimeout = 3 * time.Second
)

func openOnFirstTick(t *testing.T) TickFunc {
	opened := false
	return func(c *quicnet.Client, _ *quicnet.ConnectionWatcher) {
		if opened {
			return
		}
		opened = true
		_, err := c.OpenConnection(transport.NewConnectionConfig("127.0.0.1:6000"), certificate.SkipVerification(), channel.DefaultConfiguration())
		assert.NoError(t, err)
	}
}

func TestLoop_Tick(t *testing.T) {
	rt := &quicnettest.ManualRuntime{}
	d := &quicnettest.FakeDriver{}
	c := quicnet.NewClient(quicnet.WithClientRuntime(rt), quicnet.WithClientDriver(d))
	var q quicnet.EventQueue
	var justConnected []bool
	l := NewLoop(c, &q, LoopConfig{
		OnTick: func(c *quicnet.Client, w *quicnet.ConnectionWatcher) {
			justConnected = append(justConnected, w.JustConnected())
		},
	})

	_, err := c.OpenConnection(transport.NewConnectionConfig("127.0.0.1:6000"), certificate.SkipVerification(), channel.DefaultConfiguration())
	require.NoError(t, err)
	rt.RunPending(context.Background())
	l.Tick()
	d.MustConnection(0).Emit(transport.Connected{})
	l.Tick()
	l.Tick()

	assert.Equal(t, []bool{false, true, false}, justConnected)
	events := q.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, quicnet.EventKindConnectionEstablished, events[0].Kind())
}

func TestLoop_Run(t *testing.T) {
	defer goleak.VerifyNone(t)
	clk := clock.NewMock()
	ticks := make(chan struct{}, 16)
	c := quicnet.NewClient(quicnet.WithClientRuntime(&quicnettest.ManualRuntime{}), quicnet.WithClientDriver(&quicnettest.FakeDriver{}))
	l := NewLoop(c, nil, LoopConfig{
		Interval: interval,
		Clock:    clk,
		OnTick: func(*quicnet.Client, *quicnet.ConnectionWatcher) {
			ticks <- struct{}{}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()
	require.Eventually(t, func() bool {
		clk.Add(interval)
		select {
		case <-ticks:
			return true
		default:
			return false
		}
	}, waitTimeout, time.Millisecond)

	cancel()
	<-done
}

func TestLoop_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	clk := clock.NewMock()
	c := quicnet.NewClient(quicnet.WithClientRuntime(&quicnettest.ManualRuntime{}), quicnet.WithClientDriver(&quicnettest.FakeDriver{}))
	l := NewLoop(c, nil, LoopConfig{Interval: interval, Clock: clk})

	require.NoError(t, l.Stop(context.Background()))
	l.Start()
	l.Start()
	require.NoError(t, l.Stop(context.Background()))
	require.NoError(t, l.Stop(context.Background()))
}

func TestLoop_StartStop_repeated(t *testing.T) {
	defer goleak.VerifyNone(t)
	c := quicnet.NewClient(quicnet.WithClientRuntime(&quicnettest.ManualRuntime{}), quicnet.WithClientDriver(&quicnettest.FakeDriver{}))
	reused := NewLoop(c, nil, LoopConfig{Interval: time.Millisecond})

	for i := 0; i < 200; i++ {
		l := NewLoop(c, nil, LoopConfig{Interval: time.Millisecond})
		l.Start()
		require.NoError(t, l.Stop(context.Background()))
		<-l.Done()

		reused.Start()
		require.NoError(t, reused.Stop(context.Background()))
	}
}

func TestLoop_Stop_contextDone(t *testing.T) {
	defer goleak.VerifyNone(t)
	clk := clock.NewMock()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	c := quicnet.NewClient(quicnet.WithClientRuntime(&quicnettest.ManualRuntime{}), quicnet.WithClientDriver(&quicnettest.FakeDriver{}))
	l := NewLoop(c, nil, LoopConfig{
		Interval: interval,
		Clock:    clk,
		OnTick: func(*quicnet.Client, *quicnet.ConnectionWatcher) {
			once.Do(func() { close(entered) })
			<-release
		},
	})

	select {
	case <-l.Done():
	default:
		t.Fatal("Done of a loop never started must be closed")
	}

	l.Start()
	require.Eventually(t, func() bool {
		clk.Add(interval)
		select {
		case <-entered:
			return true
		default:
			return false
		}
	}, waitTimeout, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Stop(ctx), context.DeadlineExceeded)
	select {
	case <-l.Done():
		t.Fatal("loop finished while a tick is running")
	default:
	}
	// 停止処理中は新しいゴルーチンを開始しない
	l.Start()

	close(release)
	select {
	case <-l.Done():
	case <-time.After(waitTimeout):
		t.Fatal("loop did not finish")
	}
	require.NoError(t, l.Stop(context.Background()))
}

func TestModule(t *testing.T) {
	defer goleak.VerifyNone(t)
	clk := clock.NewMock()
	d := &quicnettest.FakeDriver{}
	events := make(chan quicnet.Event, 16)
	var client *quicnet.Client

	app := fxtest.New(t,
		Module,
		ClientOption(quicnet.WithClientDriver(d)),
		fx.Supply(
			LoopConfig{Interval: interval, Clock: clk, OnTick: openOnFirstTick(t)},
			zap.NewNop(),
		),
		fx.Provide(func() quicnet.EventSink {
			return quicnet.EventSinkFunc(func(ev quicnet.Event) { events <- ev })
		}),
		fx.Populate(&client),
	)
	app.RequireStart()

	var fc *quicnettest.FakeConnection
	require.Eventually(t, func() bool {
		clk.Add(interval)
		var ok bool
		fc, ok = d.Connection(0)
		return ok
	}, waitTimeout, time.Millisecond)

	require.True(t, fc.Emit(transport.Connected{}))
	var got quicnet.Event
	require.Eventually(t, func() bool {
		clk.Add(interval)
		select {
		case got = <-events:
			return true
		default:
			return false
		}
	}, waitTimeout, time.Millisecond)
	assert.Equal(t, quicnet.EventKindConnectionEstablished, got.Kind())
	assert.Equal(t, transport.ConnectionID(0), got.ConnectionID())

	app.RequireStop()
	assert.True(t, fc.IsShutdown())
	assert.Equal(t, 0, client.Len())
}

func TestModule_stopTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)
	clk := clock.NewMock()
	d := &quicnettest.FakeDriver{}
	release := make(chan struct{})
	open := openOnFirstTick(t)

	app := fxtest.New(t,
		Module,
		ClientOption(quicnet.WithClientDriver(d)),
		fx.Supply(LoopConfig{
			Interval: interval,
			Clock:    clk,
			OnTick: func(c *quicnet.Client, w *quicnet.ConnectionWatcher) {
				open(c, w)
				<-release
			},
		}),
	)
	app.RequireStart()

	var fc *quicnettest.FakeConnection
	require.Eventually(t, func() bool {
		clk.Add(interval)
		var ok bool
		fc, ok = d.Connection(0)
		return ok
	}, waitTimeout, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, app.Stop(ctx))
	// ティックが終わるまでClientは閉じない
	assert.False(t, fc.IsShutdown())

	close(release)
	require.Eventually(t, fc.IsShutdown, waitTimeout, time.Millisecond)
}
