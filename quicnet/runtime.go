package quicnet

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Runtimeは、コネクションドライバーを実行する非同期の実行環境です。
//
// Goに渡された関数は、呼び出し元をブロックせずに実行される必要があります。
type Runtime interface {
	Go(f func(ctx context.Context))
}

// RuntimeFuncは、関数をRuntimeとして扱うアダプターです。
type RuntimeFunc func(f func(ctx context.Context))

func (r RuntimeFunc) Go(f func(ctx context.Context)) {
	r(f)
}

// GroupRuntimeは、関数ごとにゴルーチンを起動するRuntimeです。
type GroupRuntime struct {
	ctx    context.Context
	cancel context.CancelFunc
	g      errgroup.Group
}

// NewRuntimeは、ctxを親とするGroupRuntimeを返却します。
func NewRuntime(ctx context.Context) *GroupRuntime {
	ctx, cancel := context.WithCancel(ctx)
	return &GroupRuntime{ctx: ctx, cancel: cancel}
}

func (r *GroupRuntime) Go(f func(ctx context.Context)) {
	r.g.Go(func() error {
		f(r.ctx)
		return nil
	})
}

// Shutdownは、実行中の全ての関数が終了するまで待機します。
//
// ctxが完了した場合は、実行中の関数のコンテキストをキャンセルしてから終了を待機します。
func (r *GroupRuntime) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.g.Wait()
	}()
	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		<-done
		return ctx.Err()
	}
}
