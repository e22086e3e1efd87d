package certificate

import (
	"context"
	"sync/atomic"

	"github.com/aptpod/quicnet-go/errors"
)

// Responderは、証明書の確認要求に対する一度きりの応答口です。
//
// 利用者はRespondを一度だけ呼び出します。応答せずに破棄した場合は、TOFUの待機時間が経過した時点でコネクションを中断します。
type Responder struct {
	used atomic.Bool
	ch   chan VerifierAction
}

// NewResponderは、未応答のResponderを返却します。
func NewResponder() *Responder {
	return &Responder{ch: make(chan VerifierAction, 1)}
}

// Respondは、アクションを応答します。2回目以降の呼び出しはErrResponderAlreadyUsedを返却します。
func (r *Responder) Respond(action VerifierAction) error {
	if !r.used.CompareAndSwap(false, true) {
		return errors.ErrResponderAlreadyUsed
	}
	r.ch <- action
	return nil
}

// Respondedは、応答済みかどうかを返却します。
func (r *Responder) Responded() bool {
	return r.used.Load()
}

// Waitは、応答を待機します。
func (r *Responder) Wait(ctx context.Context) (VerifierAction, error) {
	select {
	case a := <-r.ch:
		return a, nil
	case <-ctx.Done():
		return AbortConnection, ctx.Err()
	}
}
