package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
)

var (
	randFloat64         = rand.Float64
	defaultBaseInterval = 100 * time.Millisecond
	defaultMaxInterval  = 5 * time.Second
)

// RetryはExponential Backoff and Jitter方式のリトライを行います。
//
// Jitterは 0.5 ~ 1.5のランダム値です。
type Retry struct {
	// 最大試行回数。0は成功するまで試行し続けます。デフォルトは0です。
	MaxAttempt int

	// 基準リトライ間隔。デフォルトは100ミリ秒です。
	BaseInterval time.Duration

	// 最大基準リトライ間隔。デフォルトは5秒です。
	MaxBaseInterval time.Duration

	// 待機に使用する時計。nilの場合は実時間を使用します。
	Clock clock.Clock
}

// RetryFuncは、リトライを実施する関数です。
type RetryFunc func(ctx context.Context) (end bool)

// Doは、fがtrueを返却するか、試行回数が上限に達するまでfを実行します。
//
// 待機中にctxが完了した場合はctx.Err()を返却します。
func (r Retry) Do(ctx context.Context, f RetryFunc) error {
	baseInterval := r.BaseInterval
	if baseInterval == 0 {
		baseInterval = defaultBaseInterval
	}
	maxBaseInterval := r.MaxBaseInterval
	if maxBaseInterval == 0 {
		maxBaseInterval = defaultMaxInterval
	}
	clk := r.Clock
	if clk == nil {
		clk = clock.New()
	}
	var attempt int
	for {
		if f(ctx) {
			return nil
		}
		attempt++
		if r.MaxAttempt != 0 && attempt >= r.MaxAttempt {
			return nil
		}
		timer := clk.Timer(nextSleep(attempt-1, baseInterval, maxBaseInterval))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func nextSleep(count int, base, max time.Duration) time.Duration {
	baseInterval := float64(base) * math.Pow(2, float64(count))
	if baseInterval > float64(max) {
		baseInterval = float64(max)
	}

	jitter := 0.5 + randFloat64()
	return time.Duration(baseInterval * jitter)
}

func Do(ctx context.Context, f RetryFunc) error {
	retry := Retry{}
	return retry.Do(ctx, f)
}
