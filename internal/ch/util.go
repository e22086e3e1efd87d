package ch

import "context"

// WriteOrDoneは、cへvを書き込みます。書き込む前にctxが完了した場合はfalseを返却します。
func WriteOrDone[T any](ctx context.Context, v T, c chan<- T) bool {
	select {
	case c <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// TryWriteは、ブロックせずにcへvを書き込みます。キューが一杯の場合はfalseを返却します。
func TryWrite[T any](v T, c chan<- T) bool {
	select {
	case c <- v:
		return true
	default:
		return false
	}
}

// TryReadは、ブロックせずにcから1件読み出します。
//
// キューが空、またはクローズされている場合はokにfalseを返却します。
func TryRead[T any](c <-chan T) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	default:
		return v, false
	}
}

func ReadOrDoneOne[T any](ctx context.Context, c <-chan T) (T, bool) {
	var t T
	select {
	case <-ctx.Done():
		return t, false
	case v, ok := <-c:
		if !ok {
			return t, false
		}
		return v, true
	}
}
