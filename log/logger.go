package log

import (
	"context"
	"strconv"
	"strings"

	uuid "github.com/google/uuid"
)

// Loggerは、quicnet-go内で使用するロガーインターフェースです。
type Logger interface {
	Infof(context.Context, string, ...interface{})
	Warnf(context.Context, string, ...interface{})
	Errorf(context.Context, string, ...interface{})
	Debugf(context.Context, string, ...interface{})
}

type trackKey int

const (
	trackConnectionIDKey trackKey = iota
	trackSessionIDKey
)

// WithTrackConnectionIDは、コネクションIDをコンテキストにセットします。
//
// ここで設定されたコネクションIDは常にログ出力します。
func WithTrackConnectionID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, trackConnectionIDKey, strconv.FormatUint(id, 10))
}

// TrackConnectionIDは、コンテキストにセットされたコネクションIDを取得します。
func TrackConnectionID(ctx context.Context) string {
	v, ok := ctx.Value(trackConnectionIDKey).(string)
	if !ok {
		return ""
	}
	return v
}

// WithTrackSessionIDは、新たにセッションIDを採番しコンテキストにセットします。
//
// セッションIDはドライバーが起動したタイミングでセットします。
// 同じコネクションIDでも、ドライバーの実行ごとに異なるIDとなります。
func WithTrackSessionID(ctx context.Context) context.Context {
	return context.WithValue(ctx, trackSessionIDKey, genTrackID())
}

// TrackSessionIDは、コンテキストにセットされたセッションIDを取得します。
func TrackSessionID(ctx context.Context) string {
	v, ok := ctx.Value(trackSessionIDKey).(string)
	if !ok {
		return ""
	}
	return v
}

func genTrackID() string {
	return uuid.NewString()
}

func trackPrefix(ctx context.Context) string {
	var b strings.Builder
	if cID := TrackConnectionID(ctx); cID != "" {
		b.WriteString("track-connection-id:" + cID + "\t")
	}
	if sID := TrackSessionID(ctx); sID != "" {
		b.WriteString("track-session-id:" + sID + "\t")
	}
	return b.String()
}
