package log

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type zapLogger struct {
	l *zap.Logger
}

// NewZapは、zapのロガーを使用するロガーを返却します。
//
// コンテキストのトラックIDは構造化フィールドとして出力します。
func NewZap(l *zap.Logger) Logger {
	return &zapLogger{l: l.WithOptions(zap.AddCallerSkip(1))}
}

func (l *zapLogger) Infof(ctx context.Context, format string, args ...any) {
	l.l.Info(fmt.Sprintf(format, args...), zapFields(ctx)...)
}

func (l *zapLogger) Warnf(ctx context.Context, format string, args ...any) {
	l.l.Warn(fmt.Sprintf(format, args...), zapFields(ctx)...)
}

func (l *zapLogger) Errorf(ctx context.Context, format string, args ...any) {
	l.l.Error(fmt.Sprintf(format, args...), zapFields(ctx)...)
}

func (l *zapLogger) Debugf(ctx context.Context, format string, args ...any) {
	l.l.Debug(fmt.Sprintf(format, args...), zapFields(ctx)...)
}

func zapFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if v := TrackConnectionID(ctx); v != "" {
		fields = append(fields, zap.String("track_connection_id", v))
	}
	if v := TrackSessionID(ctx); v != "" {
		fields = append(fields, zap.String("track_session_id", v))
	}
	return fields
}
