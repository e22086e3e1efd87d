package log

import (
	"context"

	"github.com/rs/zerolog"
)

type zerologLogger struct {
	l zerolog.Logger
}

// NewZerologは、zerologのロガーを使用するロガーを返却します。
func NewZerolog(l zerolog.Logger) Logger {
	return &zerologLogger{l: l}
}

func (l *zerologLogger) Infof(ctx context.Context, format string, args ...any) {
	l.event(ctx, l.l.Info()).Msgf(format, args...)
}

func (l *zerologLogger) Warnf(ctx context.Context, format string, args ...any) {
	l.event(ctx, l.l.Warn()).Msgf(format, args...)
}

func (l *zerologLogger) Errorf(ctx context.Context, format string, args ...any) {
	l.event(ctx, l.l.Error()).Msgf(format, args...)
}

func (l *zerologLogger) Debugf(ctx context.Context, format string, args ...any) {
	l.event(ctx, l.l.Debug()).Msgf(format, args...)
}

func (l *zerologLogger) event(ctx context.Context, ev *zerolog.Event) *zerolog.Event {
	if v := TrackConnectionID(ctx); v != "" {
		ev = ev.Str("track_connection_id", v)
	}
	if v := TrackSessionID(ctx); v != "" {
		ev = ev.Str("track_session_id", v)
	}
	return ev
}
