package log_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	. "github.com/aptpod/quicnet-go/log"
)

func Test_zapLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	testee := NewZap(zap.New(core))
	ctx := WithTrackConnectionID(context.Background(), 3)

	testee.Infof(ctx, "message %d", 1)
	testee.Warnf(ctx, "message %d", 2)
	testee.Errorf(ctx, "message %d", 3)
	testee.Debugf(context.Background(), "message %d", 4)

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, "message 1", entries[0].Message)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "3", entries[2].ContextMap()["track_connection_id"])
	assert.Empty(t, entries[3].Context)
}

func Test_zerologLogger(t *testing.T) {
	var buf bytes.Buffer
	testee := NewZerolog(zerolog.New(&buf))
	ctx := WithTrackConnectionID(context.Background(), 5)

	testee.Infof(ctx, "message %s", "info")
	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), `"track_connection_id":"5"`)
	assert.Contains(t, buf.String(), `"message":"message info"`)

	buf.Reset()
	require.NotPanics(t, func() {
		testee.Warnf(ctx, "message")
		testee.Errorf(ctx, "message")
		testee.Debugf(ctx, "message")
	})
}
