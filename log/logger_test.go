package log_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	. "github.com/aptpod/quicnet-go/log"
)

func Test_genTrackID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := GenTrackID()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		require.NotContains(t, seen, id)
		seen[id] = struct{}{}
	}
}

func TestTrackConnectionID(t *testing.T) {
	ctx := context.Background()
	require.Empty(t, TrackConnectionID(ctx))
	ctx = WithTrackConnectionID(ctx, 42)
	require.Equal(t, "42", TrackConnectionID(ctx))
}

func TestTrackSessionID(t *testing.T) {
	ctx := context.Background()
	require.Empty(t, TrackSessionID(ctx))
	ctx = WithTrackSessionID(ctx)
	_, err := uuid.Parse(TrackSessionID(ctx))
	require.NoError(t, err)
}
