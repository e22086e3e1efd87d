package quicnet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/aptpod/quicnet-go/quicnet"
)

func TestConnectionState_String(t *testing.T) {
	tests := []struct {
		state ConnectionState
		want  string
	}{
		{state: ConnectionStateConnecting, want: "connecting"},
		{state: ConnectionStateConnected, want: "connected"},
		{state: ConnectionStateDisconnected, want: "disconnected"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}
