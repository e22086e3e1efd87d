package quicnet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aptpod/quicnet-go/certificate"
	"github.com/aptpod/quicnet-go/channel"
	. "github.com/aptpod/quicnet-go/quicnet"
	"github.com/aptpod/quicnet-go/quicnet/quicnettest"
	"github.com/aptpod/quicnet-go/transport"
)

type testee struct {
	*Client
	runtime *quicnettest.ManualRuntime
	driver  *quicnettest.FakeDriver
}

func newTestee(t *testing.T, opts ...ClientOption) *testee {
	t.Helper()
	rt := &quicnettest.ManualRuntime{}
	d := &quicnettest.FakeDriver{}
	opts = append([]ClientOption{WithClientRuntime(rt), WithClientDriver(d)}, opts...)
	return &testee{Client: NewClient(opts...), runtime: rt, driver: d}
}

func (tt *testee) open(t *testing.T) transport.ConnectionID {
	t.Helper()
	id, err := tt.OpenConnection(transport.NewConnectionConfig("127.0.0.1:6000"), certificate.SkipVerification(), channel.DefaultConfiguration())
	require.NoError(t, err)
	return id
}

// fakeは、登録済みのドライバーを実行しFakeConnectionを返却します。
func (tt *testee) fake(t *testing.T, id transport.ConnectionID) *quicnettest.FakeConnection {
	t.Helper()
	tt.runtime.RunPending(context.Background())
	fc, ok := tt.driver.Connection(id)
	require.True(t, ok)
	return fc
}

func (tt *testee) tick() []Event {
	var q EventQueue
	tt.Update(&q)
	return q.Drain()
}
