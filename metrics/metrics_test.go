package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/aptpod/quicnet-go/metrics"
)

func TestNoop(t *testing.T) {
	c := Noop()
	require.NotNil(t, c)
	c.ConnectionOpened()
	c.ConnectionClosed()
	c.EventPublished("connection_established")
	c.SetConnections("connected", 1)
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	c.ConnectionOpened()
	c.ConnectionOpened()
	c.ConnectionClosed()
	c.EventPublished("connection_lost")
	c.SetConnections("connected", 3)

	families := gather(t, reg)
	assert.Equal(t, 2.0, families["quicnet_client_connections_opened_total"].Metric[0].Counter.GetValue())
	assert.Equal(t, 1.0, families["quicnet_client_connections_closed_total"].Metric[0].Counter.GetValue())

	events := families["quicnet_client_events_total"]
	require.Len(t, events.Metric, 1)
	assert.Equal(t, "connection_lost", events.Metric[0].Label[0].GetValue())
	assert.Equal(t, 1.0, events.Metric[0].Counter.GetValue())

	connections := families["quicnet_client_connections"]
	require.Len(t, connections.Metric, 1)
	assert.Equal(t, 3.0, connections.Metric[0].Gauge.GetValue())
}

func TestPrometheusCollector_reusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusCollector(reg)
	require.NoError(t, err)
	again, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	first.ConnectionOpened()
	again.ConnectionOpened()

	families := gather(t, reg)
	assert.Equal(t, 2.0, families["quicnet_client_connections_opened_total"].Metric[0].Counter.GetValue())
}

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	res := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		res[mf.GetName()] = mf
	}
	return res
}
