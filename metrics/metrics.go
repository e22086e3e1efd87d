/*
Package metrics は、クライアントのコネクション数やイベント数を収集するコレクターを提供するパッケージです。
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quicnet"

// Collectorは、レジストリとブリッジが通知するメトリクスを収集します。
//
// 呼び出しはティックごとの処理の中で行われるため、実装はブロックしてはいけません。
type Collector interface {
	// ConnectionOpenedは、コネクションを登録したことを通知します。
	ConnectionOpened()
	// ConnectionClosedは、コネクションを登録解除したことを通知します。
	ConnectionClosed()
	// EventPublishedは、イベントを発行したことを通知します。
	EventPublished(kind string)
	// SetConnectionsは、状態ごとのコネクション数を通知します。
	SetConnections(state string, n int)
}

type noopCollector struct{}

// Noopは、全てのメトリクスを破棄するCollectorを返却します。
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) ConnectionOpened()          {}
func (noopCollector) ConnectionClosed()          {}
func (noopCollector) EventPublished(string)      {}
func (noopCollector) SetConnections(string, int) {}

// PrometheusCollectorは、メトリクスをPrometheusで公開するCollectorです。
type PrometheusCollector struct {
	opened      prometheus.Counter
	closed      prometheus.Counter
	events      *prometheus.CounterVec
	connections *prometheus.GaugeVec
}

// NewPrometheusCollectorは、regへメトリクスを登録したPrometheusCollectorを返却します。
//
// regがnilの場合はprometheus.DefaultRegistererを使用します。登録済みのメトリクスは再利用します。
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	opened, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "connections_opened_total",
		Help:      "Number of connections registered in the client.",
	}))
	if err != nil {
		return nil, err
	}
	closed, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "connections_closed_total",
		Help:      "Number of connections removed from the client.",
	}))
	if err != nil {
		return nil, err
	}
	events, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "events_total",
		Help:      "Number of events published by the sync bridge per kind.",
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}
	connections, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "connections",
		Help:      "Number of registered connections per state observed in the last tick.",
	}, []string{"state"}))
	if err != nil {
		return nil, err
	}
	return &PrometheusCollector{
		opened:      opened,
		closed:      closed,
		events:      events,
		connections: connections,
	}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return c, err
		}
		existing, ok := already.ExistingCollector.(T)
		if !ok {
			return c, err
		}
		return existing, nil
	}
	return c, nil
}

func (p *PrometheusCollector) ConnectionOpened() {
	p.opened.Inc()
}

func (p *PrometheusCollector) ConnectionClosed() {
	p.closed.Inc()
}

func (p *PrometheusCollector) EventPublished(kind string) {
	p.events.WithLabelValues(kind).Inc()
}

func (p *PrometheusCollector) SetConnections(state string, n int) {
	p.connections.WithLabelValues(state).Set(float64(n))
}
