package quicnet

// EventSinkは、Updateが発行するイベントの書き込み先です。
type EventSink interface {
	Publish(ev Event)
}

// EventSinkFuncは、関数をEventSinkとして扱うアダプターです。
type EventSinkFunc func(ev Event)

func (f EventSinkFunc) Publish(ev Event) {
	f(ev)
}

// EventQueueは、発行されたイベントを順番に保持するEventSinkです。
type EventQueue struct {
	events []Event
}

func (q *EventQueue) Publish(ev Event) {
	q.events = append(q.events, ev)
}

// Drainは、保持している全てのイベントを返却し、キューを空にします。
func (q *EventQueue) Drain() []Event {
	res := q.events
	q.events = nil
	return res
}

// Lenは、保持しているイベント数を返却します。
func (q *EventQueue) Len() int {
	return len(q.events)
}

type (
	nopConnectionEstablishedEventHandler struct{}
	nopConnectionFailedEventHandler      struct{}
	nopConnectionLostEventHandler        struct{}
	nopCertInteractionEventHandler       struct{}
	nopCertTrustUpdateEventHandler       struct{}
	nopCertAbortEventHandler             struct{}
)

func (nopConnectionEstablishedEventHandler) OnConnectionEstablished(*ConnectionEstablishedEvent) {}
func (nopConnectionFailedEventHandler) OnConnectionFailed(*ConnectionFailedEvent)                {}
func (nopConnectionLostEventHandler) OnConnectionLost(*ConnectionLostEvent)                      {}
func (nopCertInteractionEventHandler) OnCertInteraction(*CertInteractionEvent)                   {}
func (nopCertTrustUpdateEventHandler) OnCertTrustUpdate(*CertTrustUpdateEvent)                   {}
func (nopCertAbortEventHandler) OnCertAbort(*CertAbortEvent)                                     {}

// ConnectionEstablishedEventHandlerは、コネクションが確立した時のイベントハンドラです。
type ConnectionEstablishedEventHandler interface {
	OnConnectionEstablished(ev *ConnectionEstablishedEvent)
}

// ConnectionEstablishedEventHandlerFuncは、ConnectionEstablishedEventHandlerの関数です。
type ConnectionEstablishedEventHandlerFunc func(ev *ConnectionEstablishedEvent)

func (f ConnectionEstablishedEventHandlerFunc) OnConnectionEstablished(ev *ConnectionEstablishedEvent) {
	f(ev)
}

// ConnectionFailedEventHandlerは、コネクションの確立に失敗した時のイベントハンドラです。
type ConnectionFailedEventHandler interface {
	OnConnectionFailed(ev *ConnectionFailedEvent)
}

// ConnectionFailedEventHandlerFuncは、ConnectionFailedEventHandlerの関数です。
type ConnectionFailedEventHandlerFunc func(ev *ConnectionFailedEvent)

func (f ConnectionFailedEventHandlerFunc) OnConnectionFailed(ev *ConnectionFailedEvent) {
	f(ev)
}

// ConnectionLostEventHandlerは、コネクションが切断された時のイベントハンドラです。
type ConnectionLostEventHandler interface {
	OnConnectionLost(ev *ConnectionLostEvent)
}

// ConnectionLostEventHandlerFuncは、ConnectionLostEventHandlerの関数です。
type ConnectionLostEventHandlerFunc func(ev *ConnectionLostEvent)

func (f ConnectionLostEventHandlerFunc) OnConnectionLost(ev *ConnectionLostEvent) {
	f(ev)
}

// CertInteractionEventHandlerは、証明書の判定を問い合わせられた時のイベントハンドラです。
type CertInteractionEventHandler interface {
	OnCertInteraction(ev *CertInteractionEvent)
}

// CertInteractionEventHandlerFuncは、CertInteractionEventHandlerの関数です。
type CertInteractionEventHandlerFunc func(ev *CertInteractionEvent)

func (f CertInteractionEventHandlerFunc) OnCertInteraction(ev *CertInteractionEvent) {
	f(ev)
}

// CertTrustUpdateEventHandlerは、known hostsが更新された時のイベントハンドラです。
type CertTrustUpdateEventHandler interface {
	OnCertTrustUpdate(ev *CertTrustUpdateEvent)
}

// CertTrustUpdateEventHandlerFuncは、CertTrustUpdateEventHandlerの関数です。
type CertTrustUpdateEventHandlerFunc func(ev *CertTrustUpdateEvent)

func (f CertTrustUpdateEventHandlerFunc) OnCertTrustUpdate(ev *CertTrustUpdateEvent) {
	f(ev)
}

// CertAbortEventHandlerは、証明書が拒否された時のイベントハンドラです。
type CertAbortEventHandler interface {
	OnCertAbort(ev *CertAbortEvent)
}

// CertAbortEventHandlerFuncは、CertAbortEventHandlerの関数です。
type CertAbortEventHandlerFunc func(ev *CertAbortEvent)

func (f CertAbortEventHandlerFunc) OnCertAbort(ev *CertAbortEvent) {
	f(ev)
}

// EventHandlersは、イベントの種類ごとにハンドラを呼び出すEventSinkです。
//
// 設定されていないハンドラのイベントは破棄します。
type EventHandlers struct {
	ConnectionEstablished ConnectionEstablishedEventHandler
	ConnectionFailed      ConnectionFailedEventHandler
	ConnectionLost        ConnectionLostEventHandler
	CertInteraction       CertInteractionEventHandler
	CertTrustUpdate       CertTrustUpdateEventHandler
	CertAbort             CertAbortEventHandler
}

// NewEventHandlersは、全てのハンドラが何もしないEventHandlersを返却します。
func NewEventHandlers() *EventHandlers {
	return &EventHandlers{
		ConnectionEstablished: nopConnectionEstablishedEventHandler{},
		ConnectionFailed:      nopConnectionFailedEventHandler{},
		ConnectionLost:        nopConnectionLostEventHandler{},
		CertInteraction:       nopCertInteractionEventHandler{},
		CertTrustUpdate:       nopCertTrustUpdateEventHandler{},
		CertAbort:             nopCertAbortEventHandler{},
	}
}

func (h *EventHandlers) Publish(ev Event) {
	switch ev := ev.(type) {
	case *ConnectionEstablishedEvent:
		if h.ConnectionEstablished != nil {
			h.ConnectionEstablished.OnConnectionEstablished(ev)
		}
	case *ConnectionFailedEvent:
		if h.ConnectionFailed != nil {
			h.ConnectionFailed.OnConnectionFailed(ev)
		}
	case *ConnectionLostEvent:
		if h.ConnectionLost != nil {
			h.ConnectionLost.OnConnectionLost(ev)
		}
	case *CertInteractionEvent:
		if h.CertInteraction != nil {
			h.CertInteraction.OnCertInteraction(ev)
		}
	case *CertTrustUpdateEvent:
		if h.CertTrustUpdate != nil {
			h.CertTrustUpdate.OnCertTrustUpdate(ev)
		}
	case *CertAbortEvent:
		if h.CertAbort != nil {
			h.CertAbort.OnCertAbort(ev)
		}
	}
}
