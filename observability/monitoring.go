package observability

import "sync/atomic"

// Monitoring aggregates realtime delivery counters. Incremented from
// connection-handling goroutines, read by the periodic reporter worker.
type Monitoring struct {
	messagesStored  atomic.Uint64
	pushesDelivered atomic.Uint64
	pushesDropped   atomic.Uint64
	sendsRejected   atomic.Uint64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	MessagesStored  uint64 `json:"messages_stored"`
	PushesDelivered uint64 `json:"pushes_delivered"`
	PushesDropped   uint64 `json:"pushes_dropped"`
	SendsRejected   uint64 `json:"sends_rejected"`
}

func NewMonitoring() *Monitoring { return &Monitoring{} }

func (m *Monitoring) IncrMessagesStored()  { m.messagesStored.Add(1) }
func (m *Monitoring) IncrPushesDelivered() { m.pushesDelivered.Add(1) }
func (m *Monitoring) IncrPushesDropped()   { m.pushesDropped.Add(1) }
func (m *Monitoring) IncrSendsRejected()   { m.sendsRejected.Add(1) }

func (m *Monitoring) GetLatest() Snapshot {
	return Snapshot{
		MessagesStored:  m.messagesStored.Load(),
		PushesDelivered: m.pushesDelivered.Load(),
		PushesDropped:   m.pushesDropped.Load(),
		SendsRejected:   m.sendsRejected.Load(),
	}
}
