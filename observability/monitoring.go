package observability

import (
	"runtime"
	"sync/atomic"
)

// RelayStats aggregates the live counters for the heartbeat log
// and the debug inspect page.
type RelayStats struct {
	SessionsOpen   int64  `json:"sessions_open"`
	FramesRouted   uint64 `json:"frames_routed"`
	FramesDropped  uint64 `json:"frames_dropped"`
	RoutingErrors  uint64 `json:"routing_errors"`
	ProtocolErrors uint64 `json:"protocol_errors"`
	Censored       uint64 `json:"censored"`

	AllocMemMb uint64 `json:"alloc_mem_mb"`
	NumGC      uint32 `json:"num_gc"`
}

// MonitoringManager collects real-time telemetry from the routing path.
// All counters are atomic: the hot path never takes a lock here.
type MonitoringManager struct {
	sessionsOpen   atomic.Int64
	framesRouted   atomic.Uint64
	framesDropped  atomic.Uint64
	routingErrors  atomic.Uint64
	protocolErrors atomic.Uint64
	censored       atomic.Uint64
}

func NewMonitoringManager() *MonitoringManager {
	return &MonitoringManager{}
}

func (m *MonitoringManager) SessionOpened()   { m.sessionsOpen.Add(1) }
func (m *MonitoringManager) SessionClosed()   { m.sessionsOpen.Add(-1) }
func (m *MonitoringManager) FrameRouted()     { m.framesRouted.Add(1) }
func (m *MonitoringManager) FrameDropped()    { m.framesDropped.Add(1) }
func (m *MonitoringManager) RoutingError()    { m.routingErrors.Add(1) }
func (m *MonitoringManager) ProtocolError()   { m.protocolErrors.Add(1) }
func (m *MonitoringManager) MessageCensored() { m.censored.Add(1) }

// GetLatest snapshots the counters along with Go memory stats.
func (m *MonitoringManager) GetLatest() RelayStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return RelayStats{
		SessionsOpen:   m.sessionsOpen.Load(),
		FramesRouted:   m.framesRouted.Load(),
		FramesDropped:  m.framesDropped.Load(),
		RoutingErrors:  m.routingErrors.Load(),
		ProtocolErrors: m.protocolErrors.Load(),
		Censored:       m.censored.Load(),
		AllocMemMb:     ms.Alloc / 1024 / 1024,
		NumGC:          ms.NumGC,
	}
}
