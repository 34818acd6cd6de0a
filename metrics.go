package main

import "sync/atomic"

// RoomMetrics tracks per-room counters for the /metrics endpoint. All
// fields are touched with atomics so readers never contend with the actor.
type RoomMetrics struct {
	TickCount      int64
	CommandCount   int64
	BroadcastCount int64
	TotalTickNs    int64
}

func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

func (m *RoomMetrics) IncCommand()   { atomic.AddInt64(&m.CommandCount, 1) }
func (m *RoomMetrics) IncBroadcast() { atomic.AddInt64(&m.BroadcastCount, 1) }

// Snapshot returns a read-only copy for HTTP output.
func (m *RoomMetrics) Snapshot() map[string]any {
	ticks := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if ticks > 0 {
		avgMs = float64(total) / float64(ticks) / 1e6
	}
	return map[string]any{
		"ticks":       ticks,
		"commands":    atomic.LoadInt64(&m.CommandCount),
		"broadcasts":  atomic.LoadInt64(&m.BroadcastCount),
		"avg_tick_ms": avgMs,
	}
}
