package metrics

import (
	"sync/atomic"
	"time"
)

// Collector tracks worker counters without locks; the poller and executor
// update it from the tick goroutine, the exporter reads it from HTTP
// handlers.
type Collector struct {
	ticksTotal        atomic.Int64
	schedulesExecuted atomic.Int64
	actionsSucceeded  atomic.Int64
	actionsFailed     atomic.Int64

	lastTickAt       atomic.Value // time.Time
	lastTickDuration atomic.Int64 // milliseconds

	startedAt time.Time
}

func NewCollector() *Collector {
	c := &Collector{startedAt: time.Now()}
	c.lastTickAt.Store(time.Time{})
	return c
}

func (c *Collector) IncTicks() {
	c.ticksTotal.Add(1)
}

func (c *Collector) IncSchedulesExecuted(n int64) {
	c.schedulesExecuted.Add(n)
}

func (c *Collector) IncActionsSucceeded(n int64) {
	c.actionsSucceeded.Add(n)
}

func (c *Collector) IncActionsFailed(n int64) {
	c.actionsFailed.Add(n)
}

func (c *Collector) RecordTick(start time.Time) {
	c.lastTickAt.Store(time.Now())
	c.lastTickDuration.Store(time.Since(start).Milliseconds())
}

type Snapshot struct {
	TicksTotal        int64     `json:"ticks_total"`
	SchedulesExecuted int64     `json:"schedules_executed"`
	ActionsSucceeded  int64     `json:"actions_succeeded"`
	ActionsFailed     int64     `json:"actions_failed"`
	LastTickAt        time.Time `json:"last_tick_at"`
	LastTickDurMs     int64     `json:"last_tick_duration_ms"`
	UptimeSeconds     int64     `json:"uptime_seconds"`
}

func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		TicksTotal:        c.ticksTotal.Load(),
		SchedulesExecuted: c.schedulesExecuted.Load(),
		ActionsSucceeded:  c.actionsSucceeded.Load(),
		ActionsFailed:     c.actionsFailed.Load(),
		LastTickAt:        c.lastTickAt.Load().(time.Time),
		LastTickDurMs:     c.lastTickDuration.Load(),
		UptimeSeconds:     int64(time.Since(c.startedAt).Seconds()),
	}
}
