// Package metrics samples process runtime statistics for the health endpoint.
package metrics

import (
	"runtime"
	"time"
)

// RuntimeSnapshot holds a point-in-time reading of the process.
type RuntimeSnapshot struct {
	HeapAlloc  uint64        // bytes in use by the application
	Sys        uint64        // total bytes obtained from the OS
	NumGC      uint32        // number of completed GC cycles
	Goroutines int           // live goroutines
	Uptime     time.Duration // time since the collector was created
}

// RuntimeCollector reads runtime statistics relative to a start time.
type RuntimeCollector struct {
	started time.Time
	now     func() time.Time
}

// NewRuntimeCollector creates a collector whose uptime starts now.
func NewRuntimeCollector() *RuntimeCollector {
	return &RuntimeCollector{started: time.Now(), now: time.Now}
}

// Snapshot reads current runtime statistics.
func (rc *RuntimeCollector) Snapshot() RuntimeSnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeSnapshot{
		HeapAlloc:  m.HeapAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		Uptime:     rc.now().Sub(rc.started),
	}
}
