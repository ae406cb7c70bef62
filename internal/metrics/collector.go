// Package metrics provides in-memory pipeline timing statistics.
package metrics

import (
	"math"
	"sync"
	"time"
)

// StageMetrics holds aggregated metrics for a single pipeline stage.
type StageMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// StageSnapshot provides computed stats from raw metrics.
type StageSnapshot struct {
	Count       int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
}

// Snapshot represents the full run statistics at a point in time.
type Snapshot struct {
	ElapsedSeconds float64
	Fetch          *StageSnapshot
	Persona        *StageSnapshot
	Extraction     *StageSnapshot
	Ingestion      *StageSnapshot
	GraphQuery     *StageSnapshot
}

// Stage names for the collector.
const (
	OpFetch      = "fetch"
	OpPersona    = "persona"
	OpExtraction = "extraction"
	OpIngestion  = "ingestion"
	OpGraphQuery = "graph_query"
)

// Collector aggregates in-memory run statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*StageMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*StageMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for a stage.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *StageMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &StageMetrics{
			MinTime: time.Duration(math.MaxInt64),
		}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for a stage.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Time runs fn and records its wall time under op. The error passes through.
func (c *Collector) Time(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	c.RecordTiming(op, time.Since(start))
	return err
}

// snapshotOp creates a snapshot for a stage, returning nil if no data.
func snapshotOp(m *StageMetrics) *StageSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	return &StageSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		ElapsedSeconds: time.Since(c.startTime).Seconds(),
		Fetch:          snapshotOp(c.ops[OpFetch]),
		Persona:        snapshotOp(c.ops[OpPersona]),
		Extraction:     snapshotOp(c.ops[OpExtraction]),
		Ingestion:      snapshotOp(c.ops[OpIngestion]),
		GraphQuery:     snapshotOp(c.ops[OpGraphQuery]),
	}
}
