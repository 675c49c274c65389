// Package aggregator computes time-windowed session metrics from the entry
// stream: throughput, per-level and per-terminal counts.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/rkot1/rtt-viewer/internal/model"
)

// epsWindow is the sliding window EPS is computed over.
const epsWindow = 5 * time.Second

// Stats holds a point-in-time snapshot of aggregated metrics.
type Stats struct {
	Uptime         string           `json:"uptime"`
	TotalEvents    int64            `json:"total_events"`
	EPS            float64          `json:"eps"`
	LevelCounts    map[string]int64 `json:"level_counts"`
	TerminalCounts map[int]int64    `json:"terminal_counts"`
	DroppedEntries int64            `json:"dropped_entries"`
}

// Aggregator subscribes to the Hub and computes metrics over the accepted
// entry stream.
type Aggregator struct {
	mu          sync.RWMutex
	startTime   time.Time
	totalEvents int64
	levelCounts map[string]int64
	termCounts  map[int]int64
	window      []time.Time
	dropped     func() int64
	entries     <-chan model.LogEntry
}

// New creates an Aggregator reading from a Hub subscriber channel. droppedFn
// provides the hub's live drop counter.
func New(entries <-chan model.LogEntry, droppedFn func() int64) *Aggregator {
	return &Aggregator{
		startTime:   time.Now(),
		levelCounts: make(map[string]int64),
		termCounts:  make(map[int]int64),
		dropped:     droppedFn,
		entries:     entries,
	}
}

// Snapshot returns the current metrics.
func (a *Aggregator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	levels := make(map[string]int64, len(a.levelCounts))
	for k, v := range a.levelCounts {
		levels[k] = v
	}
	terms := make(map[int]int64, len(a.termCounts))
	for k, v := range a.termCounts {
		terms[k] = v
	}

	// EPS over the sliding window.
	cutoff := time.Now().Add(-epsWindow)
	var recent int
	for _, t := range a.window {
		if t.After(cutoff) {
			recent++
		}
	}

	return Stats{
		Uptime:         time.Since(a.startTime).Truncate(time.Second).String(),
		TotalEvents:    a.totalEvents,
		EPS:            float64(recent) / epsWindow.Seconds(),
		LevelCounts:    levels,
		TerminalCounts: terms,
		DroppedEntries: a.dropped(),
	}
}

// Start begins consuming entries and updating metrics. Blocks until the
// context is cancelled or the channel closes.
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-a.entries:
			if !ok {
				return
			}
			a.record(entry)
		case <-ticker.C:
			a.prune()
		}
	}
}

func (a *Aggregator) record(entry model.LogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalEvents++
	// Counts are keyed by canonical level, so "inf" and "info" land together.
	a.levelCounts[model.ExpandLevel(entry.Level)]++
	a.termCounts[entry.Terminal]++
	a.window = append(a.window, time.Now())
}

// prune drops window timestamps that no longer contribute to EPS.
func (a *Aggregator) prune() {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := time.Now().Add(-epsWindow)
	i := 0
	for _, t := range a.window {
		if t.After(cutoff) {
			a.window[i] = t
			i++
		}
	}
	a.window = a.window[:i]
}
