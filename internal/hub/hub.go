// Package hub fans accepted log entries out to subscribers (websocket
// streams, the stats aggregator). Slow subscribers drop entries rather than
// stalling ingestion.
package hub

import (
	"sync"
	"sync/atomic"

	"github.com/rkot1/rtt-viewer/internal/model"

	"go.uber.org/zap"
)

const subscriberBuffer = 1024

// Hub broadcasts LogEntry values to all subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers []chan model.LogEntry
	closed      bool
	dropped     atomic.Int64
	logger      *zap.Logger
}

func New(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{logger: logger}
}

// Subscribe returns a buffered channel that receives every published entry.
// The channel is closed when the hub closes.
func (h *Hub) Subscribe() <-chan model.LogEntry {
	ch := make(chan model.LogEntry, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subscribers = append(h.subscribers, ch)
	return ch
}

// Publish sends an entry to all subscribers. A full subscriber channel drops
// the entry for that subscriber.
func (h *Hub) Publish(e model.LogEntry) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- e:
		default:
			n := h.dropped.Add(1)
			h.logger.Warn("dropped entry for slow subscriber", zap.Int64("total_dropped", n))
		}
	}
}

// Dropped returns the total number of entries dropped for slow subscribers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close closes all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
