package hub

import (
	"fmt"
	"testing"

	"github.com/rkot1/rtt-viewer/internal/model"
)

// BenchmarkHubPublish measures the cost of broadcasting to N subscribers.
func BenchmarkHubPublish1(b *testing.B)  { benchHubPublish(b, 1) }
func BenchmarkHubPublish5(b *testing.B)  { benchHubPublish(b, 5) }
func BenchmarkHubPublish10(b *testing.B) { benchHubPublish(b, 10) }

func benchHubPublish(b *testing.B, numSubs int) {
	h := New(nil)
	defer h.Close()

	// Create subscribers and drain them.
	for i := 0; i < numSubs; i++ {
		ch := h.Subscribe()
		go func() {
			for range ch {
			}
		}()
	}

	entry := model.LogEntry{
		Level:   model.LevelInfo,
		Tag:     "bench",
		Message: fmt.Sprintf("benchmark event %d", numSubs),
		Raw:     "benchmark event",
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		entry.ID = uint64(i)
		h.Publish(entry)
	}
}
