package feed

import (
	"context"
	"fmt"
	"time"
)

// mockMessages cycle through the tags and levels a mesh-tracker firmware
// typically emits, so the dashboard can be exercised without hardware.
var mockMessages = []struct {
	tag, level, msg string
}{
	{"ble_mesh", "inf", "Mesh network initialized, node count: 5"},
	{"cellular", "inf", "Modem powered on"},
	{"gps", "inf", "Cold start, searching for satellites..."},
	{"main", "inf", "System boot, fw v2.4.1"},
	{"uwb", "dbg", "TWR ranging started with anchor 1"},
	{"battery", "inf", "Voltage: 3.8V (72%)"},
	{"plas", "inf", "PLAS engine started"},
	{"ble_mesh", "wrn", "Peer timeout: 0x1A3F"},
	{"cellular", "err", "Network registration failed"},
	{"gps", "inf", "Fix acquired: 8 satellites"},
	{"main", "dbg", "Heap: 42KB used / 128KB total"},
	{"uwb", "inf", "Distance to anchor 1: 4.2m"},
	{"ble_mesh", "inf", "Peer connected: 0xAB12"},
	{"cellular", "inf", "Signal: RSRP=-87 dBm"},
	{"plas", "wrn", "Worker approaching restricted area"},
	{"battery", "dbg", "Current draw: 34mA"},
}

// Mock generates synthesized Zephyr-style lines on a jittered interval. It
// stands in for a connected debug probe during demos and tests.
type Mock struct {
	out chan Line
}

func NewMock() *Mock {
	return &Mock{out: make(chan Line, followerBuffer)}
}

// Lines returns the channel where generated lines are sent.
func (m *Mock) Lines() <-chan Line {
	return m.out
}

// MockLine renders the idx-th synthetic line with a device timestamp that
// advances 250 ms per entry.
func MockLine(idx uint64) string {
	msg := mockMessages[idx%uint64(len(mockMessages))]
	secs := idx * 250 / 1000
	ms := (idx * 250) % 1000
	return fmt.Sprintf("[00:%02d:%02d.%03d,000] <%s> %s: %s",
		secs/60, secs%60, ms, msg.level, msg.tag, msg.msg)
}

// Start emits lines until the context is cancelled.
func (m *Mock) Start(ctx context.Context) {
	defer close(m.out)

	var idx uint64
	for {
		delay := time.Duration(150+(idx%7)*50) * time.Millisecond
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		select {
		case m.out <- Line{Text: MockLine(idx)}:
		case <-ctx.Done():
			return
		}
		idx++
	}
}
