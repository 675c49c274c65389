package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rkot1/rtt-viewer/internal/model"
)

func TestAppendOnePrintsFields(t *testing.T) {
	var buf bytes.Buffer
	r := NewTermRendererTo(&buf)

	r.AppendOne(model.LogEntry{
		ID:              3,
		Terminal:        1,
		DeviceTimestamp: "00:01:02.003",
		Level:           "inf",
		Tag:             "ble_manager",
		Message:         "IU 3 ON",
	})

	out := buf.String()
	for _, want := range []string{"T1", "00:01:02.003", "info", "ble_manager:", "IU 3 ON"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestAppendOneOmitsAbsentFields(t *testing.T) {
	var buf bytes.Buffer
	r := NewTermRendererTo(&buf)

	r.AppendOne(model.LogEntry{Message: "plain line", Level: model.LevelRaw})

	out := buf.String()
	if !strings.Contains(out, "plain line") || !strings.Contains(out, "raw") {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, ":") {
		t.Errorf("no timestamp or tag segment expected: %s", out)
	}
}

func TestRebuildAllPrintsEverything(t *testing.T) {
	var buf bytes.Buffer
	r := NewTermRendererTo(&buf)

	r.RebuildAll([]model.LogEntry{
		{ID: 0, Message: "first"},
		{ID: 1, Message: "second"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "first") || !strings.Contains(lines[1], "second") {
		t.Errorf("lines out of order: %v", lines)
	}
}
