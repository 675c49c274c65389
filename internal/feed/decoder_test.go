package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkot1/rtt-viewer/internal/parser"
)

func TestDecoderPlainLines(t *testing.T) {
	d := NewDecoder()
	lines := d.Write([]byte("hello\nworld\n"))

	require.Len(t, lines, 2)
	assert.Equal(t, "hello", lines[0].Text)
	assert.Equal(t, "world", lines[1].Text)
	assert.Equal(t, 0, lines[0].Terminal)
}

func TestDecoderTerminalSwitch(t *testing.T) {
	d := NewDecoder()
	lines := d.Write([]byte("app core\n\xff1net core\n\xff0back\n"))

	require.Len(t, lines, 3)
	assert.Equal(t, 0, lines[0].Terminal)
	assert.Equal(t, 1, lines[1].Terminal)
	assert.Equal(t, "net core", lines[1].Text)
	assert.Equal(t, 0, lines[2].Terminal)
}

func TestDecoderTerminalSwitchNonDigit(t *testing.T) {
	d := NewDecoder()
	lines := d.Write([]byte("\xffXstill terminal zero\n"))

	require.Len(t, lines, 1)
	assert.Equal(t, 0, lines[0].Terminal)
	// A non-digit after 0xFF is ordinary data and stays in the stream.
	assert.Equal(t, "Xstill terminal zero", lines[0].Text)
}

func TestDecoderTerminalSwitchFollowedByNewline(t *testing.T) {
	d := NewDecoder()
	lines := d.Write([]byte("first\xff\nsecond\n"))

	require.Len(t, lines, 2)
	assert.Equal(t, "first", lines[0].Text)
	assert.Equal(t, "second", lines[1].Text)
}

func TestDecoderStripsANSIEscapes(t *testing.T) {
	d := NewDecoder()
	lines := d.Write([]byte("\x1b[1;31mred error\x1b[0m\n"))

	require.Len(t, lines, 1)
	assert.Equal(t, "red error", lines[0].Text)
}

func TestDecoderDropsControlBytes(t *testing.T) {
	d := NewDecoder()
	lines := d.Write([]byte("be\x00ep\x07 done\ttab kept\n"))

	require.Len(t, lines, 1)
	assert.Equal(t, "beep done\ttab kept", lines[0].Text)
}

func TestDecoderPartialWrites(t *testing.T) {
	d := NewDecoder()

	// Signal bytes split across read boundaries.
	assert.Empty(t, d.Write([]byte("\xff")))
	assert.Empty(t, d.Write([]byte("2half ")))
	assert.Empty(t, d.Write([]byte("\x1b")))
	assert.Empty(t, d.Write([]byte("[32m")))
	lines := d.Write([]byte("line\n"))

	require.Len(t, lines, 1)
	assert.Equal(t, "half line", lines[0].Text)
	assert.Equal(t, 2, lines[0].Terminal)
}

func TestDecoderSkipsBlankLines(t *testing.T) {
	d := NewDecoder()
	lines := d.Write([]byte("\n   \r\none\n\n"))

	require.Len(t, lines, 1)
	assert.Equal(t, "one", lines[0].Text)
}

func TestDecoderReset(t *testing.T) {
	d := NewDecoder()
	d.Write([]byte("\xff3partial"))
	d.Reset()

	lines := d.Write([]byte("fresh\n"))
	require.Len(t, lines, 1)
	assert.Equal(t, "fresh", lines[0].Text)
	// Reset drops the buffered text but keeps the terminal selection.
	assert.Equal(t, 3, lines[0].Terminal)
}

func TestMockLineParsesAsStructured(t *testing.T) {
	entries := parser.ParseText(MockLine(0))
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "ble_mesh", e.Tag)
	assert.Equal(t, "inf", e.Level)
	assert.Equal(t, "00:00:00.000,000", e.DeviceTimestamp)
	assert.Contains(t, e.Message, "Mesh network initialized")
}

func TestMockLineTimestampAdvances(t *testing.T) {
	entries := parser.ParseText(MockLine(4))
	require.Len(t, entries, 1)
	// 4 * 250 ms = 1 second.
	assert.Equal(t, "00:00:01.000,000", entries[0].DeviceTimestamp)
}

func TestMockLineCycles(t *testing.T) {
	a := parser.ParseText(MockLine(1))[0]
	b := parser.ParseText(MockLine(1 + uint64(len(mockMessages))))[0]
	assert.Equal(t, a.Tag, b.Tag)
	assert.Equal(t, a.Message, b.Message)
}
