// Package feed is the device-feed boundary: it turns raw RTT byte streams,
// followed capture files, or a mock generator into discrete log lines for
// the ingestion coordinator.
package feed

import "strings"

// Line is one decoded log line together with the RTT virtual terminal it
// arrived on.
type Line struct {
	Text     string
	Terminal int
}

// Decoder converts a raw RTT byte stream into lines. The stream interleaves
// printable text with in-band signals: 0xFF followed by an ASCII digit
// switches the active virtual terminal, and ANSI escape sequences carry
// colors we do not render. Decoder state survives across Write calls, so
// signals split over read boundaries decode correctly.
type Decoder struct {
	buf      strings.Builder
	terminal int
	state    decodeState
}

type decodeState int

const (
	stateText decodeState = iota
	stateTerminalSwitch
	stateEscape
	stateCSI
)

func NewDecoder() *Decoder { return &Decoder{} }

// Terminal returns the currently active virtual terminal.
func (d *Decoder) Terminal() int { return d.terminal }

// Reset discards any partial line and decode state, e.g. after the source
// file was truncated.
func (d *Decoder) Reset() {
	d.buf.Reset()
	d.state = stateText
}

// Write decodes a chunk of bytes and returns the completed lines. Blank
// lines are dropped.
func (d *Decoder) Write(p []byte) []Line {
	var lines []Line
	for _, b := range p {
		switch d.state {
		case stateTerminalSwitch:
			d.state = stateText
			if b >= '0' && b <= '9' {
				d.terminal = int(b - '0')
				break
			}
			// Not a terminal switch after all. The byte is ordinary
			// stream data and goes back through text handling.
			lines = d.textByte(b, lines)

		case stateEscape:
			if b == '[' {
				d.state = stateCSI
			} else {
				d.state = stateText
			}

		case stateCSI:
			// Parameter bytes run until the final alphabetic byte.
			if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') {
				d.state = stateText
			}

		default:
			lines = d.textByte(b, lines)
		}
	}
	return lines
}

// textByte handles one byte in text state and returns the line slice with
// any line the byte completed.
func (d *Decoder) textByte(b byte, lines []Line) []Line {
	switch {
	case b == 0xFF:
		d.state = stateTerminalSwitch
	case b == 0x1B:
		d.state = stateEscape
	case b == '\n':
		text := strings.TrimRight(d.buf.String(), " \t\r")
		d.buf.Reset()
		if text != "" {
			lines = append(lines, Line{Text: text, Terminal: d.terminal})
		}
	case b < 0x20 && b != '\r' && b != '\t':
		// Other control bytes are dropped.
	default:
		d.buf.WriteByte(b)
	}
	return lines
}
