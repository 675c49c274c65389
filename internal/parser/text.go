package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rkot1/rtt-viewer/internal/model"
)

// Line recognizers, tried in order. Each is a pure function from the line
// text (after any terminal prefix is stripped) to an optional match. The
// cascade ends with an unconditional raw fallback, so every line yields an
// entry.
var (
	// "05> ": two digits and a chevron select the RTT virtual terminal.
	termPrefixRe = regexp.MustCompile(`^(\d{2})> `)

	// Zephyr shell format: [00:29:56.296,813] <inf> ble_manager: IU 3 ON
	zephyrRe = regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2}\.\d{3}(?:,\d{3})?)\]\s*<(\w+)>\s*([\w._-]+):\s*(.*)$`)

	// Generic tagged line: <NetCore>Cannot notify mesh RX
	taggedRe = regexp.MustCompile(`^<([\w._-]+)>\s*(.*)$`)

	// Our own plain-text export shape, so exported files re-import with id
	// and terminal fidelity: [0042] [T1] [00:29:56.296] [ERR] [<ble>] msg
	exportRe = regexp.MustCompile(`^(?:\[(\d+)\]\s+)?(?:\[T(\d+)\]\s+)?(?:\[([^\]\s]+)\]\s+)?\[(ERR|WRN|INF|DBG|RAW)\]\s*(?:\[<([\w._-]+)>\]\s*)?(.*)$`)
)

// lineMatch is the partial result of a recognizer. A nil id means the engine
// assigns the next synthetic id.
type lineMatch struct {
	id              *uint64
	terminal        *int
	deviceTimestamp string
	level           string
	tag             string
	message         string
}

type recognizer func(s string) (lineMatch, bool)

func matchZephyr(s string) (lineMatch, bool) {
	caps := zephyrRe.FindStringSubmatch(s)
	if caps == nil {
		return lineMatch{}, false
	}
	// The bracketed word is stored literally ("inf", not "info"). Consumers
	// that need the canonical level go through model.ExpandLevel.
	return lineMatch{
		deviceTimestamp: caps[1],
		level:           caps[2],
		tag:             caps[3],
		message:         caps[4],
	}, true
}

func matchTagged(s string) (lineMatch, bool) {
	caps := taggedRe.FindStringSubmatch(s)
	if caps == nil {
		return lineMatch{}, false
	}
	return lineMatch{
		level:   model.LevelRaw,
		tag:     caps[1],
		message: strings.TrimSpace(caps[2]),
	}, true
}

func matchExport(s string) (lineMatch, bool) {
	caps := exportRe.FindStringSubmatch(s)
	if caps == nil {
		return lineMatch{}, false
	}
	m := lineMatch{
		deviceTimestamp: caps[3],
		level:           model.ExpandLevel(caps[4]),
		tag:             caps[5],
		message:         caps[6],
	}
	if caps[1] != "" {
		if v, err := strconv.ParseUint(caps[1], 10, 64); err == nil {
			m.id = &v
		}
	}
	if caps[2] != "" {
		if v, err := strconv.Atoi(caps[2]); err == nil {
			m.terminal = &v
		}
	}
	return m, true
}

func matchFallback(s string) (lineMatch, bool) {
	return lineMatch{level: model.LevelRaw, message: s}, true
}

var recognizers = []recognizer{matchZephyr, matchTagged, matchExport, matchFallback}

// TextParser converts heuristic plain-text lines into entries. The synthetic
// id counter advances only for lines that carry no explicit id, and persists
// across calls so a streaming feed gets monotonically increasing ids.
type TextParser struct {
	seq uint64
}

func NewTextParser() *TextParser { return &TextParser{} }

// Parse splits text into lines (CRLF and CR normalized to LF), skips blank
// lines, and runs each through the recognizer cascade.
func (p *TextParser) Parse(text string) []model.LogEntry {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var entries []model.LogEntry
	for _, line := range strings.Split(text, "\n") {
		if e, ok := p.ParseLine(line); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// ParseLine parses a single line. Blank lines report ok=false.
func (p *TextParser) ParseLine(line string) (model.LogEntry, bool) {
	clean := strings.TrimSpace(line)
	if clean == "" {
		return model.LogEntry{}, false
	}

	// A terminal prefix is stripped before the cascade sees the line.
	rest := clean
	terminal := 0
	if caps := termPrefixRe.FindStringSubmatch(clean); caps != nil {
		terminal, _ = strconv.Atoi(caps[1])
		rest = clean[len(caps[0]):]
	}

	var m lineMatch
	for _, rec := range recognizers {
		if got, ok := rec(rest); ok {
			m = got
			break
		}
	}

	e := model.LogEntry{
		Terminal:        terminal,
		DeviceTimestamp: m.deviceTimestamp,
		Level:           m.level,
		Tag:             m.tag,
		Message:         m.message,
		Raw:             clean,
	}
	if m.terminal != nil {
		e.Terminal = *m.terminal
	}
	if m.id != nil {
		e.ID = *m.id
	} else {
		e.ID = p.seq
		p.seq++
	}
	return e, true
}

// ParseText parses a whole document with a fresh id counter.
func ParseText(text string) []model.LogEntry {
	return NewTextParser().Parse(text)
}
