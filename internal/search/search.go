// Package search maintains the compiled search pattern, the ordered match
// list over visible entries, and the navigable current-match pointer.
package search

import (
	"regexp"

	"github.com/rkot1/rtt-viewer/internal/model"
)

// Mode selects how the query text is interpreted. The three modes are
// mutually exclusive and cycle find → regex → filter → find.
type Mode int

const (
	// ModeFind matches the query literally, case-insensitive.
	ModeFind Mode = iota
	// ModeRegex compiles the query verbatim as a pattern.
	ModeRegex
	// ModeFilter applies the pattern as a visibility predicate instead of
	// building a match list.
	ModeFilter
)

func (m Mode) String() string {
	switch m {
	case ModeRegex:
		return "regex"
	case ModeFilter:
		return "filter"
	}
	return "find"
}

// Engine holds the search configuration and derived match state.
type Engine struct {
	mode    Mode
	query   string
	re      *regexp.Regexp
	matches []uint64
	current int
}

func NewEngine() *Engine {
	return &Engine{current: -1}
}

func (e *Engine) Mode() Mode    { return e.mode }
func (e *Engine) Query() string { return e.query }

// Pattern returns the compiled pattern, nil when no pattern is active
// (empty query, or an invalid expression in regex/filter mode).
func (e *Engine) Pattern() *regexp.Regexp { return e.re }

// FilterPattern returns the pattern to feed the visibility predicate. It is
// non-nil only in filter mode.
func (e *Engine) FilterPattern() *regexp.Regexp {
	if e.mode != ModeFilter {
		return nil
	}
	return e.re
}

// SetQuery stores the query text and recompiles the pattern.
func (e *Engine) SetQuery(q string) {
	e.query = q
	e.compile()
}

// CycleMode advances to the next mode and recompiles, since escaping rules
// differ between modes.
func (e *Engine) CycleMode() Mode {
	e.mode = (e.mode + 1) % 3
	e.compile()
	return e.mode
}

// SetMode selects a mode directly.
func (e *Engine) SetMode(m Mode) {
	e.mode = m
	e.compile()
}

// compile builds the pattern for the current mode. All modes match
// case-insensitively. A compile failure is not an error: it silently
// disables the active pattern.
func (e *Engine) compile() {
	e.re = nil
	if e.query == "" {
		return
	}
	expr := e.query
	if e.mode == ModeFind {
		expr = regexp.QuoteMeta(expr)
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return
	}
	e.re = re
}

// Recompute rebuilds the match list from scratch: entries are walked in
// store order and kept when currently visible and matching. Filter mode
// builds no match list. The pointer resets and auto-jumps to the first match
// when any exist.
func (e *Engine) Recompute(entries []model.LogEntry, visible func(model.LogEntry) bool) {
	e.matches = e.matches[:0]
	e.current = -1

	if e.re == nil || e.mode == ModeFilter {
		return
	}
	for _, entry := range entries {
		if visible(entry) && e.re.MatchString(entry.SearchText()) {
			e.matches = append(e.matches, entry.ID)
		}
	}
	if len(e.matches) > 0 {
		e.current = 0
	}
}

// ObserveAppend extends the match list for a streaming append. The entry was
// appended at the end of the store, so order is preserved without a full
// recompute.
func (e *Engine) ObserveAppend(entry model.LogEntry, visible bool) {
	if e.re == nil || e.mode == ModeFilter || !visible {
		return
	}
	if e.re.MatchString(entry.SearchText()) {
		e.matches = append(e.matches, entry.ID)
		if e.current < 0 {
			e.current = 0
		}
	}
}

// Matches returns the ordered matching entry ids.
func (e *Engine) Matches() []uint64 { return e.matches }

// Current returns the match-list index of the current match, -1 when none.
func (e *Engine) Current() int { return e.current }

// CurrentID returns the entry id of the current match.
func (e *Engine) CurrentID() (uint64, bool) {
	if e.current < 0 || e.current >= len(e.matches) {
		return 0, false
	}
	return e.matches[e.current], true
}

// Next moves the pointer forward with wraparound. No-op on an empty list.
func (e *Engine) Next() (uint64, bool) {
	if len(e.matches) == 0 {
		return 0, false
	}
	e.current = (e.current + 1) % len(e.matches)
	return e.matches[e.current], true
}

// Prev moves the pointer backward with wraparound. No-op on an empty list.
func (e *Engine) Prev() (uint64, bool) {
	if len(e.matches) == 0 {
		return 0, false
	}
	e.current = (e.current - 1 + len(e.matches)) % len(e.matches)
	return e.matches[e.current], true
}
