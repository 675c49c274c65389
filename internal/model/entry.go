package model

import "strings"

// Log levels. Anything a parser cannot recognize normalizes to LevelRaw.
const (
	LevelError = "error"
	LevelWarn  = "warn"
	LevelInfo  = "info"
	LevelDebug = "debug"
	LevelRaw   = "raw"
)

// Levels lists the canonical levels in display order.
func Levels() []string {
	return []string{LevelError, LevelWarn, LevelInfo, LevelDebug, LevelRaw}
}

// ValidLevel reports whether s is one of the canonical levels.
func ValidLevel(s string) bool {
	switch s {
	case LevelError, LevelWarn, LevelInfo, LevelDebug, LevelRaw:
		return true
	}
	return false
}

// ExpandLevel maps common level abbreviations (Zephyr "inf", "wrn", export
// "ERR", ...) to a canonical level. Unknown input maps to LevelRaw.
func ExpandLevel(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "err", "error":
		return LevelError
	case "wrn", "warn", "warning":
		return LevelWarn
	case "inf", "info":
		return LevelInfo
	case "dbg", "debug":
		return LevelDebug
	case "raw":
		return LevelRaw
	}
	return LevelRaw
}

// AbbrevLevel returns the three-letter upper-case abbreviation used by the
// plain-text export format.
func AbbrevLevel(level string) string {
	switch ExpandLevel(level) {
	case LevelError:
		return "ERR"
	case LevelWarn:
		return "WRN"
	case LevelInfo:
		return "INF"
	case LevelDebug:
		return "DBG"
	}
	return "RAW"
}

// LogEntry is a single normalized log line. Entries are immutable once
// created; the store only appends and clears.
type LogEntry struct {
	// ID is unique within a session and is the join key for search matches
	// and render lookups.
	ID uint64 `json:"id"`
	// Terminal is the RTT virtual terminal (channel) the line arrived on.
	Terminal int `json:"terminal"`
	// DeviceTimestamp is the device-side clock string, preserved verbatim.
	// Different firmware emit different formats, so it is never parsed.
	DeviceTimestamp string `json:"device_timestamp,omitempty"`
	Level           string `json:"level"`
	Tag             string `json:"tag,omitempty"`
	// Message is the line with any structural prefix stripped.
	Message string `json:"message"`
	// Raw is the original unmodified line. Search matches against Raw because
	// it is unambiguous and survives re-import.
	Raw string `json:"raw,omitempty"`
}

// SearchText returns the text search patterns match against.
func (e LogEntry) SearchText() string {
	if e.Raw != "" {
		return e.Raw
	}
	return e.Message
}

// Candidate is a pre-normalization record with every field optional. Parsers
// and the device feed produce Candidates; Normalize turns them into entries.
type Candidate struct {
	ID              *uint64 `json:"id,omitempty"`
	Terminal        *int    `json:"terminal,omitempty"`
	DeviceTimestamp string  `json:"device_timestamp,omitempty"`
	Level           string  `json:"level,omitempty"`
	Tag             string  `json:"tag,omitempty"`
	Message         string  `json:"message,omitempty"`
	Raw             string  `json:"raw,omitempty"`
}
