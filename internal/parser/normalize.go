package parser

import (
	"strings"

	"github.com/rkot1/rtt-viewer/internal/model"
)

// Normalize canonicalizes a candidate record into a well-formed LogEntry.
// It is total: any candidate yields an entry, never an error.
//
// fallbackID is used when the candidate carries no id of its own; callers
// typically pass the current store length or an ingestion counter.
func Normalize(c model.Candidate, fallbackID uint64) model.LogEntry {
	e := model.LogEntry{
		ID:              fallbackID,
		DeviceTimestamp: c.DeviceTimestamp,
		Tag:             strings.TrimSpace(c.Tag),
		Message:         c.Message,
		Raw:             c.Raw,
	}

	if c.ID != nil {
		e.ID = *c.ID
	}
	if c.Terminal != nil {
		e.Terminal = *c.Terminal
	}

	e.Level = strings.ToLower(strings.TrimSpace(c.Level))
	if !model.ValidLevel(e.Level) {
		e.Level = model.LevelRaw
	}

	// Message and raw fall back to each other. Both empty is a legal empty
	// message line.
	if e.Message == "" {
		e.Message = e.Raw
	}
	if e.Raw == "" {
		e.Raw = e.Message
	}

	return e
}
