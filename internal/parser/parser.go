package parser

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rkot1/rtt-viewer/internal/model"
)

// Format identifies an import/export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// FormatError reports structurally invalid input or an unknown format name.
// The store is never touched when a parse fails with a FormatError.
type FormatError struct {
	Reason string
	Cause  error
}

func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("format error: %s: %v", e.Reason, e.Cause)
	}
	return "format error: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Cause }

// Parse decodes text in the given format into an ordered entry sequence.
// An unknown format name fails before any decoding is attempted.
func Parse(format Format, text string) ([]model.LogEntry, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(text)
	case FormatCSV:
		return ParseCSV(text)
	case FormatText:
		return ParseText(text), nil
	}
	return nil, &FormatError{Reason: fmt.Sprintf("unknown format %q", format)}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

// ParseJSON decodes a JSON array of candidate objects. All-or-nothing: a
// malformed document or a non-array top level fails the whole input.
func ParseJSON(text string) ([]model.LogEntry, error) {
	var top interface{}
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return nil, &FormatError{Reason: "invalid JSON", Cause: err}
	}
	if _, ok := top.([]interface{}); !ok {
		return nil, &FormatError{Reason: "expected array"}
	}

	var candidates []model.Candidate
	if err := json.Unmarshal([]byte(text), &candidates); err != nil {
		return nil, &FormatError{Reason: "invalid JSON", Cause: err}
	}

	entries := make([]model.LogEntry, 0, len(candidates))
	for i, c := range candidates {
		entries = append(entries, Normalize(c, uint64(i)))
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// CSV
// ---------------------------------------------------------------------------

// csvColumns are the recognized header names. Unknown columns are ignored;
// missing columns normalize to their defaults.
var csvColumns = map[string]bool{
	"id":               true,
	"terminal":         true,
	"device_timestamp": true,
	"level":            true,
	"tag":              true,
	"message":          true,
}

// ParseCSV decodes header-driven CSV with RFC4180 quoting. Requires a header
// row plus at least one data row.
func ParseCSV(text string) ([]model.LogEntry, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1 // columns map by header name, ragged rows tolerated

	records, err := r.ReadAll()
	if err != nil {
		return nil, &FormatError{Reason: "invalid CSV", Cause: err}
	}
	if len(records) < 2 {
		return nil, &FormatError{Reason: "expected a header row and at least one data row"}
	}

	// Map recognized header names to their column index.
	index := make(map[string]int)
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(name))
		if csvColumns[name] {
			index[name] = i
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	entries := make([]model.LogEntry, 0, len(records)-1)
	for _, row := range records[1:] {
		c := model.Candidate{
			DeviceTimestamp: field(row, "device_timestamp"),
			Level:           field(row, "level"),
			Tag:             field(row, "tag"),
			Message:         field(row, "message"),
		}
		if v, err := strconv.ParseUint(field(row, "id"), 10, 64); err == nil {
			id := v
			c.ID = &id
		}
		if v, err := strconv.Atoi(field(row, "terminal")); err == nil {
			term := v
			c.Terminal = &term
		}
		entries = append(entries, Normalize(c, uint64(len(entries))))
	}
	return entries, nil
}
