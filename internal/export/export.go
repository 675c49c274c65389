// Package export renders entry sequences to the writable formats. Export is
// pure serialization; it never touches the store.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rkot1/rtt-viewer/internal/model"
	"github.com/rkot1/rtt-viewer/internal/parser"
)

// Encode renders entries in the given format. An unknown format name fails
// before anything is serialized.
func Encode(format parser.Format, entries []model.LogEntry) ([]byte, error) {
	switch format {
	case parser.FormatJSON:
		return JSON(entries)
	case parser.FormatCSV:
		return CSV(entries)
	case parser.FormatText:
		return Text(entries), nil
	}
	return nil, &parser.FormatError{Reason: fmt.Sprintf("unknown format %q", format)}
}

// jsonEntry is the exported object shape: the raw field is stripped, so raw
// re-derives to message on re-import. The level is expanded to its canonical
// form so abbreviated live-parse levels survive a round-trip.
type jsonEntry struct {
	ID              uint64 `json:"id"`
	Terminal        int    `json:"terminal"`
	DeviceTimestamp string `json:"device_timestamp,omitempty"`
	Level           string `json:"level"`
	Tag             string `json:"tag,omitempty"`
	Message         string `json:"message"`
}

// JSON renders a pretty-printed array of entries without the raw field.
func JSON(entries []model.LogEntry) ([]byte, error) {
	out := make([]jsonEntry, len(entries))
	for i, e := range entries {
		out[i] = jsonEntry{
			ID:              e.ID,
			Terminal:        e.Terminal,
			DeviceTimestamp: e.DeviceTimestamp,
			Level:           model.ExpandLevel(e.Level),
			Tag:             e.Tag,
			Message:         e.Message,
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

// CSV renders the fixed six-column schema with RFC4180 quoting.
func CSV(entries []model.LogEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "terminal", "device_timestamp", "level", "tag", "message"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		row := []string{
			strconv.FormatUint(e.ID, 10),
			strconv.Itoa(e.Terminal),
			e.DeviceTimestamp,
			model.ExpandLevel(e.Level),
			e.Tag,
			e.Message,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Text renders one synthesized line per entry:
//
//	[0042] [T1] [00:29:56.296,813] [INF] [<ble_manager>] IU 3 ON
//
// Bracketed segments whose source field is absent are omitted. The text
// parser's self-export recognizer reads this shape back with id and terminal
// fidelity.
func Text(entries []model.LogEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(TextLine(e))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// TextLine renders a single entry in the plain-text export shape.
func TextLine(e model.LogEntry) string {
	segs := []string{
		fmt.Sprintf("[%04d]", e.ID),
		fmt.Sprintf("[T%d]", e.Terminal),
	}
	if e.DeviceTimestamp != "" {
		segs = append(segs, "["+e.DeviceTimestamp+"]")
	}
	segs = append(segs, "["+model.AbbrevLevel(e.Level)+"]")
	if e.Tag != "" {
		segs = append(segs, "[<"+e.Tag+">]")
	}
	segs = append(segs, e.Message)
	return strings.TrimRight(strings.Join(segs, " "), " ")
}
