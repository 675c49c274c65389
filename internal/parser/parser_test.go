package parser

import (
	"errors"
	"testing"

	"github.com/rkot1/rtt-viewer/internal/model"
)

func TestParseJSON(t *testing.T) {
	entries, err := ParseJSON(`[
		{"id": 7, "terminal": 1, "level": "ERROR", "tag": "ble", "message": "link lost"},
		{"level": "weird", "message": "boot"}
	]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].ID != 7 {
		t.Errorf("expected id 7, got %d", entries[0].ID)
	}
	if entries[0].Terminal != 1 {
		t.Errorf("expected terminal 1, got %d", entries[0].Terminal)
	}
	if entries[0].Level != model.LevelError {
		t.Errorf("expected level error, got %s", entries[0].Level)
	}
	if entries[0].Raw != "link lost" {
		t.Errorf("expected raw to re-derive from message, got %q", entries[0].Raw)
	}

	// The second entry has no id: the array index is the fallback.
	if entries[1].ID != 1 {
		t.Errorf("expected fallback id 1, got %d", entries[1].ID)
	}
	if entries[1].Level != model.LevelRaw {
		t.Errorf("unrecognized level should normalize to raw, got %s", entries[1].Level)
	}
}

func TestParseJSONExpectsArray(t *testing.T) {
	_, err := ParseJSON(`{"id": 1, "message": "not an array"}`)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if fe.Reason != "expected array" {
		t.Errorf("expected reason 'expected array', got %q", fe.Reason)
	}
}

func TestParseJSONMalformed(t *testing.T) {
	_, err := ParseJSON(`[{"id": 1,]`)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if fe.Unwrap() == nil {
		t.Error("expected the underlying decode error to be wrapped")
	}
}

func TestParseCSV(t *testing.T) {
	text := "id,terminal,device_timestamp,level,tag,message\n" +
		"3,1,00:00:01.000,info,gps,Fix acquired\n" +
		"4,0,,warn,,\"value, quoted\"\n"

	entries, err := ParseCSV(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != 3 || entries[0].Terminal != 1 || entries[0].Tag != "gps" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].DeviceTimestamp != "00:00:01.000" {
		t.Errorf("expected device timestamp preserved, got %q", entries[0].DeviceTimestamp)
	}
	if entries[1].Message != "value, quoted" {
		t.Errorf("expected quoted field decoded, got %q", entries[1].Message)
	}
	if entries[1].Tag != "" {
		t.Errorf("expected empty tag to stay absent, got %q", entries[1].Tag)
	}
}

func TestParseCSVUnknownColumnsIgnored(t *testing.T) {
	text := "id,bogus,level,message\n1,whatever,error,oops\n"
	entries, err := ParseCSV(text)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Level != model.LevelError || entries[0].Message != "oops" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestParseCSVNeedsDataRow(t *testing.T) {
	_, err := ParseCSV("id,level,message\n")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError for header-only input, got %v", err)
	}
}

func TestParseUnknownFormat(t *testing.T) {
	_, err := Parse(Format("xml"), "<log/>")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError for unknown format, got %v", err)
	}
}

func TestParserLevelsAlwaysCanonical(t *testing.T) {
	jsonEntries, err := ParseJSON(`[{"level":"FATAL","message":"a"},{"message":"b"}]`)
	if err != nil {
		t.Fatal(err)
	}
	csvEntries, err := ParseCSV("level,message\nnonsense,x\n")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range append(jsonEntries, csvEntries...) {
		if !model.ValidLevel(e.Level) {
			t.Errorf("normalized parser produced non-canonical level %q", e.Level)
		}
	}
}
