package model

import "testing"

func TestExpandLevel(t *testing.T) {
	cases := map[string]string{
		"err":     LevelError,
		"ERR":     LevelError,
		"error":   LevelError,
		"wrn":     LevelWarn,
		"warning": LevelWarn,
		"inf":     LevelInfo,
		"INFO":    LevelInfo,
		"dbg":     LevelDebug,
		"raw":     LevelRaw,
		"banana":  LevelRaw,
		"":        LevelRaw,
	}
	for in, want := range cases {
		if got := ExpandLevel(in); got != want {
			t.Errorf("ExpandLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAbbrevLevel(t *testing.T) {
	cases := map[string]string{
		LevelError: "ERR",
		LevelWarn:  "WRN",
		LevelInfo:  "INF",
		LevelDebug: "DBG",
		LevelRaw:   "RAW",
		"inf":      "INF",
		"garbage":  "RAW",
	}
	for in, want := range cases {
		if got := AbbrevLevel(in); got != want {
			t.Errorf("AbbrevLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	for _, l := range Levels() {
		if !ValidLevel(l) {
			t.Errorf("canonical level %q should be valid", l)
		}
	}
	if ValidLevel("inf") {
		t.Error("abbreviations are not canonical levels")
	}
}

func TestSearchText(t *testing.T) {
	e := LogEntry{Message: "msg", Raw: "raw line"}
	if e.SearchText() != "raw line" {
		t.Errorf("raw wins when present, got %q", e.SearchText())
	}
	e = LogEntry{Message: "msg"}
	if e.SearchText() != "msg" {
		t.Errorf("message is the fallback, got %q", e.SearchText())
	}
}
