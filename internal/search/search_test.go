package search

import (
	"testing"

	"github.com/rkot1/rtt-viewer/internal/model"
)

func allVisible(model.LogEntry) bool { return true }

func entries(msgs ...string) []model.LogEntry {
	out := make([]model.LogEntry, len(msgs))
	for i, m := range msgs {
		out[i] = model.LogEntry{ID: uint64(i), Message: m, Raw: m}
	}
	return out
}

func TestFindModeLiteral(t *testing.T) {
	e := NewEngine()
	e.SetQuery("0x05 (err)")

	// The parens are literal in find mode, not a regex group.
	e.Recompute(entries("failed 0x05 (err)", "failed 0x05 err"), allVisible)
	if got := e.Matches(); len(got) != 1 || got[0] != 0 {
		t.Errorf("expected only the literal match, got %v", got)
	}
}

func TestFindModeCaseInsensitive(t *testing.T) {
	e := NewEngine()
	e.SetQuery("MESH")

	e.Recompute(entries("mesh rx", "gps fix"), allVisible)
	if got := e.Matches(); len(got) != 1 || got[0] != 0 {
		t.Errorf("expected case-insensitive match, got %v", got)
	}
}

func TestRegexMode(t *testing.T) {
	e := NewEngine()
	e.SetMode(ModeRegex)
	e.SetQuery(`code 0x0[0-9]`)

	e.Recompute(entries("code 0x05", "code 0xff"), allVisible)
	if got := e.Matches(); len(got) != 1 || got[0] != 0 {
		t.Errorf("expected regex match, got %v", got)
	}
}

func TestInvalidRegexDisablesSilently(t *testing.T) {
	e := NewEngine()
	e.SetMode(ModeRegex)
	e.SetQuery(`([unclosed`)

	if e.Pattern() != nil {
		t.Error("invalid expression should leave no active pattern")
	}
	e.Recompute(entries("([unclosed"), allVisible)
	if len(e.Matches()) != 0 {
		t.Error("no pattern means no matches")
	}
}

func TestCycleModeRecompiles(t *testing.T) {
	e := NewEngine()
	e.SetQuery(`a+`)

	if e.Mode() != ModeFind {
		t.Fatalf("expected find mode first, got %v", e.Mode())
	}
	if !e.Pattern().MatchString("a+") || e.Pattern().MatchString("aaa") {
		t.Error("find mode should quote the plus")
	}

	if m := e.CycleMode(); m != ModeRegex {
		t.Fatalf("expected regex after find, got %v", m)
	}
	if !e.Pattern().MatchString("aaa") {
		t.Error("regex mode should treat the plus as a quantifier")
	}

	if m := e.CycleMode(); m != ModeFilter {
		t.Fatalf("expected filter after regex, got %v", m)
	}
	if e.FilterPattern() == nil {
		t.Error("filter mode exposes the pattern to the visibility predicate")
	}

	if m := e.CycleMode(); m != ModeFind {
		t.Fatalf("expected wrap back to find, got %v", m)
	}
	if e.FilterPattern() != nil {
		t.Error("filter pattern must be nil outside filter mode")
	}
}

func TestFilterModeBuildsNoMatchList(t *testing.T) {
	e := NewEngine()
	e.SetMode(ModeFilter)
	e.SetQuery("mesh")

	e.Recompute(entries("mesh rx", "mesh tx"), allVisible)
	if len(e.Matches()) != 0 {
		t.Errorf("filter mode keeps the match list empty, got %v", e.Matches())
	}
	if _, ok := e.CurrentID(); ok {
		t.Error("no current match in filter mode")
	}
}

func TestRecomputeSkipsHiddenEntries(t *testing.T) {
	e := NewEngine()
	e.SetQuery("mesh")

	hideOdd := func(en model.LogEntry) bool { return en.ID%2 == 0 }
	e.Recompute(entries("mesh a", "mesh b", "mesh c"), hideOdd)
	got := e.Matches()
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("only visible entries may match, got %v", got)
	}
}

func TestAutoJumpAndNavigation(t *testing.T) {
	e := NewEngine()
	e.SetQuery("x")
	e.Recompute(entries("x1", "skip", "x2", "x3"), allVisible)

	if e.Current() != 0 {
		t.Fatalf("pointer should auto-jump to 0, got %d", e.Current())
	}
	if id, _ := e.CurrentID(); id != 0 {
		t.Errorf("expected current id 0, got %d", id)
	}

	if id, _ := e.Next(); id != 2 {
		t.Errorf("next should reach id 2, got %d", id)
	}
	if id, _ := e.Next(); id != 3 {
		t.Errorf("next should reach id 3, got %d", id)
	}
	if id, _ := e.Next(); id != 0 {
		t.Errorf("next should wrap to id 0, got %d", id)
	}
	if id, _ := e.Prev(); id != 3 {
		t.Errorf("prev should wrap back to id 3, got %d", id)
	}
}

func TestNavigationEmptyList(t *testing.T) {
	e := NewEngine()
	if _, ok := e.Next(); ok {
		t.Error("next on empty list reports no match")
	}
	if _, ok := e.Prev(); ok {
		t.Error("prev on empty list reports no match")
	}
}

func TestObserveAppend(t *testing.T) {
	e := NewEngine()
	e.SetQuery("mesh")
	e.Recompute(nil, allVisible)

	e.ObserveAppend(model.LogEntry{ID: 5, Message: "mesh up", Raw: "mesh up"}, true)
	if got := e.Matches(); len(got) != 1 || got[0] != 5 {
		t.Errorf("streaming append should extend the list, got %v", got)
	}
	if e.Current() != 0 {
		t.Errorf("first streamed match becomes current, got %d", e.Current())
	}

	e.ObserveAppend(model.LogEntry{ID: 6, Message: "mesh down", Raw: "mesh down"}, false)
	if len(e.Matches()) != 1 {
		t.Error("hidden entries never enter the match list")
	}

	e.ObserveAppend(model.LogEntry{ID: 7, Message: "gps fix", Raw: "gps fix"}, true)
	if len(e.Matches()) != 1 {
		t.Error("non-matching entries never enter the match list")
	}
}

func TestEmptyQueryClearsMatches(t *testing.T) {
	e := NewEngine()
	e.SetQuery("mesh")
	e.Recompute(entries("mesh"), allVisible)
	if len(e.Matches()) != 1 {
		t.Fatal("precondition failed")
	}

	e.SetQuery("")
	e.Recompute(entries("mesh"), allVisible)
	if len(e.Matches()) != 0 || e.Current() != -1 {
		t.Error("clearing the query should clear matches and the pointer")
	}
}
