// Package filter implements the per-entry visibility predicate and the
// mutable filter configuration it evaluates against.
package filter

import (
	"regexp"

	"github.com/rkot1/rtt-viewer/internal/model"
)

// State is the filter configuration: enabled levels, tag allow/deny sets, and
// the terminal selection. A nil terminal set is the "all" sentinel.
type State struct {
	levels    map[string]bool
	active    map[string]struct{}
	excluded  map[string]struct{}
	terminals map[int]struct{}
}

// NewState returns a State with all levels enabled and no restrictions.
func NewState() *State {
	s := &State{
		levels:   make(map[string]bool),
		active:   make(map[string]struct{}),
		excluded: make(map[string]struct{}),
	}
	for _, l := range model.Levels() {
		s.levels[l] = true
	}
	return s
}

// Visible evaluates the predicate for one entry. filterRx is the compiled
// filter-mode search pattern, nil when search is not in filter mode. The
// conditions short-circuit in a fixed order.
func (s *State) Visible(e model.LogEntry, filterRx *regexp.Regexp) bool {
	// Live text parsing stores abbreviated levels ("inf") verbatim; they
	// filter as their canonical level.
	if !s.levels[model.ExpandLevel(e.Level)] {
		return false
	}
	// Exclusion always wins for a tag, independently of the allow-list.
	if _, out := s.excluded[e.Tag]; out {
		return false
	}
	if len(s.active) > 0 {
		if _, in := s.active[e.Tag]; !in {
			return false
		}
	}
	if filterRx != nil && !filterRx.MatchString(e.SearchText()) {
		return false
	}
	if s.terminals != nil {
		if _, in := s.terminals[e.Terminal]; !in {
			return false
		}
	}
	return true
}

// ToggleLevel flips one level in the enabled set.
func (s *State) ToggleLevel(level string) {
	s.levels[level] = !s.levels[level]
}

// LevelEnabled reports whether a level currently passes the filter.
func (s *State) LevelEnabled(level string) bool { return s.levels[level] }

// ToggleTag flips a tag in the allow-list. A tag entering the allow-list
// leaves the exclusion set, so the two never contain the same tag.
func (s *State) ToggleTag(tag string) {
	if _, in := s.active[tag]; in {
		delete(s.active, tag)
		return
	}
	delete(s.excluded, tag)
	s.active[tag] = struct{}{}
}

// ToggleExcludeTag flips a tag in the exclusion set, removing it from the
// allow-list first.
func (s *State) ToggleExcludeTag(tag string) {
	if _, out := s.excluded[tag]; out {
		delete(s.excluded, tag)
		return
	}
	delete(s.active, tag)
	s.excluded[tag] = struct{}{}
}

// ToggleTerminal flips a terminal in the selection. Deselecting the last
// selected terminal reverts to "all", never to a match-nothing set.
func (s *State) ToggleTerminal(terminal int) {
	if s.terminals == nil {
		s.terminals = map[int]struct{}{terminal: {}}
		return
	}
	if _, in := s.terminals[terminal]; in {
		delete(s.terminals, terminal)
		if len(s.terminals) == 0 {
			s.terminals = nil
		}
		return
	}
	s.terminals[terminal] = struct{}{}
}

// AllTerminals reports whether the terminal selection is the "all" sentinel.
func (s *State) AllTerminals() bool { return s.terminals == nil }

// ActiveTags returns the allow-listed tags.
func (s *State) ActiveTags() []string { return keys(s.active) }

// ExcludedTags returns the denied tags.
func (s *State) ExcludedTags() []string { return keys(s.excluded) }

// SelectedTerminals returns the selected terminals, nil meaning all.
func (s *State) SelectedTerminals() []int {
	if s.terminals == nil {
		return nil
	}
	out := make([]int, 0, len(s.terminals))
	for t := range s.terminals {
		out = append(out, t)
	}
	return out
}

// EnabledLevels returns the levels that currently pass the filter.
func (s *State) EnabledLevels() []string {
	var out []string
	for _, l := range model.Levels() {
		if s.levels[l] {
			out = append(out, l)
		}
	}
	return out
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
