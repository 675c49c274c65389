// Package store holds the append-only entry sequence and its derived
// indices: the set of tags seen and per-terminal entry counts.
package store

import (
	"errors"
	"sort"

	"github.com/rkot1/rtt-viewer/internal/model"
)

// ErrEmptyImport is returned when an import batch parses to zero entries.
// The store is left untouched so a failed import never destroys data.
var ErrEmptyImport = errors.New("import produced no entries")

// AppendFlags tells the caller whether an append changed a derived index, so
// dependent views rebuild only when something new actually appeared.
type AppendFlags struct {
	NewTag      bool
	NewTerminal bool
}

// Store is the append-only entry sequence. Entries are never edited or
// partially deleted; only Clear discards them.
type Store struct {
	entries   []model.LogEntry
	tags      map[string]struct{}
	terminals map[int]int
}

func New() *Store {
	return &Store{
		tags:      make(map[string]struct{}),
		terminals: make(map[int]int),
	}
}

// AppendOne adds an entry and updates the derived indices.
func (s *Store) AppendOne(e model.LogEntry) AppendFlags {
	s.entries = append(s.entries, e)

	var flags AppendFlags
	if e.Tag != "" {
		if _, seen := s.tags[e.Tag]; !seen {
			s.tags[e.Tag] = struct{}{}
			flags.NewTag = true
		}
	}
	if _, seen := s.terminals[e.Terminal]; !seen {
		flags.NewTerminal = true
	}
	s.terminals[e.Terminal]++
	return flags
}

// ImportBatch replaces the store contents with the given entries. The flags
// are accumulated over the whole batch so observers get one notification
// cycle regardless of batch size. A zero-entry batch fails with
// ErrEmptyImport and leaves the store untouched.
func (s *Store) ImportBatch(entries []model.LogEntry) (AppendFlags, error) {
	if len(entries) == 0 {
		return AppendFlags{}, ErrEmptyImport
	}

	s.Clear()
	var flags AppendFlags
	for _, e := range entries {
		f := s.AppendOne(e)
		flags.NewTag = flags.NewTag || f.NewTag
		flags.NewTerminal = flags.NewTerminal || f.NewTerminal
	}
	return flags, nil
}

// Clear resets the sequence and all derived indices.
func (s *Store) Clear() {
	s.entries = nil
	s.tags = make(map[string]struct{})
	s.terminals = make(map[int]int)
}

// Entries returns the ordered sequence. Callers must not mutate it.
func (s *Store) Entries() []model.LogEntry { return s.entries }

func (s *Store) Len() int { return len(s.entries) }

// Tags returns the distinct tags seen, sorted.
func (s *Store) Tags() []string {
	out := make([]string, 0, len(s.tags))
	for t := range s.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Terminals returns the terminal ids seen, sorted.
func (s *Store) Terminals() []int {
	out := make([]int, 0, len(s.terminals))
	for t := range s.terminals {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

// TerminalCount returns the running entry count for one terminal.
func (s *Store) TerminalCount(terminal int) int { return s.terminals[terminal] }
