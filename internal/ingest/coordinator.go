// Package ingest owns the session: the store, the filter and search state,
// and the render surface. All mutation flows through the Coordinator, which
// decides between incremental appends and full rebuilds and when observers
// must be told that a derived index changed.
package ingest

import (
	"sync"

	"github.com/rkot1/rtt-viewer/internal/export"
	"github.com/rkot1/rtt-viewer/internal/filter"
	"github.com/rkot1/rtt-viewer/internal/hub"
	"github.com/rkot1/rtt-viewer/internal/model"
	"github.com/rkot1/rtt-viewer/internal/parser"
	"github.com/rkot1/rtt-viewer/internal/search"
	"github.com/rkot1/rtt-viewer/internal/store"

	"go.uber.org/zap"
)

// Renderer is the render surface contract. The coordinator either rebuilds
// the whole visible sequence or appends one entry; it never touches a
// concrete display.
type Renderer interface {
	RebuildAll(entries []model.LogEntry)
	AppendOne(e model.LogEntry)
	ScrollToBottom()
}

// NopRenderer discards render operations.
type NopRenderer struct{}

func (NopRenderer) RebuildAll([]model.LogEntry) {}
func (NopRenderer) AppendOne(model.LogEntry)    {}
func (NopRenderer) ScrollToBottom()             {}

// Observers are notified when a derived index changes. Single-entry appends
// fire them only when something new actually appeared; batch imports fire
// each at most once regardless of batch size.
type Observers struct {
	TagsChanged      func(tags []string)
	TerminalsChanged func(terminals []int)
	CountChanged     func(total int)
}

// Coordinator applies streaming appends and bulk imports to the store. It is
// the single logical actor over session state; its mutex serializes callers.
type Coordinator struct {
	mu         sync.Mutex
	store      *store.Store
	filter     *filter.State
	search     *search.Engine
	renderer   Renderer
	hub        *hub.Hub
	obs        Observers
	lines      *parser.TextParser
	autoScroll bool
	logger     *zap.Logger
}

func New(renderer Renderer, h *hub.Hub, logger *zap.Logger) *Coordinator {
	if renderer == nil {
		renderer = NopRenderer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		store:      store.New(),
		filter:     filter.NewState(),
		search:     search.NewEngine(),
		renderer:   renderer,
		hub:        h,
		lines:      parser.NewTextParser(),
		autoScroll: true,
		logger:     logger,
	}
}

// SetObservers installs the index-change callbacks.
func (c *Coordinator) SetObservers(obs Observers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.obs = obs
}

// SetRenderer swaps the render surface and rebuilds it.
func (c *Coordinator) SetRenderer(r Renderer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r == nil {
		r = NopRenderer{}
	}
	c.renderer = r
	c.renderer.RebuildAll(c.visibleLocked())
}

// Append ingests one streamed entry from the device feed.
func (c *Coordinator) Append(cand model.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := parser.Normalize(cand, uint64(c.store.Len()))
	c.appendLocked(e)
}

// AppendLine ingests one raw text line, running it through the heuristic
// line parser. Blank lines are ignored.
func (c *Coordinator) AppendLine(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lines.ParseLine(line)
	if !ok {
		return
	}
	c.appendLocked(e)
}

// AppendFeedLine ingests one decoded device-feed line. The feed's terminal
// bookkeeping overrides anything the line text implies.
func (c *Coordinator) AppendFeedLine(text string, terminal int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lines.ParseLine(text)
	if !ok {
		return
	}
	e.Terminal = terminal
	c.appendLocked(e)
}

func (c *Coordinator) appendLocked(e model.LogEntry) {
	flags := c.store.AppendOne(e)

	visible := c.filter.Visible(e, c.search.FilterPattern())
	if visible {
		c.renderer.AppendOne(e)
		if c.autoScroll {
			c.renderer.ScrollToBottom()
		}
	}
	c.search.ObserveAppend(e, visible)

	if c.hub != nil {
		c.hub.Publish(e)
	}
	if flags.NewTag && c.obs.TagsChanged != nil {
		c.obs.TagsChanged(c.store.Tags())
	}
	if flags.NewTerminal && c.obs.TerminalsChanged != nil {
		c.obs.TerminalsChanged(c.store.Terminals())
	}
	if c.obs.CountChanged != nil {
		c.obs.CountChanged(c.store.Len())
	}
}

// Import parses text in the given format and replaces the store contents
// all-or-nothing. A parse failure or an empty batch leaves existing data
// untouched. Observers receive one notification cycle regardless of batch
// size, and the render surface gets a single full rebuild.
func (c *Coordinator) Import(format parser.Format, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := parser.Parse(format, text)
	if err != nil {
		return err
	}
	flags, err := c.store.ImportBatch(entries)
	if err != nil {
		return err
	}
	c.logger.Info("imported batch",
		zap.String("format", string(format)),
		zap.Int("entries", len(entries)))

	c.search.Recompute(c.store.Entries(), c.entryVisibleLocked)
	c.renderer.RebuildAll(c.visibleLocked())
	if c.autoScroll {
		c.renderer.ScrollToBottom()
	}

	if flags.NewTag && c.obs.TagsChanged != nil {
		c.obs.TagsChanged(c.store.Tags())
	}
	if flags.NewTerminal && c.obs.TerminalsChanged != nil {
		c.obs.TerminalsChanged(c.store.Terminals())
	}
	if c.obs.CountChanged != nil {
		c.obs.CountChanged(c.store.Len())
	}
	return nil
}

// ImportAuto imports text, picking the format from the file name when one is
// given, otherwise by content sniffing.
func (c *Coordinator) ImportAuto(text, path string) error {
	var format parser.Format
	if path != "" {
		format = parser.DetectByExtension(path)
	} else {
		format = parser.DetectByContent(text)
	}
	return c.Import(format, text)
}

// Export serializes the whole store in the given format.
func (c *Coordinator) Export(format parser.Format) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return export.Encode(format, c.store.Entries())
}

// Clear resets the session: entries, derived indices, and search matches.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Clear()
	c.search.Recompute(nil, nil)
	c.renderer.RebuildAll(nil)
	if c.obs.TagsChanged != nil {
		c.obs.TagsChanged(nil)
	}
	if c.obs.TerminalsChanged != nil {
		c.obs.TerminalsChanged(nil)
	}
	if c.obs.CountChanged != nil {
		c.obs.CountChanged(0)
	}
}

// Visible returns the currently visible ordered subsequence.
func (c *Coordinator) Visible() []model.LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

func (c *Coordinator) visibleLocked() []model.LogEntry {
	var out []model.LogEntry
	rx := c.search.FilterPattern()
	for _, e := range c.store.Entries() {
		if c.filter.Visible(e, rx) {
			out = append(out, e)
		}
	}
	return out
}

func (c *Coordinator) entryVisibleLocked(e model.LogEntry) bool {
	return c.filter.Visible(e, c.search.FilterPattern())
}

// refreshLocked re-derives everything that depends on the predicates: the
// search match list and the rendered visible sequence.
func (c *Coordinator) refreshLocked() {
	c.search.Recompute(c.store.Entries(), c.entryVisibleLocked)
	c.renderer.RebuildAll(c.visibleLocked())
}

// ToggleLevel flips a level filter and refreshes.
func (c *Coordinator) ToggleLevel(level string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.ToggleLevel(level)
	c.refreshLocked()
}

// ToggleTag flips a tag in the allow-list and refreshes.
func (c *Coordinator) ToggleTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.ToggleTag(tag)
	c.refreshLocked()
}

// ToggleExcludeTag flips a tag in the exclusion set and refreshes.
func (c *Coordinator) ToggleExcludeTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.ToggleExcludeTag(tag)
	c.refreshLocked()
}

// ToggleTerminal flips a terminal selection and refreshes.
func (c *Coordinator) ToggleTerminal(terminal int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.ToggleTerminal(terminal)
	c.refreshLocked()
}

// SetSearchQuery replaces the query text and refreshes. Callers coalesce
// keystrokes through a search.Debouncer before reaching here.
func (c *Coordinator) SetSearchQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search.SetQuery(q)
	c.refreshLocked()
}

// CycleSearchMode advances find → regex → filter → find and refreshes.
func (c *Coordinator) CycleSearchMode() search.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.search.CycleMode()
	c.refreshLocked()
	return m
}

// SearchNext advances the match pointer with wraparound.
func (c *Coordinator) SearchNext() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search.Next()
}

// SearchPrev moves the match pointer backward with wraparound.
func (c *Coordinator) SearchPrev() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search.Prev()
}

// SetAutoScroll gates the scroll-to-bottom hint sent after appends.
func (c *Coordinator) SetAutoScroll(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoScroll = on
}

// SessionState is a point-in-time snapshot for UI surfaces.
type SessionState struct {
	Total          int      `json:"total"`
	Visible        int      `json:"visible"`
	Tags           []string `json:"tags"`
	Terminals      []int    `json:"terminals"`
	EnabledLevels  []string `json:"enabled_levels"`
	ActiveTags     []string `json:"active_tags"`
	ExcludedTags   []string `json:"excluded_tags"`
	SelectedTerms  []int    `json:"selected_terminals"`
	AllTerminals   bool     `json:"all_terminals"`
	SearchMode     string   `json:"search_mode"`
	SearchQuery    string   `json:"search_query"`
	SearchMatches  int      `json:"search_matches"`
	CurrentMatch   int      `json:"current_match"`
	CurrentMatchID *uint64  `json:"current_match_id,omitempty"`
	AutoScroll     bool     `json:"auto_scroll"`
}

// State snapshots the session for UI consumption.
func (c *Coordinator) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := SessionState{
		Total:         c.store.Len(),
		Visible:       len(c.visibleLocked()),
		Tags:          c.store.Tags(),
		Terminals:     c.store.Terminals(),
		EnabledLevels: c.filter.EnabledLevels(),
		ActiveTags:    c.filter.ActiveTags(),
		ExcludedTags:  c.filter.ExcludedTags(),
		SelectedTerms: c.filter.SelectedTerminals(),
		AllTerminals:  c.filter.AllTerminals(),
		SearchMode:    c.search.Mode().String(),
		SearchQuery:   c.search.Query(),
		SearchMatches: len(c.search.Matches()),
		CurrentMatch:  c.search.Current(),
		AutoScroll:    c.autoScroll,
	}
	if id, ok := c.search.CurrentID(); ok {
		s.CurrentMatchID = &id
	}
	return s
}

// Matches returns the current search match ids in visible-set order.
func (c *Coordinator) Matches() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint64(nil), c.search.Matches()...)
}

// Len returns the number of stored entries.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Tags returns the distinct tags seen, sorted.
func (c *Coordinator) Tags() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Tags()
}

// Terminals returns the terminal ids seen, sorted.
func (c *Coordinator) Terminals() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Terminals()
}
