package feed

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rkot1/rtt-viewer/internal/watcher"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const followerBuffer = 512

// Follower reads newly appended bytes from watched capture files, runs them
// through a per-file Decoder, and emits decoded lines.
type Follower struct {
	mu     sync.Mutex
	files  map[string]*followedFile
	out    chan Line
	watch  *watcher.Watcher
	start  bool // read each file from the start instead of the end
	logger *zap.Logger
}

type followedFile struct {
	path   string
	file   *os.File
	offset int64
	dec    *Decoder
}

// NewFollower creates a Follower over the given Watcher. When fromStart is
// set, existing file contents are replayed before tailing.
func NewFollower(w *watcher.Watcher, fromStart bool, logger *zap.Logger) *Follower {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Follower{
		files:  make(map[string]*followedFile),
		out:    make(chan Line, followerBuffer),
		watch:  w,
		start:  fromStart,
		logger: logger,
	}
}

// Lines returns the channel where decoded lines are sent. It is closed when
// Start returns.
func (f *Follower) Lines() <-chan Line {
	return f.out
}

// Start begins processing watcher events. Blocks until the context is
// cancelled.
func (f *Follower) Start(ctx context.Context) {
	defer close(f.out)

	for _, p := range f.watch.Paths() {
		f.openFile(p, !f.start)
		if f.start {
			f.readNewBytes(p)
		}
	}

	for {
		select {
		case <-ctx.Done():
			f.closeAll()
			return
		case ev, ok := <-f.watch.Events:
			if !ok {
				f.closeAll()
				return
			}
			f.handleEvent(ev)
		}
	}
}

func (f *Follower) handleEvent(ev watcher.Event) {
	switch {
	case ev.Op&fsnotify.Write != 0:
		f.readNewBytes(ev.Path)

	case ev.Op&fsnotify.Create != 0:
		// A file that appears while tailing is all new data, and its first
		// bytes may land on disk before we get to open it.
		f.openFile(ev.Path, false)
		f.readNewBytes(ev.Path)

	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		// The watcher covers the directory, so a replacement file will
		// arrive as a Create event. Nothing to re-arm here.
		f.closeFile(ev.Path)
	}
}

// openFile opens a capture file for following. With atEnd the initial
// offset is the end of the file, so only new data is emitted.
func (f *Follower) openFile(path string, atEnd bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.files[path]; exists {
		return
	}

	file, err := os.Open(path)
	if err != nil {
		f.logger.Warn("cannot open capture file", zap.String("path", path), zap.Error(err))
		return
	}

	var offset int64
	if atEnd {
		offset, _ = file.Seek(0, io.SeekEnd)
	}

	f.files[path] = &followedFile{
		path:   path,
		file:   file,
		offset: offset,
		dec:    NewDecoder(),
	}
}

// readNewBytes reads everything appended since the last offset and decodes
// it. A shrunken file means truncation or rotation in place; follow them
// from the top with fresh decoder state.
func (f *Follower) readNewBytes(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tf, ok := f.files[path]
	if !ok {
		return
	}

	info, err := tf.file.Stat()
	if err != nil {
		return
	}
	if info.Size() < tf.offset {
		tf.offset = 0
		tf.dec.Reset()
	}

	if _, err := tf.file.Seek(tf.offset, io.SeekStart); err != nil {
		return
	}

	buf := make([]byte, 64*1024)
	for {
		n, err := tf.file.Read(buf)
		if n > 0 {
			tf.offset += int64(n)
			for _, line := range tf.dec.Write(buf[:n]) {
				f.out <- line
			}
		}
		if err != nil {
			return
		}
	}
}

func (f *Follower) closeFile(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if tf, ok := f.files[path]; ok {
		tf.file.Close()
		delete(f.files, path)
	}
}

func (f *Follower) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, tf := range f.files {
		tf.file.Close()
	}
	f.files = make(map[string]*followedFile)
}
