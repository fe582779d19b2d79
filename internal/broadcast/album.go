package broadcast

import (
	"log/slog"
	"sync"
	"time"
)

// AlbumMeta carries the submission context of a pending album: who sent it
// and which private chat receives the result summary.
type AlbumMeta struct {
	OperatorID  int64
	ReplyChatID int64
}

// FlushFunc receives a completed album exactly once, after the debounce
// window elapses with no further items for its album ID.
type FlushFunc func(albumID string, items []Item, meta AlbumMeta)

// Aggregator collects media items that share a platform album ID and
// debounces dispatch with a trailing-edge timer: every observed item
// restarts the window, and only a quiet window flushes the album.
// Albums with different IDs proceed independently.
type Aggregator struct {
	window time.Duration
	flush  FlushFunc
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingAlbum
	closed  bool
}

// pendingAlbum is owned by the Aggregator for its lifetime and discarded the
// moment it is flushed. The generation counter invalidates timers that were
// already firing when a new item restarted the window.
type pendingAlbum struct {
	items []Item
	meta  AlbumMeta
	timer *time.Timer
	gen   int
}

// NewAggregator creates an aggregator that flushes completed albums to the
// given callback. The callback runs on a timer goroutine, so it must carry
// its own context.
func NewAggregator(logger *slog.Logger, window time.Duration, flush FlushFunc) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		window:  window,
		flush:   flush,
		logger:  logger.With("component", "album_aggregator"),
		pending: make(map[string]*pendingAlbum),
	}
}

// Observe appends item to the pending album for albumID, creating it on
// first sight, and restarts the debounce window. Meta is captured from the
// first item; later items only contribute content.
func (a *Aggregator) Observe(albumID string, item Item, meta AlbumMeta) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		a.logger.Warn("Dropping album item observed after shutdown", "album_id", albumID)
		return
	}

	p, ok := a.pending[albumID]
	if !ok {
		p = &pendingAlbum{meta: meta}
		a.pending[albumID] = p
		a.logger.Debug("Opened pending album", "album_id", albumID, "operator_id", meta.OperatorID)
	}

	p.items = append(p.items, item)
	p.gen++

	if p.timer != nil {
		p.timer.Stop()
	}
	gen := p.gen
	p.timer = time.AfterFunc(a.window, func() {
		a.fire(albumID, gen)
	})
}

// fire flushes the album if it still exists and no later Observe restarted
// the window. Stale timers that lost the Stop race are ignored here.
func (a *Aggregator) fire(albumID string, gen int) {
	a.mu.Lock()
	p, ok := a.pending[albumID]
	if !ok || p.gen != gen {
		a.mu.Unlock()
		return
	}
	delete(a.pending, albumID)
	items, meta := p.items, p.meta
	a.mu.Unlock()

	a.logger.Info("Flushing completed album", "album_id", albumID, "items", len(items))
	a.flush(albumID, items, meta)
}

// Close stops all pending timers and discards unflushed albums. Items
// observed after Close are dropped.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.closed = true

	for albumID, p := range a.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
		a.logger.Warn("Discarding unflushed album on shutdown", "album_id", albumID, "items", len(p.items))
	}
	a.pending = make(map[string]*pendingAlbum)
}
