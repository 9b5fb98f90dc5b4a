package sector

import (
	"container/list"
	"context"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/sanmill-go/morrispdb/internal/board"
)

// LRU is the process-wide sector cache described in §5: at most 8 open
// sectors (Hash tables + file handle + exception map) held at once, evicting
// the least-recently-used sector's tables when a 9th is requested. Grounded
// on CachedProber in the teacher's internal/tablebase/cached.go, replacing
// its position-keyed value cache with a sector-keyed resource cache — the
// thing being cached here is the opened Hash/File pair itself, not a lookup
// result, since those are the expensive-to-rebuild resource per §4.4/§4.5.
type LRU struct {
	dir     string
	variant board.Variant
	cap     int

	mu      sync.Mutex
	ll      *list.List
	entries map[Id]*list.Element

	hits, misses, evictions metric.Int64Counter
}

type lruEntry struct {
	id   Id
	file *File
}

// NewLRU creates a sector cache rooted at dir for the given variant, with
// capacity slots (spec default 8). meter may be nil, in which case
// hit/miss/eviction counters are not recorded.
func NewLRU(dir string, variant board.Variant, capacity int, meter metric.Meter) *LRU {
	l := &LRU{
		dir:     dir,
		variant: variant,
		cap:     capacity,
		ll:      list.New(),
		entries: make(map[Id]*list.Element),
	}
	if meter != nil {
		l.hits, _ = meter.Int64Counter("sector_lru_hits")
		l.misses, _ = meter.Int64Counter("sector_lru_misses")
		l.evictions, _ = meter.Int64Counter("sector_lru_evictions")
	}
	return l
}

// Get returns the open File for id, opening and caching it on a miss and
// evicting the least-recently-used entry if the cache is at capacity.
func (l *LRU) Get(id Id) (*File, error) {
	l.mu.Lock()
	if el, ok := l.entries[id]; ok {
		l.ll.MoveToFront(el)
		l.count(l.hits)
		f := el.Value.(*lruEntry).file
		l.mu.Unlock()
		return f, nil
	}
	l.count(l.misses)
	l.mu.Unlock()

	f, err := Open(l.dir, l.variant, id)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Another goroutine may have opened and cached the same sector while
	// this one was doing I/O unlocked; prefer the already-cached handle.
	if el, ok := l.entries[id]; ok {
		l.ll.MoveToFront(el)
		f.Close()
		return el.Value.(*lruEntry).file, nil
	}

	el := l.ll.PushFront(&lruEntry{id: id, file: f})
	l.entries[id] = el

	if l.ll.Len() > l.cap {
		l.evictOldest()
	}
	return f, nil
}

func (l *LRU) evictOldest() {
	back := l.ll.Back()
	if back == nil {
		return
	}
	l.ll.Remove(back)
	ent := back.Value.(*lruEntry)
	delete(l.entries, ent.id)
	ent.file.Close()
	l.count(l.evictions)
}

func (l *LRU) count(c metric.Int64Counter) {
	if c == nil {
		return
	}
	c.Add(context.Background(), 1)
}

// Len returns the number of currently open sectors.
func (l *LRU) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ll.Len()
}

// CloseAll closes every open sector and empties the cache.
func (l *LRU) CloseAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for el := l.ll.Front(); el != nil; el = el.Next() {
		el.Value.(*lruEntry).file.Close()
	}
	l.ll.Init()
	l.entries = make(map[Id]*list.Element)
}
