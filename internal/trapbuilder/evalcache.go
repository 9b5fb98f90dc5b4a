package trapbuilder

import (
	"github.com/cespare/xxhash/v2"

	"github.com/sanmill-go/morrispdb/internal/sector"
)

// EvalCache is a thread-local, fixed-size lookup cache for positions a
// builder worker has already resolved this sweep, grounded on
// TranspositionTable in the teacher's internal/engine/transposition.go:
// same power-of-2 sizing and always-replace slot idiom, repurposed from
// caching alpha-beta bounds to caching resolved sector EvalElem results, per
// §4.10's "per-worker eval cache, on the order of 5000 positions" note.
// Unlike TranspositionTable, one EvalCache is allocated fresh per sector
// (sweepSector never reuses an instance across sectors), so there is no
// multi-sweep staleness to track — the teacher's age-stamped generation
// counter has nothing to distinguish here and is not carried over.
type EvalCache struct {
	entries []cacheEntry
	mask    uint64

	hits, probes uint64
}

type cacheEntry struct {
	key   uint64
	elem  sector.EvalElem
	valid bool
}

// DefaultCapacity matches §4.10's "on the order of 5000 positions" sizing
// note, rounded up to the next power of 2 for mask-based indexing.
const DefaultCapacity = 8192

// NewEvalCache creates a cache sized to at least capacity entries, rounded
// up to the next power of 2.
func NewEvalCache(capacity int) *EvalCache {
	n := nextPowerOf2(uint64(capacity))
	return &EvalCache{
		entries: make([]cacheEntry, n),
		mask:    n - 1,
	}
}

func nextPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// Key derives the cache key for a position: the packed 48-bit board, the
// side to move, and the pending-removal (KLE) flag, hashed with xxhash so
// collisions across the ~2^48 board space stay negligible at this table
// size.
func Key(packed uint64, sideToMove int, kle bool) uint64 {
	var buf [10]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(packed >> (8 * i))
	}
	buf[8] = byte(sideToMove)
	if kle {
		buf[9] = 1
	}
	return xxhash.Sum64(buf[:])
}

// Get returns the cached evaluation for key, if present and current.
func (c *EvalCache) Get(key uint64) (sector.EvalElem, bool) {
	c.probes++
	idx := key & c.mask
	e := &c.entries[idx]
	if e.valid && e.key == key {
		c.hits++
		return e.elem, true
	}
	return sector.EvalElem{}, false
}

// Put stores elem under key, always replacing whatever was in the slot
// (unlike a search TT, a builder never needs to prefer deeper results — a
// resolved EvalElem is exact and final).
func (c *EvalCache) Put(key uint64, elem sector.EvalElem) {
	idx := key & c.mask
	c.entries[idx] = cacheEntry{key: key, elem: elem, valid: true}
}

// HitRate returns the cache hit rate as a percentage; the builder does not
// log it.
func (c *EvalCache) HitRate() float64 {
	if c.probes == 0 {
		return 0
	}
	return float64(c.hits) / float64(c.probes) * 100
}
