package trapbuilder

import (
	"testing"

	"github.com/sanmill-go/morrispdb/internal/sector"
)

func TestEvalCachePutGetRoundTrip(t *testing.T) {
	c := NewEvalCache(16)
	key := Key(0xABCDEF, 1, false)
	elem := sector.EvalElem{Key1: 3, Key2: 7}

	if _, ok := c.Get(key); ok {
		t.Fatal("expected a miss before any Put")
	}
	c.Put(key, elem)
	got, ok := c.Get(key)
	if !ok || got != elem {
		t.Errorf("got %+v, %v; want %+v, true", got, ok, elem)
	}
}

func TestEvalCacheHitRateTracksProbes(t *testing.T) {
	c := NewEvalCache(4)
	key := Key(1, 0, false)
	c.Get(key) // miss
	c.Put(key, sector.EvalElem{})
	c.Get(key) // hit
	if got := c.HitRate(); got != 50 {
		t.Errorf("HitRate() = %v, want 50", got)
	}
}

func TestNewEvalCacheRoundsUpToPowerOf2(t *testing.T) {
	c := NewEvalCache(5000)
	if len(c.entries) != 8192 {
		t.Errorf("expected capacity rounded to 8192, got %d", len(c.entries))
	}
}
