package trapbuilder

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sanmill-go/morrispdb/internal/applog"
	"github.com/sanmill-go/morrispdb/internal/board"
	"github.com/sanmill-go/morrispdb/internal/game"
	"github.com/sanmill-go/morrispdb/internal/pdb"
	"github.com/sanmill-go/morrispdb/internal/sector"
	"github.com/sanmill-go/morrispdb/internal/store"
	"github.com/sanmill-go/morrispdb/internal/trapdb"
)

// SectorTimeout bounds a single sector's sweep, matching the original's
// watchdog note in §4.10 so one pathological sector cannot stall the whole
// build.
const SectorTimeout = 300 * time.Second

// CheckpointInterval is the minimum spacing between checkpoint writes,
// grounded on CheckpointWriter::min_interval_seconds.
const CheckpointInterval = 15 * time.Second

// foundTrap is one classified position, carried from a sector worker to the
// collector.
type foundTrap struct {
	key   uint64
	mask  trapdb.Mask
	wdl   int8
	steps int16
}

// Builder sweeps every sector of an opened PDB, classifying each reachable
// stm-to-move position and accumulating the result into a mergeable trap
// table, grounded on perfect_trap_builder.cpp's top-level driver.
type Builder struct {
	db      *pdb.DB
	rules   *board.Rules
	graph   *sector.Graph
	variant board.Variant

	cacheCapacity int

	mu       sync.Mutex
	traps    map[uint64]foundTrap
	selfN    int64
	blockN   int64
	scannedN int64

	log *applog.Logger
}

// NewBuilder prepares a builder over every sector BuildGraph discovers for
// variant, driven by the already-opened PDB db.
func NewBuilder(db *pdb.DB, graph *sector.Graph, cacheCapacity int) *Builder {
	return &Builder{
		db:            db,
		rules:         db.Rules,
		graph:         graph,
		variant:       db.Variant,
		cacheCapacity: cacheCapacity,
		traps:         make(map[uint64]foundTrap),
		log:           applog.New("trapbuilder"),
	}
}

// Result summarizes a completed (or cancelled) build, ready to hand to
// trapdb.DB or to WriteFile.
type Result struct {
	Traps            map[uint64]foundTrap
	SelfMillTraps    int64
	BlockMillTraps   int64
	PositionsScanned int64
}

// Run sweeps every sector concurrently (one errgroup goroutine per pending
// sector; no limit is set on the group, so the worker count is not bounded),
// checkpointing progress to st as sectors complete and honoring a prior
// checkpoint to skip sectors already marked done. SIGTERM/SIGINT trigger a
// graceful stop after the in-flight sectors finish; unlike the original's
// SIGSEGV/SIGABRT/SIGFPE/SIGILL handlers (which only log before the process
// dies — those signals are not interceptable the Go way since a Go program
// cannot safely continue after most of them), Go's os/signal only meaningfully
// intercepts terminating signals like SIGTERM/SIGINT, so that is all this
// installs.
func (b *Builder) Run(ctx context.Context, st *store.Store, snapshotDir string) (*Result, error) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	lock, err := acquireBuildLock(snapshotDir)
	if err != nil {
		return nil, err
	}
	defer lock.release()

	ckpt, err := st.LoadCheckpoint()
	if err != nil {
		return nil, fmt.Errorf("trapbuilder: loading checkpoint: %w", err)
	}
	if ckpt == nil {
		ckpt = &store.BuilderCheckpoint{Variant: b.variant}
	}

	if prior, err := LoadSnapshot(snapshotDir, snapshotName(b.variant)); err != nil {
		b.log.Diagnosticf("ignoring unreadable snapshot: %v", err)
	} else if prior != nil {
		b.mu.Lock()
		b.traps = prior
		b.mu.Unlock()
		b.log.Diagnosticf("resumed %d trap records from snapshot", len(prior))
	}

	var lastCheckpoint time.Time
	var ckptMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range b.graph.Sectors() {
		id := id
		if ckpt.IsSectorDone(id) {
			continue
		}
		g.Go(func() error {
			sectorCtx, cancel := context.WithTimeout(gctx, SectorTimeout)
			defer cancel()

			self, block, scanned, err := b.sweepSector(sectorCtx, id)
			if err != nil {
				return fmt.Errorf("trapbuilder: sector %s: %w", id, err)
			}

			b.mu.Lock()
			b.selfN += int64(self)
			b.blockN += int64(block)
			b.mu.Unlock()

			ckptMu.Lock()
			ckpt.MarkSectorDone(id, int64(self+block), scanned)
			due := time.Since(lastCheckpoint) >= CheckpointInterval
			if due {
				lastCheckpoint = time.Now()
			}
			ckptMu.Unlock()

			if due {
				if err := st.SaveCheckpoint(ckpt); err != nil {
					b.log.Diagnosticf("checkpoint save failed: %v", err)
				}
				b.mu.Lock()
				snapshot := &Result{Traps: b.traps}
				b.mu.Unlock()
				if err := WriteSnapshot(snapshotDir, snapshotName(b.variant), snapshot); err != nil {
					b.log.Diagnosticf("snapshot save failed: %v", err)
				}
			}

			b.log.Diagnosticf("sector %s done: %d traps (self %d, block %d) from %d positions scanned", id, self+block, self, block, scanned)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := st.SaveCheckpoint(ckpt); err != nil {
		b.log.Diagnosticf("final checkpoint save failed: %v", err)
	}

	b.mu.Lock()
	result := &Result{
		Traps:            b.traps,
		SelfMillTraps:    b.selfN,
		BlockMillTraps:   b.blockN,
		PositionsScanned: b.scannedN,
	}
	b.mu.Unlock()

	if err := WriteSnapshot(snapshotDir, snapshotName(b.variant), result); err != nil {
		b.log.Diagnosticf("final snapshot save failed: %v", err)
	}

	return result, nil
}

// sweepSector enumerates every hash index of id's sector file for both
// sides to move, classifies each one, and merges its findings into the
// builder's shared collector (ThreadSafeCollector::merge_results).
func (b *Builder) sweepSector(ctx context.Context, id sector.Id) (self, block int, scanned int64, err error) {
	h, err := sector.NewHash(id.W, id.B)
	if err != nil {
		return 0, 0, 0, err
	}

	cache := NewEvalCache(b.cacheCapacity)

	for side := 0; side < 2; side++ {
		for i := int64(0); i < h.HashCount; i++ {
			select {
			case <-ctx.Done():
				return self, block, scanned, ctx.Err()
			default:
			}

			packed, err := h.InverseIndex(i)
			if err != nil {
				return self, block, scanned, err
			}
			bd := board.FromPacked48(packed)
			if !bd.Valid() {
				continue
			}

			s := game.State{
				Board:       bd,
				WF:          id.WF,
				BF:          id.BF,
				SideToMove:  side,
				Phase:       phaseOf(id),
			}
			scanned++

			if !couldBeTrap(b.rules, bd, s) {
				continue
			}

			mask, wdl, steps, err := classify(b.db, cache, b.rules, s)
			if err != nil {
				continue // unreachable/illegal sub-position; skip per original's PerfectErrors::clearError idiom
			}
			if mask == 0 {
				continue
			}

			key := trapdb.KeyForState(s)
			b.record(key, mask, wdl, steps)
			if mask&trapdb.SelfMillLoss != 0 {
				self++
			}
			if mask&trapdb.BlockMillLoss != 0 {
				block++
			}
		}
	}

	b.mu.Lock()
	b.scannedN += scanned
	b.mu.Unlock()

	return self, block, scanned, nil
}

// snapshotName derives a per-variant snapshot file stem so concurrent
// builds (e.g. std vs. lask) never clobber each other's checkpoints.
func snapshotName(v board.Variant) string {
	return fmt.Sprintf("%s_traps", v)
}

// phaseOf reports whether id's sector is still in the placing phase (either
// side still has pieces to place).
func phaseOf(id sector.Id) game.Phase {
	if id.WF > 0 || id.BF > 0 {
		return game.Placing
	}
	return game.Moving
}

// record merges a classified trap into the shared table, applying the same
// OR-mask/stronger-WDL rule as trapdb.DB.merge and the original's
// merge_results.
func (b *Builder) record(key uint64, mask trapdb.Mask, wdl int8, steps int16) {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, ok := b.traps[key]
	if !ok {
		b.traps[key] = foundTrap{key: key, mask: mask, wdl: wdl, steps: steps}
		return
	}
	existing.mask |= mask
	if wdl > existing.wdl {
		existing.wdl = wdl
		existing.steps = steps
	}
	b.traps[key] = existing
}
