// Package store provides persistent storage for façade settings and trap
// builder checkpoints, grounded on Storage in the teacher's
// internal/storage/storage.go (same BadgerDB-backed JSON-blob idiom),
// repurposed from user game preferences to engine configuration and from
// win/loss statistics to trap database build progress.
package store

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/sanmill-go/morrispdb/internal/board"
	"github.com/sanmill-go/morrispdb/internal/sector"
)

const (
	keySettings   = "settings"
	keyCheckpoint = "builder_checkpoint"
)

// Algorithm selects the move-ranking policy of §4.8/§4.11.
type Algorithm int

const (
	AlgorithmLexicographic Algorithm = iota
	AlgorithmStrictMax
)

func (a Algorithm) String() string {
	if a == AlgorithmStrictMax {
		return "strict_max"
	}
	return "lexicographic"
}

// Settings mirrors the façade's external configuration surface (§6,
// spec.md's perfect_database_path / use_perfect_database / variant /
// algorithm / shuffling_enabled knobs), persisted so a façade restart
// remembers its last configuration.
type Settings struct {
	PerfectDatabasePath string         `json:"perfect_database_path"`
	UsePerfectDatabase  bool           `json:"use_perfect_database"`
	Variant             board.Variant  `json:"variant"`
	Algorithm           Algorithm      `json:"algorithm"`
	ShufflingEnabled    bool           `json:"shuffling_enabled"`
	LastUpdated         time.Time      `json:"last_updated"`
}

// DefaultSettings returns the façade's out-of-the-box configuration.
func DefaultSettings() *Settings {
	return &Settings{
		UsePerfectDatabase: true,
		Variant:            board.Standard,
		Algorithm:          AlgorithmLexicographic,
		ShufflingEnabled:   true,
		LastUpdated:        time.Now(),
	}
}

// SectorProgress is one sector's trap-builder completion record.
type SectorProgress struct {
	ID               sector.Id `json:"id"`
	Done             bool      `json:"done"`
	TrapsFound       int64     `json:"traps_found"`
	PositionsScanned int64     `json:"positions_scanned"`
}

// BuilderCheckpoint is the badger-mirrored summary of a trap database build
// in progress, grounded on §4.10's resume tracker ("a .progress file naming
// the sectors already completed"). trapbuilder.Builder.Run reads it to skip
// completed sectors and saves it as sectors finish; the trap records
// themselves are kept in the builder's zstd snapshot file in its output
// directory, not here.
type BuilderCheckpoint struct {
	Variant         board.Variant    `json:"variant"`
	Sectors         []SectorProgress `json:"sectors"`
	LastCheckpoint  time.Time        `json:"last_checkpoint"`
}

// Store wraps BadgerDB for persistent façade settings and builder
// checkpoint mirroring.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) the settings/checkpoint database.
func Open() (*Store, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSettings persists the façade configuration.
func (s *Store) SaveSettings(cfg *Settings) error {
	cfg.LastUpdated = time.Now()

	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keySettings), data)
	})
}

// LoadSettings loads the façade configuration, returning defaults if none
// has been saved yet.
func (s *Store) LoadSettings() (*Settings, error) {
	cfg := DefaultSettings()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keySettings))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, cfg)
		})
	})

	return cfg, err
}

// SaveCheckpoint mirrors the trap builder's progress into the store.
func (s *Store) SaveCheckpoint(ckpt *BuilderCheckpoint) error {
	ckpt.LastCheckpoint = time.Now()

	data, err := json.Marshal(ckpt)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyCheckpoint), data)
	})
}

// LoadCheckpoint loads the mirrored builder progress, returning a nil
// checkpoint and no error if none has been saved yet.
func (s *Store) LoadCheckpoint() (*BuilderCheckpoint, error) {
	var ckpt *BuilderCheckpoint

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyCheckpoint))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		ckpt = &BuilderCheckpoint{}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, ckpt)
		})
	})

	return ckpt, err
}

// MarkSectorDone updates (or appends) a sector's completion record within a
// checkpoint, used by the builder after each sector finishes (§4.10).
func (ck *BuilderCheckpoint) MarkSectorDone(id sector.Id, traps, scanned int64) {
	for i := range ck.Sectors {
		if ck.Sectors[i].ID == id {
			ck.Sectors[i].Done = true
			ck.Sectors[i].TrapsFound = traps
			ck.Sectors[i].PositionsScanned = scanned
			return
		}
	}
	ck.Sectors = append(ck.Sectors, SectorProgress{
		ID: id, Done: true, TrapsFound: traps, PositionsScanned: scanned,
	})
}

// IsSectorDone reports whether id was already completed by a prior run,
// letting the builder skip it on resume.
func (ck *BuilderCheckpoint) IsSectorDone(id sector.Id) bool {
	if ck == nil {
		return false
	}
	for _, sp := range ck.Sectors {
		if sp.ID == id && sp.Done {
			return true
		}
	}
	return false
}
