// Package config is the struct-tag driven settings loader for the façade
// and the trap DB builder, mirroring the teacher's flag-based
// cmd/chessplay-uci init combined with internal/storage's persisted
// preferences: some knobs come from a config file, others from
// environment variables, with documented defaults either way.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/sanmill-go/morrispdb/internal/board"
)

// Algorithm selects the move-ranking policy of §4.8/§4.11.
type Algorithm string

const (
	AlgorithmLexicographic Algorithm = "lexicographic"
	AlgorithmStrictMax     Algorithm = "strict_max"
)

// Config is the façade's process-wide configuration surface (§6).
type Config struct {
	PerfectDatabasePath string        `json:"perfect_database_path"`
	UsePerfectDatabase  bool          `json:"use_perfect_database"`
	Variant             board.Variant `json:"-"`
	VariantName         string        `json:"variant"`
	Algorithm           Algorithm     `json:"algorithm"`
	ShufflingEnabled    bool          `json:"shuffling_enabled"`

	// Trap DB builder tuning, overridable by the three SANMILL_* env vars
	// per spec.md §5/§9. Only TrapCacheSize reaches the builder (as each
	// sector's EvalCache capacity); TrapThreads and TrapIntraSectorThreads
	// are loaded but not read anywhere, and Builder.Run starts one goroutine
	// per pending sector.
	TrapThreads            int `json:"trap_threads"`
	TrapIntraSectorThreads int `json:"trap_intra_sector_threads"`
	TrapCacheSize          int `json:"trap_cache_size"`

	// SectorExportMinFreeBytes guards the façade's sector_next streaming
	// export against starting on a near-full volume; 0 disables the check.
	SectorExportMinFreeBytes uint64 `json:"sector_export_min_free_bytes"`
}

// Default returns the out-of-the-box configuration.
func Default() *Config {
	return &Config{
		UsePerfectDatabase:     true,
		Variant:                board.Standard,
		VariantName:            "std",
		Algorithm:              AlgorithmLexicographic,
		ShufflingEnabled:       true,
		TrapThreads:            0,
		TrapIntraSectorThreads: 1,
		TrapCacheSize:          8192,
	}
}

// Load reads a JSON configuration file at path (if non-empty and it
// exists), then applies SANMILL_* environment overrides on top, matching
// perfect_trap_builder.cpp's getenv-based tuning.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// no config file yet: defaults only
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if v, ok := board.ParseVariant(cfg.VariantName); ok {
		cfg.Variant = v
	} else if cfg.VariantName != "" {
		return nil, fmt.Errorf("config: unknown variant %q", cfg.VariantName)
	}

	applyEnvInt("SANMILL_TRAP_THREADS", &cfg.TrapThreads)
	applyEnvInt("SANMILL_INTRA_SECTOR_THREADS", &cfg.TrapIntraSectorThreads)
	applyEnvInt("SANMILL_TRAP_CACHE_SIZE", &cfg.TrapCacheSize)

	return cfg, nil
}

func applyEnvInt(name string, dst *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
