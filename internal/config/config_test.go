package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sanmill-go/morrispdb/internal/board"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Variant != board.Standard {
		t.Errorf("expected default variant Standard, got %v", cfg.Variant)
	}
	if cfg.Algorithm != AlgorithmLexicographic {
		t.Errorf("expected default algorithm lexicographic, got %v", cfg.Algorithm)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"variant":"lask","algorithm":"strict_max","use_perfect_database":false}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Variant != board.Lasker {
		t.Errorf("expected Lasker variant, got %v", cfg.Variant)
	}
	if cfg.Algorithm != AlgorithmStrictMax {
		t.Errorf("expected strict_max algorithm, got %v", cfg.Algorithm)
	}
	if cfg.UsePerfectDatabase {
		t.Error("expected use_perfect_database overridden to false")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SANMILL_TRAP_THREADS", "4")
	t.Setenv("SANMILL_TRAP_CACHE_SIZE", "2048")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TrapThreads != 4 {
		t.Errorf("expected TrapThreads 4, got %d", cfg.TrapThreads)
	}
	if cfg.TrapCacheSize != 2048 {
		t.Errorf("expected TrapCacheSize 2048, got %d", cfg.TrapCacheSize)
	}
}
