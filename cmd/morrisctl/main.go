// Command morrisctl is the thin CLI a host drives the façade through
// outside of an embedding process: query a position, ask for a best move,
// or run the Trap DB builder sweep. Grounded on
// cmd/chessplay-uci/main.go's flag.Parse-then-dispatch idiom, generalized
// from chessplay-uci's single UCI-loop entry point to a subcommand
// dispatcher since §6 exposes several independent operations rather than
// one long-running protocol loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sanmill-go/morrispdb/internal/board"
	"github.com/sanmill-go/morrispdb/internal/config"
	"github.com/sanmill-go/morrispdb/internal/facade"
	"github.com/sanmill-go/morrispdb/internal/pdb"
	"github.com/sanmill-go/morrispdb/internal/sector"
	"github.com/sanmill-go/morrispdb/internal/store"
	"github.com/sanmill-go/morrispdb/internal/trapbuilder"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "evaluate":
		err = runEvaluate(args)
	case "bestmove":
		err = runBestMove(args)
	case "build-traps":
		err = runBuildTraps(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `morrisctl <command> [flags]

Commands:
  evaluate      evaluate a position against the perfect database
  bestmove      pick a move for a position via the trap-aware picker
  build-traps   sweep the perfect database and write its Trap DB`)
}

// positionFlags is the §6 wire representation every query subcommand
// shares: raw occupancy bitboards plus pieces-in-hand and side to move.
type positionFlags struct {
	white, black    string
	wf, bf, side    int
	onlyStoneTaking bool
}

func bindPositionFlags(fs *flag.FlagSet) *positionFlags {
	p := &positionFlags{}
	fs.StringVar(&p.white, "white", "0", "white occupancy bitboard (hex, e.g. 0x10)")
	fs.StringVar(&p.black, "black", "0", "black occupancy bitboard (hex, e.g. 0x20)")
	fs.IntVar(&p.wf, "wf", 0, "white pieces left to place")
	fs.IntVar(&p.bf, "bf", 0, "black pieces left to place")
	fs.IntVar(&p.side, "side", 0, "side to move (0=white, 1=black)")
	fs.BoolVar(&p.onlyStoneTaking, "kle", false, "a mill has just closed and a removal is pending")
	return p
}

func (p *positionFlags) bits() (w, b uint32, err error) {
	wv, err := strconv.ParseUint(p.white, 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad -white value %q: %w", p.white, err)
	}
	bv, err := strconv.ParseUint(p.black, 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad -black value %q: %w", p.black, err)
	}
	return uint32(wv), uint32(bv), nil
}

func openEngine(dbPath, variantName string) (*facade.Engine, error) {
	v, ok := board.ParseVariant(variantName)
	if !ok {
		return nil, fmt.Errorf("unknown variant %q", variantName)
	}
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	eng, err := facade.Init(dbPath, v, false, 8)
	if err != nil {
		return nil, err
	}
	eng.MinFreeBytes = cfg.SectorExportMinFreeBytes
	return eng, nil
}

func runEvaluate(args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	dbPath := fs.String("db", "", "perfect database directory")
	variantName := fs.String("variant", "std", "variant (std, lask, mora)")
	pos := bindPositionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		return fmt.Errorf("-db is required")
	}

	eng, err := openEngine(*dbPath, *variantName)
	if err != nil {
		return err
	}
	defer eng.Deinit()

	w, b, err := pos.bits()
	if err != nil {
		return err
	}
	wdl, steps, ok, err := eng.Evaluate(w, b, pos.wf, pos.bf, pos.side, pos.onlyStoneTaking)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("undetermined: a removal is pending")
		return nil
	}
	fmt.Printf("wdl=%d steps=%d\n", wdl, steps)
	return nil
}

func runBestMove(args []string) error {
	fs := flag.NewFlagSet("bestmove", flag.ExitOnError)
	dbPath := fs.String("db", "", "perfect database directory")
	variantName := fs.String("variant", "std", "variant (std, lask, mora)")
	pos := bindPositionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		return fmt.Errorf("-db is required")
	}

	eng, err := openEngine(*dbPath, *variantName)
	if err != nil {
		return err
	}
	defer eng.Deinit()

	w, b, err := pos.bits()
	if err != nil {
		return err
	}
	tok, err := eng.BestMove(w, b, pos.wf, pos.bf, pos.side, pos.onlyStoneTaking)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

// runBuildTraps implements the §4.10 Trap DB builder entry point: open the
// PDB read-only, build the sector dependency graph, and sweep it, resuming
// from whatever checkpoint the settings store already holds.
func runBuildTraps(args []string) error {
	fs := flag.NewFlagSet("build-traps", flag.ExitOnError)
	dbPath := fs.String("db", "", "perfect database directory (read) and Trap DB output directory (write)")
	variantName := fs.String("variant", "std", "variant (std, lask, mora)")
	configPath := fs.String("config", "", "optional JSON config file overriding trap builder tuning")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		return fmt.Errorf("-db is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	v, ok := board.ParseVariant(*variantName)
	if !ok {
		return fmt.Errorf("unknown variant %q", *variantName)
	}

	db, err := pdb.Open(*dbPath, v, false, 8)
	if err != nil {
		return fmt.Errorf("opening perfect database: %w", err)
	}
	defer db.Close()

	graph := sector.BuildGraph(v, db.Rules.MaxPieces)

	st, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening settings store: %w", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := trapbuilder.NewBuilder(db, graph, cfg.TrapCacheSize)
	result, err := b.Run(ctx, st, *dbPath)
	if err != nil {
		return fmt.Errorf("trap builder sweep: %w", err)
	}

	fmt.Printf("scanned %d positions, found %d self-mill traps and %d block-mill traps (%d total records)\n",
		result.PositionsScanned, result.SelfMillTraps, result.BlockMillTraps, len(result.Traps))
	return nil
}
