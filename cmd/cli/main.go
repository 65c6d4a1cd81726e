package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"energyhub/internal/build"
	"energyhub/internal/climate"
	"energyhub/internal/config"
	"energyhub/internal/milp"
	"energyhub/internal/results"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "build":
		cmdBuild(os.Args[2:])
	case "extract":
		cmdExtract(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli build --config examples/config.yaml --climate examples/climate.csv --out results/model.lp")
	fmt.Println("  cli extract --config examples/config.yaml --climate examples/climate.csv --solution model.sol --out results/operation.csv [--db results.sqlite]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - build writes a CPLEX LP file for an external MILP solver")
	fmt.Println("  - extract rebuilds the same model, applies the solver output and writes mode=PUMPING/GENERATING/IDLE per timestep")
}

// modelFlags are shared by every subcommand that assembles a model.
type modelFlags struct {
	config  *string
	climate *string
	nodes   *[]string
	workers *int
	verbose *bool
}

func addModelFlags(fs *pflag.FlagSet) modelFlags {
	return modelFlags{
		config:  fs.StringP("config", "c", "", "Path to YAML config"),
		climate: fs.String("climate", "", "Path to climate data (.csv or .json)"),
		nodes:   fs.StringSlice("node", nil, "Node(s) to place the technology at (default: config node)"),
		workers: fs.Int("workers", 0, "Concurrent technology builds (0 = GOMAXPROCS)"),
		verbose: fs.BoolP("verbose", "v", false, "Debug logging"),
	}
}

func (f modelFlags) assemble(log *zap.Logger) (*build.Hub, error) {
	if *f.config == "" || *f.climate == "" {
		return nil, fmt.Errorf("--config and --climate are required")
	}
	cfg, err := config.Load(*f.config)
	if err != nil {
		return nil, err
	}
	table, err := climate.Load(*f.climate)
	if err != nil {
		return nil, err
	}
	nodes := *f.nodes
	if len(nodes) == 0 {
		nodes = []string{cfg.Node}
	}
	return build.New(log, *f.workers).Assemble(context.Background(), build.Request{
		Nodes:      nodes,
		Technology: cfg.Technology,
		Climate:    table,
		Model:      cfg.Model,
	})
}

func cmdBuild(args []string) {
	fs := pflag.NewFlagSet("build", pflag.ExitOnError)
	mf := addModelFlags(fs)
	outPath := fs.StringP("out", "o", "results/model.lp", "Output LP path")
	_ = fs.Parse(args)

	log := newLogger(*mf.verbose)
	defer func() { _ = log.Sync() }()

	hub, err := mf.assemble(log)
	if err != nil {
		fatal(err)
	}

	// ensure output dir exists
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fatal(err)
	}
	f, err := os.Create(*outPath)
	if err != nil {
		fatal(err)
	}
	if err := milp.WriteLP(f, hub.Lowered); err != nil {
		f.Close()
		fatal(err)
	}
	if err := f.Close(); err != nil {
		fatal(err)
	}

	st := hub.Result.Model
	fmt.Printf("Wrote %s (%s): %d columns, %d rows\n", *outPath, hub.Options.Transformation, len(hub.Lowered.Vars), len(hub.Lowered.Rows))
	fmt.Printf("Units=%d Variables=%d Binaries=%d Constraints=%d Disjunctions=%d\n",
		len(hub.Units), st.Variables, st.Binaries, st.Constraints, st.Disjunctions)
}

func cmdExtract(args []string) {
	fs := pflag.NewFlagSet("extract", pflag.ExitOnError)
	mf := addModelFlags(fs)
	solPath := fs.StringP("solution", "s", "", "Path to solver output")
	outPath := fs.StringP("out", "o", "results/operation.csv", "Output CSV path")
	dbPath := fs.String("db", "", "Optional: SQLite file to persist the result series")
	tol := fs.Float64("tolerance", 1e-6, "Feasibility tolerance for the solution check")
	_ = fs.Parse(args)

	if *solPath == "" {
		fmt.Println("--solution is required")
		os.Exit(2)
	}

	log := newLogger(*mf.verbose)
	defer func() { _ = log.Sync() }()

	hub, err := mf.assemble(log)
	if err != nil {
		fatal(err)
	}

	sf, err := os.Open(*solPath)
	if err != nil {
		fatal(err)
	}
	values, err := milp.ReadSolution(sf)
	sf.Close()
	if err != nil {
		fatal(err)
	}
	rep, err := hub.Apply(values, *tol)
	if err != nil {
		fatal(err)
	}
	for _, v := range rep.Violations {
		log.Warn("solution violates model", zap.String("violation", v))
	}

	var store *results.Store
	runID := uuid.NewString()
	if *dbPath != "" {
		store, err = results.Open(*dbPath)
		if err != nil {
			fatal(err)
		}
		defer store.Close()
	}

	var ledger []results.LedgerRow
	units := make([]results.Unit, 0, len(rep.Operations))
	for _, no := range rep.Operations {
		rows, err := results.Ledger(no.Node, no.Operation)
		if err != nil {
			fatal(err)
		}
		ledger = append(ledger, rows...)
		units = append(units, results.Unit{Node: no.Node, Operation: no.Operation})
		s := results.Summarize(no.Operation.Size, rows)
		fmt.Printf("%s.%s size=%.3f in=%.3f out=%.3f spill=%.3f final_level=%.3f\n",
			no.Node, no.Operation.Technology, s.Size, s.TotalInput, s.TotalOutput, s.TotalSpilling, s.FinalLevel)
	}

	if store != nil {
		if err := store.SaveRun(runID, units); err != nil {
			fatal(err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fatal(err)
	}
	if err := results.WriteLedgerCSV(*outPath, ledger); err != nil {
		fatal(err)
	}

	fmt.Printf("Wrote %d rows to %s (matched %d variables, %d violations)\n", len(ledger), *outPath, rep.Matched, len(rep.Violations))
	if store != nil {
		fmt.Printf("Saved run %s to %s\n", runID, *dbPath)
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
