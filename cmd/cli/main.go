package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"storage-npv/internal/analysis"
	"storage-npv/internal/config"
	"storage-npv/internal/model"
	"storage-npv/internal/sim"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "simulate":
		cmdSimulate(os.Args[2:])
	case "compare":
		cmdCompare(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli simulate --config examples/config.yaml --traces-out results/trace.csv")
	fmt.Println("  cli compare --configs examples/config.yaml,examples/thermal.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - simulate runs the Monte Carlo NPV simulation and prints distribution stats")
	fmt.Println("  - compare runs several configs and ranks them by median NPV")
	fmt.Println("  - omit --config to use the documented 250 MWh plant defaults")
}

func cmdSimulate(args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (empty = defaults)")
	trials := fs.Int("trials", 0, "Override trial count (0 = config value)")
	seed := fs.Int64("seed", 0, "Override master seed (0 = config value)")
	workers := fs.Int("workers", 0, "Override worker count (0 = config value)")
	tracesOut := fs.String("traces-out", "", "Optional: write per-trial per-year cash-flow CSV")
	verbose := fs.Bool("verbose", false, "Log engine progress to stderr")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	if *trials > 0 {
		cfg.Simulation.Trials = *trials
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *workers > 0 {
		cfg.Simulation.Workers = *workers
	}
	if *tracesOut != "" {
		cfg.Simulation.KeepTraces = true
	}

	rs, summary := run(cfg, *verbose)

	fmt.Printf("Technology: %s (%.0f kWh, %.0f%% efficient)\n",
		cfg.Technology.Name, cfg.Technology.CapacityKWh, cfg.Technology.Efficiency*100)
	fmt.Printf("Trials: %d  Seed: %d  Skipped: %d\n", rs.Trials, rs.Seed, rs.Skipped)
	fmt.Printf("FCI: $%.0f\n", cfg.FCI())
	fmt.Println("")
	printSummary(summary)

	if *tracesOut != "" {
		if err := os.MkdirAll(filepath.Dir(*tracesOut), 0o755); err != nil {
			fatal(err)
		}
		if err := sim.WriteTraceCSV(*tracesOut, rs.Traces); err != nil {
			fatal(err)
		}
		fmt.Printf("\nWrote %d trial traces to %s\n", len(rs.Traces), *tracesOut)
	}
}

func cmdCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	cfgPaths := fs.String("configs", "", "Comma-separated YAML config paths")
	verbose := fs.Bool("verbose", false, "Log engine progress to stderr")
	_ = fs.Parse(args)

	paths := splitPaths(*cfgPaths)
	if len(paths) < 2 {
		fmt.Println("--configs requires at least two paths")
		os.Exit(2)
	}

	type entry struct {
		name    string
		summary *analysis.Summary
	}
	entries := make([]entry, 0, len(paths))
	for _, p := range paths {
		cfg := loadConfig(p)
		_, summary := run(cfg, *verbose)
		name := cfg.Technology.Name
		if name == "" {
			name = filepath.Base(p)
		}
		entries = append(entries, entry{name: name, summary: summary})
	}

	// Highest median NPV first.
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].summary.Median > entries[i].summary.Median {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}

	fmt.Printf("%-4s %-18s %-14s %-14s %-14s %-14s\n", "rank", "name", "p5", "median", "p95", "mean")
	for i, e := range entries {
		fmt.Printf("%-4d %-18s %-14.0f %-14.0f %-14.0f %-14.0f\n",
			i+1, e.name, e.summary.P5, e.summary.Median, e.summary.P95, e.summary.Mean)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fatal(err)
	}
	return cfg
}

func run(cfg *config.Config, verbose bool) (*model.ResultSet, *analysis.Summary) {
	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewProduction()
		if err != nil {
			fatal(err)
		}
		defer l.Sync()
		logger = l
	}

	driver, err := sim.NewDriver(cfg.ToPriceParams(), cfg.ToTechParams(), cfg.ToEconomicParams(),
		cfg.ToSimulationParams(), logger)
	if err != nil {
		fatal(err)
	}
	out, err := driver.Run(context.Background())
	if err != nil {
		fatal(err)
	}
	summary, err := analysis.Summarize(out.NPVs)
	if err != nil {
		fatal(err)
	}
	return out, summary
}

func printSummary(s *analysis.Summary) {
	fmt.Printf("NPV distribution (%d trials):\n", s.Count)
	fmt.Printf("  P5:     $%.2f\n", s.P5)
	fmt.Printf("  P10:    $%.2f\n", s.P10)
	fmt.Printf("  Median: $%.2f\n", s.Median)
	fmt.Printf("  P90:    $%.2f\n", s.P90)
	fmt.Printf("  P95:    $%.2f\n", s.P95)
	fmt.Printf("  Mean:   $%.2f  StdDev: $%.2f\n", s.Mean, s.StdDev)
	fmt.Printf("  Range:  [$%.2f, $%.2f]\n", s.Min, s.Max)
	fmt.Printf("  KDE bandwidth: %.2f (%d grid points)\n", s.KDE.Bandwidth, len(s.KDE.X))
}

func splitPaths(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
