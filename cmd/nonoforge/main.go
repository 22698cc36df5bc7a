package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/nonoforge/nonoforge/internal/config"
	"github.com/nonoforge/nonoforge/internal/metrics"
	"github.com/nonoforge/nonoforge/internal/pool"
	"github.com/nonoforge/nonoforge/internal/solver"
	"github.com/nonoforge/nonoforge/internal/writer"
	"github.com/nonoforge/nonoforge/pkg/models"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath    string
	size          int
	workers       int
	maxAttempts   int
	requireUnique bool
	count         int
	namePrefix    string
	outputDir     string
	writePuzzles  bool
	showSolution  bool
	metricsAddr   string
	verbose       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nonoforge",
		Short: "NonoForge - Nonogram Puzzle Generator",
		Long: `NonoForge generates nonogram (picross) puzzles by racing a pool of
workers over randomized candidate grids, optionally requiring that the
row and column hints admit exactly one solution.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate nonogram puzzles",
		Long: `Generate one or more nonogram puzzles:
1. Draw random candidate grids at a size-appropriate density
2. Derive row and column hints from each candidate
3. Optionally verify the hints admit exactly one solution
4. Keep the first accepted puzzle across all workers`,
		RunE: runGeneration,
	}

	generateCmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file")
	generateCmd.Flags().IntVarP(&size, "size", "s", 0, "Grid side length (1-64)")
	generateCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Worker count (0 = one per CPU)")
	generateCmd.Flags().IntVar(&maxAttempts, "attempts", 0, "Candidate budget per worker")
	generateCmd.Flags().BoolVarP(&requireUnique, "unique", "u", false, "Require a uniquely solvable puzzle")
	generateCmd.Flags().IntVarP(&count, "count", "n", 0, "Number of puzzles to generate")
	generateCmd.Flags().StringVar(&namePrefix, "name-prefix", "", "Puzzle name prefix")
	generateCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory for logs and puzzle files")
	generateCmd.Flags().BoolVar(&writePuzzles, "write", false, "Write generated puzzles to a JSONL file")
	generateCmd.Flags().BoolVar(&showSolution, "show-solution", false, "Render the solution instead of a blank grid")
	generateCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address for the Prometheus /metrics endpoint")
	generateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	verifyCmd := &cobra.Command{
		Use:   "verify <puzzles.jsonl>",
		Short: "Verify puzzles from a JSONL file",
		Long: `Verify puzzles from a JSONL file: check that each puzzle's hints
re-derive from its solution and report whether the hints admit a unique
solution.`,
		Args: cobra.ExactArgs(1),
		RunE: runVerification,
	}

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(verifyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEffectiveConfig merges the config file (if any) with command-line
// overrides. Flags win over file values.
func loadEffectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("size") {
		cfg.Generation.Size = size
	}
	if cmd.Flags().Changed("workers") {
		cfg.Generation.Workers = workers
	}
	if cmd.Flags().Changed("attempts") {
		cfg.Generation.MaxAttempts = maxAttempts
	}
	if cmd.Flags().Changed("unique") {
		cfg.Generation.RequireUnique = requireUnique
	}
	if cmd.Flags().Changed("count") {
		cfg.Generation.Count = count
	}
	if cmd.Flags().Changed("name-prefix") {
		cfg.Generation.NamePrefix = namePrefix
	}
	if cmd.Flags().Changed("out") {
		cfg.Output.Dir = outputDir
	}
	if cmd.Flags().Changed("write") {
		cfg.Output.WritePuzzles = writePuzzles
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.ListenAddr = metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runGeneration(cmd *cobra.Command, args []string) error {
	cfg, err := loadEffectiveConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger, logFile, err := writer.SetupLogger(cfg.Output.Dir, logLevel)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer func() {
		_ = logFile.Sync()
		_ = logFile.Close()
	}()

	logger.Info("NonoForge starting",
		"version", Version,
		"size", cfg.Generation.Size,
		"count", cfg.Generation.Count,
		"require_unique", cfg.Generation.RequireUnique)

	collector := metrics.NewCollector(logger)

	if cfg.Metrics.ListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}
		go func() {
			logger.Info("Metrics endpoint listening", "addr", cfg.Metrics.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics endpoint failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	var puzzleWriter *writer.PuzzleWriter
	if cfg.Output.WritePuzzles {
		puzzleWriter, err = writer.NewPuzzleWriter(cfg.Output.Dir, logger)
		if err != nil {
			return fmt.Errorf("failed to create puzzle writer: %w", err)
		}
		defer func() {
			if err := puzzleWriter.Close(); err != nil {
				logger.Error("failed to close puzzle writer", "error", err)
			}
		}()
	}

	coord := pool.New(cfg.Generation.Workers, logger, collector)
	defer coord.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pool.Options{
		MaxAttemptsPerWorker: cfg.Generation.MaxAttempts,
		RequireUnique:        cfg.Generation.RequireUnique,
		Band:                 cfg.BandFor(cfg.Generation.Size),
		ProgressPerSecond:    cfg.Generation.ProgressPerSecond,
	}

	for i := 0; i < cfg.Generation.Count; i++ {
		opts.Name = fmt.Sprintf("%s-%dx%d-%03d", cfg.Generation.NamePrefix,
			cfg.Generation.Size, cfg.Generation.Size, i+1)

		puzzle, err := generateOne(ctx, coord, cfg.Generation.Size, opts)
		if err != nil {
			if errors.Is(err, pool.ErrCanceled) {
				logger.Warn("Generation interrupted", "completed", i)
				return nil
			}
			return err
		}

		fmt.Printf("\n%s\n", puzzle.Name)
		fmt.Print(writer.Render(puzzle, showSolution))

		if puzzleWriter != nil {
			if err := puzzleWriter.WritePuzzle(puzzle); err != nil {
				return fmt.Errorf("failed to write puzzle: %w", err)
			}
		}
	}

	if puzzleWriter != nil {
		logger.Info("Generation complete",
			"puzzles", cfg.Generation.Count,
			"path", puzzleWriter.Path())
	} else {
		logger.Info("Generation complete", "puzzles", cfg.Generation.Count)
	}
	return nil
}

// generateOne runs a single generation request to completion, rendering
// progress events to the terminal while waiting.
func generateOne(ctx context.Context, coord *pool.Coordinator, size int, opts pool.Options) (*models.Puzzle, error) {
	results, err := coord.Generate(size, opts)
	if err != nil {
		return nil, err
	}

	bar := progressbar.Default(int64(opts.MaxAttemptsPerWorker), opts.Name)
	defer func() { _ = bar.Finish() }()

	for {
		select {
		case ev := <-coord.Events():
			if ev.Kind == pool.EventProgress {
				_ = bar.Set(ev.Attempt)
			}
		case res := <-results:
			if res.Err != nil {
				return nil, res.Err
			}
			return res.Puzzle, nil
		case <-ctx.Done():
			coord.Cancel()
			res := <-results
			if res.Err != nil {
				return nil, res.Err
			}
			return res.Puzzle, nil
		}
	}
}

func runVerification(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open puzzles file: %w", err)
	}
	defer file.Close()

	var total, consistent, unique int
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		total++

		var p models.Puzzle
		if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
			return fmt.Errorf("line %d: invalid puzzle JSON: %w", total, err)
		}

		status := "inconsistent"
		if hintsConsistent(&p) {
			consistent++
			switch solver.CountSolutions(p.Rows, p.Cols, p.Size, 2) {
			case 1:
				unique++
				status = "unique"
			default:
				status = "ambiguous"
			}
		}
		fmt.Printf("%-40s %dx%-3d %s\n", p.Name, p.Size, p.Size, status)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read puzzles file: %w", err)
	}

	fmt.Printf("\n%d puzzles: %d consistent, %d unique\n", total, consistent, unique)
	if consistent < total {
		return fmt.Errorf("%d of %d puzzles have hints that do not match their solution", total-consistent, total)
	}
	return nil
}

// hintsConsistent reports whether the stored hints re-derive from the stored
// solution grid.
func hintsConsistent(p *models.Puzzle) bool {
	if p.Size < 1 || p.Size > solver.MaxLineLength || p.Solution.Size() != p.Size {
		return false
	}
	if len(p.Rows) != p.Size || len(p.Cols) != p.Size {
		return false
	}
	for r := 0; r < p.Size; r++ {
		if len(p.Solution[r]) != p.Size {
			return false
		}
		if !hintsEqual(solver.DeriveHints(p.Solution[r]), p.Rows[r]) {
			return false
		}
	}
	for c := 0; c < p.Size; c++ {
		if !hintsEqual(solver.DeriveHints(p.Solution.Column(c)), p.Cols[c]) {
			return false
		}
	}
	return true
}

func hintsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
