package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/wcsph/internal/analysis"
	"github.com/san-kum/wcsph/internal/config"
	"github.com/san-kum/wcsph/internal/export"
	"github.com/san-kum/wcsph/internal/metrics"
	"github.com/san-kum/wcsph/internal/optim"
	"github.com/san-kum/wcsph/internal/sim"
	"github.com/san-kum/wcsph/internal/sph"
	"github.com/san-kum/wcsph/internal/storage"
	"github.com/san-kum/wcsph/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	dataDir string
	verbose bool
	logger  *slog.Logger

	// Config sources
	preset     string
	configFile string

	// Overrides
	particles   int
	frames      int
	dt          float64
	substeps    int
	seed        int64
	workers     int
	stiffness   float64
	recordEvery int

	// Per-command settings
	frameRate     int
	benchFrames   int
	plotMetric    string
	analyzeMetric string
	sweepMetric   string
	frameIndex    int
	particleID    int
	outFile       string
	numRuns       int
	gridSpecs     []string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wcsph",
		Short: "weakly compressible SPH fluid simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".wcsph", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&recordEvery, "record-every", 1, "store every k-th frame (0 stores none)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation with a live terminal view",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the metric series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotMetric, "metric", "", "plot only this metric")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored frame or a particle trajectory to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&frameIndex, "frame", -1, "recorded frame to draw (-1 is the last)")
	exportSVGCmd.Flags().IntVar(&particleID, "particle", -1, "draw this particle's trajectory instead of a frame")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(args[0], os.Stdout)
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPARTICLES\tDOMAIN\tRHO0\tSTIFFNESS\tFORCING")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name).Physics
				fmt.Fprintf(w, "%s\t%d\t%gx%g\t%g\t%g\t%g\n",
					name, p.Particles, p.Width, p.Height, p.ReferenceDensity, p.Stiffness, p.ForcingScale)
			}
			return w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure substep throughput",
		RunE:  benchSolver,
	}
	benchCmd.Flags().IntVar(&benchFrames, "frames", 10, "frames per measurement")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run one configuration over consecutive seeds",
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of seeds")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a metric series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeMetric, "metric", "kinetic_energy", "metric to analyze")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search physics parameters for the lowest metric value",
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "max_speed", "metric to minimize")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportSVGCmd, exportJSONCmd, presetsCmd, benchCmd, ensembleCmd, analyzeCmd, sweepCmd)
	return rootCmd
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "reference", "preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml, applied over the preset)")
	cmd.Flags().IntVarP(&particles, "particles", "n", 0, "particle count")
	cmd.Flags().IntVar(&frames, "frames", 0, "frames to run (0 is unbounded for live)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "time step")
	cmd.Flags().IntVar(&substeps, "substeps", 0, "substeps per frame")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 uses every CPU)")
	cmd.Flags().Float64Var(&stiffness, "stiffness", 0, "equation of state stiffness")
}

// loadConfig resolves preset, config file and explicitly set flags, in
// that order of precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	name := preset
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		if !cmd.Flags().Changed("preset") {
			name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
		}
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Physics.Particles = particles
	}
	if flags.Changed("frames") {
		cfg.Run.Frames = frames
	}
	if flags.Changed("dt") {
		cfg.Physics.Dt = dt
	}
	if flags.Changed("substeps") {
		cfg.Run.Substeps = substeps
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Run.Workers = workers
	}
	if flags.Changed("stiffness") {
		cfg.Physics.Stiffness = stiffness
	}
	if flags.Lookup("record-every") != nil && flags.Changed("record-every") {
		cfg.Run.RecordEvery = recordEvery
	}

	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func newSolver(cfg *config.Config, seed int64) (*sph.Solver, error) {
	return sph.NewSolver(cfg.Params(), rand.New(rand.NewSource(seed)), cfg.SolverOptions()...)
}

func newSimulator(cfg *config.Config, seed int64) (*sim.Simulator, error) {
	solver, err := newSolver(cfg, seed)
	if err != nil {
		return nil, err
	}
	s := sim.New(solver)
	s.SetLogger(logger.With("seed", seed))
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}
	return s, nil
}

func runConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Frames:        cfg.Run.Frames,
		RecordEvery:   cfg.Run.RecordEvery,
		ValidateState: cfg.Run.ValidateState,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := newSimulator(cfg, cfg.Run.Seed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d particles, %d frames\n", name, cfg.Physics.Particles, cfg.Run.Frames)
	result, runErr := s.Run(ctx, runConfig(cfg))
	if result == nil {
		return runErr
	}
	result.Seed = cfg.Run.Seed

	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed %d frames (%.3fs simulated) in %v\n", result.FramesRun, result.Time, result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for n := range result.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %s: %.6f\n", n, result.Metrics[n])
	}

	if errors.Is(runErr, sim.ErrUnstable) {
		fmt.Println("\nsimulation became unstable; partial run stored")
	}
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	solver, err := newSolver(cfg, cfg.Run.Seed)
	if err != nil {
		return err
	}

	maxFrames := 0
	if cmd.Flags().Changed("frames") {
		maxFrames = cfg.Run.Frames
	}

	m := viz.NewModel(solver, name, frameRate, maxFrames)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tPARTICLES\tFRAMES\tSIM TIME\tSEED")

	for _, run := range runs {
		n := 0
		if run.Config != nil {
			n = run.Config.Physics.Particles
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.3fs\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			n,
			run.Frames,
			run.SimTime,
			run.Seed,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(series))
	for name, data := range series {
		if plotMetric != "" && name != plotMetric {
			continue
		}
		if len(data) > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("no data to plot")
	}
	sort.Strings(names)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("frames: %d\n\n", meta.Frames)

	for _, name := range names {
		graph := asciigraph.Plot(series[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	recorded, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(recorded) == 0 {
		return fmt.Errorf("run %s has no recorded frames", runID)
	}

	render := config.DefaultConfig().Render
	if meta.Config != nil {
		render = meta.Config.Render
	}

	var svg string
	if particleID >= 0 {
		path := make([]r2.Vec, 0, len(recorded))
		for _, f := range recorded {
			if particleID < len(f.Points) {
				path = append(path, f.Points[particleID])
			}
		}
		if len(path) < 2 {
			return fmt.Errorf("particle %d has fewer than two recorded positions", particleID)
		}
		svg = export.TrajectorySVG(path, render.ScreenWidth, render.ScreenHeight, "#3ea6ff")
	} else {
		idx := frameIndex
		if idx < 0 {
			idx = len(recorded) - 1
		}
		if idx >= len(recorded) {
			return fmt.Errorf("frame %d out of range (%d recorded)", idx, len(recorded))
		}
		svg = export.FrameSVG(recorded[idx].Points, render.ScreenWidth, render.ScreenHeight, render.Radius)
	}

	out := outFile
	if out == "" {
		out = runID + ".svg"
	}
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func benchSolver(cmd *cobra.Command, args []string) error {
	counts := []int{100, 200, 400, 800}
	workerCounts := []int{1, sph.DefaultWorkers()}

	fmt.Printf("benchmarking %d frames per setup\n\n", benchFrames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tWORKERS\tSUBSTEPS\tTIME\tSUBSTEPS/SEC")

	for _, n := range counts {
		for _, wk := range workerCounts {
			cfg := config.DefaultConfig()
			cfg.Physics.Particles = n
			cfg.Run.Workers = wk

			solver, err := newSolver(cfg, 42)
			if err != nil {
				return err
			}

			start := time.Now()
			for i := 0; i < benchFrames; i++ {
				solver.Frame()
			}
			elapsed := time.Since(start)

			steps := solver.Steps()
			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n",
				n, wk, steps, elapsed, float64(steps)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}

	factory := func(seed int64) (*sim.Simulator, error) {
		return newSimulator(cfg, seed)
	}

	rc := runConfig(cfg)
	rc.RecordEvery = 0

	fmt.Printf("running %d seeds of %s from %d\n\n", numRuns, name, cfg.Run.Seed)
	results, runErr := sim.NewEnsemble(factory, numRuns, cfg.Run.Seed).Run(context.Background(), rc)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tFRAMES\tKINETIC\tMAX SPEED\tSTABILITY\tCOLLISIONS")
	for _, r := range results {
		if r == nil {
			continue
		}
		fmt.Fprintf(w, "%d\t%d\t%.3f\t%.3f\t%.2f\t%.0f\n",
			r.Seed,
			r.FramesRun,
			r.Metrics["kinetic_energy"],
			r.Metrics["max_speed"],
			r.Metrics["stability"],
			r.Metrics["collisions"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	data := series[analyzeMetric]
	if len(data) < 2 {
		return fmt.Errorf("no %s series in run %s", analyzeMetric, runID)
	}

	cfg := meta.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	interval := cfg.Physics.Dt * float64(cfg.Run.Substeps)

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("metric: %s, %d frames, %.4fs per frame\n\n", analyzeMetric, len(data), interval)

	ps := analysis.Spectrum(data)
	graph := asciigraph.Plot(ps[1:],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+analyzeMetric+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, power := analysis.DominantFrequency(data, interval)
	fmt.Printf("dominant frequency: %.3f hz (power %.4g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}

// parseGrid turns "name=v1,v2" specs into grid ranges.
func parseGrid(specs []string) (map[string][]float64, error) {
	ranges := make(map[string][]float64, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || list == "" {
			return nil, fmt.Errorf("invalid grid %q, want name=v1,v2", spec)
		}
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("grid %s: %w", name, err)
			}
			ranges[name] = append(ranges[name], v)
		}
	}
	return ranges, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}
	if len(ranges) == 0 {
		return fmt.Errorf("no --grid given (tunable: %v)", config.Tunable)
	}

	build := func(params map[string]float64) (*sim.Simulator, error) {
		cfg := *base
		for k, v := range params {
			if err := cfg.Set(k, v); err != nil {
				return nil, err
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return newSimulator(&cfg, cfg.Run.Seed)
	}

	rc := runConfig(base)
	rc.RecordEvery = 0

	g := optim.NewGridSearch(ranges)
	fmt.Printf("sweeping %d points of %s, minimizing %s\n\n", g.Size(), name, sweepMetric)
	best, value, trials, searchErr := g.Search(context.Background(), build, rc, sweepMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMS\tVALUE\tSTATUS")
	for _, t := range trials {
		status := "ok"
		if t.Err != nil {
			status = t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%.6g\t%s\n", formatParams(t.Params), t.Value, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if searchErr != nil {
		return searchErr
	}

	fmt.Printf("\nbest: %s (%s = %.6g)\n", formatParams(best), sweepMetric, value)
	return nil
}

func formatParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, params[k])
	}
	return strings.Join(parts, " ")
}
