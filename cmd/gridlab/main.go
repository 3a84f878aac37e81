package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/gridlab/internal/analysis"
	"github.com/san-kum/gridlab/internal/config"
	"github.com/san-kum/gridlab/internal/experiment"
	"github.com/san-kum/gridlab/internal/export"
	"github.com/san-kum/gridlab/internal/logging"
	"github.com/san-kum/gridlab/internal/metrics"
	"github.com/san-kum/gridlab/internal/storage"
	"github.com/san-kum/gridlab/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	extent     int
	dims       int
	boundary   string
	alpha      float64
	steps      int
	strategy   string
	tile       []int
	workers    int
	initKind   string
	amplitude  float64
	sigma      float64
	frameRate  int
	cellSize   int
	outFile    string
	every      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridlab",
		Short: "stencil plan compiler and parallel executor",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gridlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")

	runCmd := &cobra.Command{
		Use:   "run [kernel]",
		Short: "compile a plan and run it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runKernel,
	}
	addProblemFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spatial frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run field data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export full run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	renderCmd := &cobra.Command{
		Use:   "render [kernel]",
		Short: "render a 1-D run's space-time evolution to SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderRun,
	}
	addProblemFlags(renderCmd)
	renderCmd.Flags().StringVar(&outFile, "out", "spacetime.svg", "output file")
	renderCmd.Flags().IntVar(&cellSize, "cell", 4, "cell size in pixels")
	renderCmd.Flags().IntVar(&every, "every", 1, "record every n-th step")

	liveCmd := &cobra.Command{
		Use:   "live [kernel]",
		Short: "run with live terminal visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addProblemFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	benchCmd := &cobra.Command{
		Use:   "bench [kernel]",
		Short: "benchmark plan strategies and worker counts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchKernel,
	}
	addProblemFlags(benchCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [kernel]",
		Short: "compare direct and tiled plans on the same problem",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareStrategies,
	}
	addProblemFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [kernel]",
		Short: "list available presets for a kernel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for kernel: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, n := range names {
				fmt.Printf("  %s\n", n)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportCmd,
		exportCSVCmd, exportJSONCmd, renderCmd, liveCmd, benchCmd, compareCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&extent, "extent", config.DefaultExtent, "cells per dimension")
	cmd.Flags().IntVar(&dims, "dims", 1, "number of dimensions")
	cmd.Flags().StringVar(&boundary, "boundary", "zero", "boundary kind (periodic|zero|edge)")
	cmd.Flags().Float64Var(&alpha, "alpha", config.DefaultAlpha, "diffusion coefficient (heat)")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "time steps")
	cmd.Flags().StringVar(&strategy, "strategy", "tiled", "plan strategy (direct|tiled)")
	cmd.Flags().IntSliceVar(&tile, "tile", nil, "tile extents per dimension")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = all cpus)")
	cmd.Flags().StringVar(&initKind, "init", "impulse", "initial field (impulse|uniform|gaussian)")
	cmd.Flags().Float64Var(&amplitude, "amplitude", 1.0, "initial field amplitude")
	cmd.Flags().Float64Var(&sigma, "sigma", 0, "gaussian width (0 = auto)")
}

// buildConfig assembles the problem configuration: preset first, then
// config file, then explicit CLI flags on top.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	kernel := "heat"
	if len(args) > 0 {
		kernel = args[0]
	}

	cfg := config.DefaultConfig()
	cfg.Name = kernel
	cfg.Kernel = kernel

	if preset != "" {
		p := config.GetPreset(kernel, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(kernel))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("extent") || cmd.Flags().Changed("dims") {
		cfg.Extents = make([][2]int, dims)
		for i := range cfg.Extents {
			cfg.Extents[i] = [2]int{0, extent - 1}
		}
	}
	if cmd.Flags().Changed("boundary") || len(cfg.Boundaries) != len(cfg.Extents) {
		cfg.Boundaries = make([]string, len(cfg.Extents))
		for i := range cfg.Boundaries {
			cfg.Boundaries[i] = boundary
		}
	}
	if cmd.Flags().Changed("alpha") {
		cfg.Alpha = alpha
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("strategy") {
		cfg.Strategy = strategy
	}
	if cmd.Flags().Changed("tile") {
		cfg.Tile = tile
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("init") {
		cfg.Initial.Kind = initKind
	}
	if cmd.Flags().Changed("amplitude") {
		cfg.Initial.Value = amplitude
	}
	if cmd.Flags().Changed("sigma") {
		cfg.Initial.Sigma = sigma
	}
	return cfg, nil
}

func setupExperiment(cfg *config.Config) (*experiment.Experiment, error) {
	exp := experiment.New(cfg)
	exp.SetLogger(logging.NewLogger(os.Stderr, logging.ParseLevel(logLevel)))
	for _, m := range metrics.Defaults() {
		exp.AddMetric(m)
	}
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp, nil
}

func runKernel(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := setupExperiment(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s (%s plan, %d chunks, %d steps)...\n",
		cfg.Name, exp.Plan().Strategy(), len(exp.Plan().Chunks()), exp.Plan().Steps())

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	runID, err := st.Save(cfg.Name, cfg.Kernel, cfg.Extents, cfg.Boundaries, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
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
	fmt.Fprintln(w, "ID\tKERNEL\tTIME\tSTEPS\tSTRATEGY\tCELLS\tELAPSED")

	for _, run := range runs {
		cells := 1
		for _, e := range run.Extents {
			cells *= e[1] - e[0] + 1
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d\t%.2fms\n",
			run.ID,
			run.Kernel,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Strategy,
			cells,
			run.ElapsedMS,
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

	initial, final, err := st.LoadField(runID)
	if err != nil {
		return err
	}
	if len(final) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kernel: %s, steps: %d\n\n", meta.Kernel, meta.Steps)

	if len(meta.Extents) == 2 {
		rows := meta.Extents[0][1] - meta.Extents[0][0] + 1
		cols := meta.Extents[1][1] - meta.Extents[1][0] + 1
		fmt.Println("final field:")
		fmt.Println(viz.Heatmap(final, rows, cols))
		return nil
	}

	fmt.Println(viz.Profile(initial, "initial field"))
	fmt.Println()
	fmt.Println(viz.Profile(final, fmt.Sprintf("final field after %d steps", meta.Steps)))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	_, final, err := st.LoadField(runID)
	if err != nil {
		return err
	}
	if len(final) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("spatial frequency analysis: %s\n", meta.ID)
	fmt.Printf("kernel: %s\n\n", meta.Kernel)

	ps := analysis.PowerSpectrum(final)
	plotData := ps
	if len(ps) > 4 {
		plotData = ps[:len(ps)/2]
	}
	fmt.Println(viz.Profile(plotData, "power spectrum (final field)"))

	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(plotData); i++ {
		if plotData[i] > maxPower {
			maxPower = plotData[i]
			maxIdx = i
		}
	}
	fmt.Printf("\ndominant mode: %d (power %.4f)\n", maxIdx, maxPower)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	initial, final, err := st.LoadField(args[0])
	if err != nil {
		return err
	}
	if len(final) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"index", "initial", "final"}); err != nil {
		return err
	}
	for i := range final {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(initial[i], 'f', 9, 64),
			strconv.FormatFloat(final[i], 'f', 9, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	initial, final, err := st.LoadField(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(meta, initial, final)
}

func renderRun(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(cfg.Extents) != 1 {
		return fmt.Errorf("render supports 1-D problems only")
	}

	totalSteps := cfg.Steps
	cfg.Steps = 1

	exp, err := setupExperiment(cfg)
	if err != nil {
		return err
	}
	if every <= 0 {
		every = 1
	}

	values := cfg.InitialValues(exp.Domain())
	frames := [][]float64{append([]float64(nil), values...)}
	for s := 1; s <= totalSteps; s++ {
		result, err := exp.RunFrom(context.Background(), values)
		if err != nil {
			return err
		}
		values = result.Final
		if s%every == 0 {
			frames = append(frames, append([]float64(nil), values...))
		}
	}

	svg := export.SpaceTimeSVG(frames, cellSize)
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames)\n", outFile, len(frames))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.Steps = 1

	exp, err := setupExperiment(cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(exp, cfg.Name, cfg.InitialValues(exp.Domain()), frameRate)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func benchKernel(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	tiles := [][]int{nil, {8}, {16}, {64}}
	workerCounts := []int{1, 2, 4, 0}

	fmt.Printf("benchmarking %s (%d cells, %d steps)\n\n",
		cfg.Kernel, cfg.Extents[0][1]-cfg.Extents[0][0]+1, cfg.Steps)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tTILE\tWORKERS\tCHUNKS\tTIME\tSTEPS/SEC")

	for _, t := range tiles {
		for _, wc := range workerCounts {
			runCfg := *cfg
			runCfg.Workers = wc
			if t == nil {
				runCfg.Strategy = "direct"
				runCfg.Tile = nil
			} else {
				runCfg.Strategy = "tiled"
				runCfg.Tile = make([]int, len(cfg.Extents))
				for i := range runCfg.Tile {
					runCfg.Tile[i] = t[0]
				}
			}

			exp, err := setupExperiment(&runCfg)
			if err != nil {
				return err
			}

			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}

			stepsPerSec := float64(result.Steps) / result.Elapsed.Seconds()
			tileLabel := "-"
			if t != nil {
				tileLabel = strconv.Itoa(t[0])
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%v\t%.0f\n",
				runCfg.Strategy, tileLabel, wc, len(exp.Plan().Chunks()), result.Elapsed, stepsPerSec)
		}
	}
	return w.Flush()
}

func compareStrategies(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	directCfg := *cfg
	directCfg.Strategy = "direct"
	directCfg.Tile = nil

	tiledCfg := *cfg
	tiledCfg.Strategy = "tiled"

	results := make(map[string]*experiment.Result)
	for name, c := range map[string]*config.Config{"direct": &directCfg, "tiled": &tiledCfg} {
		exp, err := setupExperiment(c)
		if err != nil {
			return err
		}
		start := time.Now()
		result, err := exp.Run(context.Background())
		if err != nil {
			return err
		}
		results[name] = result
		fmt.Printf("%-8s %d chunks in %v\n", name, len(exp.Plan().Chunks()), time.Since(start))
	}

	maxDiff := 0.0
	for i, v := range results["direct"].Final {
		if d := math.Abs(v - results["tiled"].Final[i]); d > maxDiff {
			maxDiff = d
		}
	}
	fmt.Printf("\nmax |direct - tiled|: %.3e\n", maxDiff)
	return nil
}
