package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/kinetics/internal/config"
	"github.com/san-kum/kinetics/internal/experiment"
	"github.com/san-kum/kinetics/internal/optim"
	"github.com/san-kum/kinetics/internal/sim"
	"github.com/san-kum/kinetics/internal/storage"
	"github.com/san-kum/kinetics/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var (
	dataDir    string
	configFile string
	dt         float64
	duration   float64
	samples    int
	seed       uint64
	workers    int
	integrator string
	validate   bool
	replicas   int
	sqlitePath string
	outFile    string
	withTraj   bool
	particle   int
	benchRuns  []int
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	gridSpecs  []string
	objective  string
	braille    bool
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "kinetics",
		Short:        "particle kinetics and collision simulator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kinetics", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario and store its output",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().IntVar(&replicas, "replicas", 1, "independent replicas with seeds seed, seed+1, ...")
	runCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "also write the run to this SQLite database")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scenario with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && configFile == "" {
				return viz.RunInteractive()
			}
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			return viz.RunLive(cfg)
		},
	}
	addScenarioFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy drift, side speeds and a trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particle, "particle", -1, "also plot this particle's x/y trajectory")

	trackCmd := &cobra.Command{
		Use:   "track [run_id]",
		Short: "plot one particle's trajectory from a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE:  trackParticle,
	}
	trackCmd.Flags().StringVar(&sqlitePath, "sqlite", "kinetics.db", "SQLite database")
	trackCmd.Flags().IntVar(&particle, "particle", 0, "particle index")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportJSONCmd.Flags().BoolVar(&withTraj, "trajectories", false, "include trajectories")

	presetsCmd := &cobra.Command{
		Use:   "presets [kind]",
		Short: "list presets, optionally for one kind",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenario kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, kind := range experiment.NewRegistry().ListKinds() {
				fmt.Fprintf(out, "%s\t%v\n", kind, config.ListPresets(kind))
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "time a scenario across worker counts",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScenario,
	}
	addScenarioFlags(benchCmd)
	benchCmd.Flags().IntSliceVar(&benchRuns, "workers-list", []int{1, 2, 4, 8}, "worker counts to compare")

	saveConfigCmd := &cobra.Command{
		Use:   "save-config [preset] [file]",
		Short: "write a preset to a yaml or toml file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FindPreset(args[0])
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s", args[0])
			}
			return config.Save(args[1], cfg)
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw run trajectories to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "trajectories.svg", "output file")
	exportSVGCmd.Flags().BoolVar(&braille, "braille", false, "render through the braille canvas")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a yaml script of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one parameter of a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "dt", "parameter name")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search scenario parameters for the smallest objective",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	addScenarioFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&objective, "objective", optim.MaxDrift, "max_drift or a metric name")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, trackCmd, exportJSONCmd, exportSVGCmd,
		presetsCmd, scenariosCmd, benchCmd, saveConfigCmd, scriptCmd, sweepCmd, tuneCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "duration", config.DefaultDuration, "simulated duration")
	cmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "trajectory and energy samples")
	cmd.Flags().Uint64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "workers for the field push")
	cmd.Flags().StringVar(&integrator, "integrator", "", "boris, boris_relativistic or newton")
	cmd.Flags().BoolVar(&validate, "validate", false, "stop when the state becomes non-finite")
}

// resolveConfig starts from the named preset, replaces it with --config when
// given, then applies only the flags set on the command line.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	if len(args) > 0 {
		preset := config.FindPreset(args[0])
		if preset == nil {
			return nil, fmt.Errorf("unknown preset: %s", args[0])
		}
		cfg = preset.Clone()
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cfg == nil {
		return nil, fmt.Errorf("need a preset or --config (see 'kinetics presets')")
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("duration") {
		cfg.Duration = duration
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("validate") {
		cfg.ValidateState = validate
	}
	return cfg, cfg.Validate()
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if replicas > 1 {
		return runReplicas(cmd, cfg)
	}

	out := cmd.OutOrStdout()
	x := experiment.New(cfg)
	if err := x.Setup(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %s (%d steps, %d particles)\n", headerStyle.Render("running"), cfg.Name,
		x.SimConfig().Steps(), len(x.Simulator().Ensemble()))
	result, err := x.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Name, err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	e := x.Simulator().Ensemble()
	runID, err := st.Save(cfg, e, result)
	if err != nil {
		return err
	}

	if sqlitePath != "" {
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		sink, err := storage.OpenSQLite(sqlitePath)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.Write(meta, e, result); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
	}

	printSummary(out, runID, result)
	return nil
}

func printSummary(out io.Writer, runID string, result *sim.Result) {
	fmt.Fprintf(out, "completed in %v\n", result.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "run id: %s\n\n", runID)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "steps\t%d\n", result.StepsTaken)
	fmt.Fprintf(w, "initial energy\t%.6g\n", result.InitialEnergy)
	fmt.Fprintf(w, "max drift\t%.3e\n", result.MaxDrift)
	if cs := result.Collisions; cs.Events > 0 {
		fmt.Fprintf(w, "collisions\t%d of %d events (%.3f)\n", cs.Collisions, cs.Events, cs.AcceptanceRatio())
	}
	if n := len(result.SideSpeeds); n > 0 {
		mean, std := stat.MeanStdDev(result.SideSpeeds, nil)
		fmt.Fprintf(w, "side speeds\t%d, mean %.4g ± %.3g\n", n, mean, std)
	}
	for name, val := range result.Metrics {
		fmt.Fprintf(w, "%s\t%.6g\n", name, val)
	}
	w.Flush()
}

func runReplicas(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d replicas of %s\n", headerStyle.Render("running"), replicas, cfg.Name)

	sc := experiment.New(cfg).SimConfig()
	start := time.Now()
	results, err := sim.NewBatch(experiment.Factory(cfg), replicas, cfg.Seed).Run(cmd.Context(), sc)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	drifts := make([]float64, len(results))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tMAX DRIFT\tCOLLISIONS\tSIDE HITS\tELAPSED")
	for i, r := range results {
		drifts[i] = r.MaxDrift
		fmt.Fprintf(w, "%d\t%.3e\t%d\t%d\t%v\n", cfg.Seed+uint64(i), r.MaxDrift,
			r.Collisions.Collisions, len(r.SideSpeeds), r.Elapsed.Round(time.Millisecond))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	mean, std := stat.MeanStdDev(drifts, nil)
	fmt.Fprintf(out, "\n%s %.3e ± %.3e\n", mutedStyle.Render("max drift"), mean, std)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tPARTICLES\tSTEPS\tMAX DRIFT\tCOLLISIONS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2e\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Steps,
			run.MaxDrift,
			run.Collisions.Collisions,
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	kinds := config.Kinds()
	if len(args) > 0 {
		kinds = args
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tPRESET\tINTEGRATOR\tDT\tDURATION\tPARTICLES")
	for _, kind := range kinds {
		names := config.ListPresets(kind)
		if len(names) == 0 {
			return fmt.Errorf("no presets for kind: %s", kind)
		}
		for _, name := range names {
			cfg := config.GetPreset(kind, name)
			n := cfg.Particles.Count
			if kind == config.KindBodies {
				n = len(cfg.Bodies)
			}
			integ := cfg.Integrator
			if integ == "" {
				integ = "newton"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%d\n", kind, name, integ, cfg.Dt, cfg.Duration, n)
		}
	}
	return w.Flush()
}

func benchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.Samples = 0

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %s\n\n", cfg.Name)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tSTEPS\tTIME\tSTEPS/S")
	for _, n := range benchRuns {
		c := cfg.Clone()
		c.Workers = n
		x := experiment.New(c)
		if err := x.Setup(); err != nil {
			return err
		}
		result, err := x.Run(cmd.Context())
		if err != nil {
			return err
		}
		rate := float64(result.StepsTaken) / result.Elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", n, result.StepsTaken, result.Elapsed.Round(time.Microsecond), rate)
	}
	return w.Flush()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := storage.New(dataDir).Export(args[0], withTraj)
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.WriteJSON(cmd.OutOrStdout(), data)
	}
	if err := storage.ExportJSON(outFile, data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", outFile)
	return nil
}
