package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/porosim/porosim/internal/config"
	"github.com/porosim/porosim/internal/driver"
	"github.com/porosim/porosim/internal/export"
	"github.com/porosim/porosim/internal/grid"
	"github.com/porosim/porosim/internal/models"
	"github.com/porosim/porosim/internal/newton"
	"github.com/porosim/porosim/internal/storage"
	"github.com/porosim/porosim/internal/viz"
)

var (
	dataDir      string
	configFile   string
	preset       string
	endTime      float64
	initialDt    float64
	minDt        float64
	maxDt        float64
	maxDivisions int
	episodeLen   float64
	gridLength   float64
	gridCells    int
	termPlot     bool
	outFile      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "porosim",
		Short: "finite-volume flow and transport simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".porosim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	watchCmd := &cobra.Command{
		Use:   "watch [model]",
		Short: "run simulation with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  watchSimulation,
	}
	addSimFlags(watchCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&termPlot, "term", false, "render to the terminal instead of a file")
	plotCmd.Flags().StringVar(&outFile, "out", "", "output image path (default <run_id>.png)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, watchCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&endTime, "time", config.DefaultEndTime, "simulated end time [s]")
	cmd.Flags().Float64Var(&initialDt, "dt", config.DefaultInitialDt, "initial step size [s]")
	cmd.Flags().Float64Var(&minDt, "min-dt", config.DefaultMinDt, "minimum step size [s]")
	cmd.Flags().Float64Var(&maxDt, "max-dt", config.DefaultMaxDt, "maximum step size [s]")
	cmd.Flags().IntVar(&maxDivisions, "max-divisions", config.DefaultMaxDivisions, "step halvings before giving up")
	cmd.Flags().Float64Var(&episodeLen, "episode", 0, "episode length [s], 0 disables")
	cmd.Flags().Float64Var(&gridLength, "length", config.DefaultGridLength, "domain length [m]")
	cmd.Flags().IntVar(&gridCells, "cells", config.DefaultGridCells, "number of grid cells")
}

// buildConfig merges preset, config file, and flags; flags win.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		*cfg = *p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	cfg.Model = model
	if cmd.Flags().Changed("time") {
		cfg.EndTime = endTime
	}
	if cmd.Flags().Changed("dt") {
		cfg.InitialDt = initialDt
	}
	if cmd.Flags().Changed("min-dt") {
		cfg.MinDt = minDt
	}
	if cmd.Flags().Changed("max-dt") {
		cfg.MaxDt = maxDt
	}
	if cmd.Flags().Changed("max-divisions") {
		cfg.MaxDivisions = maxDivisions
	}
	if cmd.Flags().Changed("episode") {
		cfg.EpisodeLength = episodeLen
	}
	if cmd.Flags().Changed("length") {
		cfg.Grid.Length = gridLength
	}
	if cmd.Flags().Changed("cells") {
		cfg.Grid.Cells = gridCells
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildSimulation(cfg *config.Config, checkpoints driver.CheckpointWriter) (*driver.Simulation, error) {
	g, err := grid.New1D(cfg.Grid.Length, cfg.Grid.Cells)
	if err != nil {
		return nil, err
	}
	prob, err := models.New(cfg.Model, g)
	if err != nil {
		return nil, err
	}
	return driver.New(prob, driver.Options{
		EndTime:       cfg.EndTime,
		InitialDt:     cfg.InitialDt,
		MinDt:         cfg.MinDt,
		MaxDt:         cfg.MaxDt,
		MaxDivisions:  cfg.MaxDivisions,
		EpisodeLength: cfg.EpisodeLength,
		Log:           os.Stderr,
		Checkpoints:   checkpoints,
		Newton:        newtonOptions(cfg),
	})
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	checkpoints, err := storage.NewCheckpointFile(filepath.Join(dataDir, "checkpoints"))
	if err != nil {
		return err
	}

	sim, err := buildSimulation(cfg, checkpoints)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, runErr := sim.Run(ctx)
	sim.Summary(os.Stdout)
	if runErr != nil {
		return runErr
	}

	runID, err := st.Save(cfg.Model, result)
	if err != nil {
		return err
	}
	fmt.Printf("saved run %s (%d steps, %d retries)\n", runID, result.Steps, result.Retries)

	if len(result.StepSizes) > 1 {
		fmt.Println(asciigraph.Plot(result.StepSizes,
			asciigraph.Height(8), asciigraph.Width(64), asciigraph.Caption("step size")))
	}
	return nil
}

func watchSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	sim, err := buildSimulation(cfg, nil)
	if err != nil {
		return err
	}

	live := viz.NewLive(sim, cfg.Model)
	sim.AddObserver(live)

	_, err = tea.NewProgram(live).Run()
	return err
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

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tEND TIME\tSTEPS\tRETRIES\tDATE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%g\t%d\t%d\t%s\n",
			r.ID, r.Model, r.EndTime, r.Steps, r.Retries, r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	times, stepSizes, solutions, err := st.LoadSolution(runID)
	if err != nil {
		return err
	}
	if len(solutions) == 0 {
		return fmt.Errorf("run %s has no recorded solution", runID)
	}

	if termPlot {
		fmt.Println(asciigraph.Plot(stepSizes,
			asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("step size")))
		fmt.Println(asciigraph.Plot(solutions[len(solutions)-1],
			asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("final solution profile")))
		return nil
	}

	out := outFile
	if out == "" {
		out = runID + ".png"
	}
	final := solutions[len(solutions)-1]
	xs := make([]float64, len(final))
	for i := range xs {
		xs[i] = float64(i)
	}
	if err := export.SolutionProfile(out, xs, final, runID, "u"); err != nil {
		return err
	}
	dtOut := runID + "_dt.png"
	if err := export.StepSizeHistory(dtOut, times, stepSizes); err != nil {
		return err
	}
	fmt.Printf("wrote %s and %s\n", out, dtOut)
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

func newtonOptions(cfg *config.Config) newton.Options {
	return newton.Options{
		MaxIterations:    cfg.Newton.MaxIterations,
		TargetIterations: cfg.Newton.TargetIterations,
		Tolerance:        cfg.Newton.Tolerance,
	}
}
