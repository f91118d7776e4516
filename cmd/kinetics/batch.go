package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/kinetics/internal/automation"
	"github.com/san-kum/kinetics/internal/export"
	"github.com/san-kum/kinetics/internal/optim"
	"github.com/san-kum/kinetics/internal/storage"
	"github.com/san-kum/kinetics/internal/viz"
	"github.com/spf13/cobra"
)

func runScript(cmd *cobra.Command, args []string) error {
	script, err := automation.LoadScript(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", headerStyle.Render("script"), script.Name)
	if script.Description != "" {
		fmt.Fprintln(out, mutedStyle.Render(script.Description))
	}

	ids, err := automation.RunScript(cmd.Context(), script, storage.New(dataDir), out)
	for _, id := range ids {
		fmt.Fprintf(out, "saved %s\n", id)
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	results, err := automation.RunSweep(cmd.Context(), &automation.Sweep{
		Base:     cfg,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
	}, out)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMAX DRIFT\tCOLLISIONS\tACCEPTANCE\tSIDE SPEED\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.3e\t%d\t%.3f\t%.4g\n", r.Value, r.MaxDrift,
			r.Collisions.Collisions, r.Collisions.AcceptanceRatio(), r.SideSpeedMean)
	}
	return w.Flush()
}

// parseGrid reads name=v1,v2,... specs.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || list == "" {
			return nil, nil, fmt.Errorf("bad grid %q, want name=v1,v2,...", spec)
		}
		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %s: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no --grid given")
	}

	best, val, err := optim.NewGridSearch(names, ranges).Search(cmd.Context(), cfg, objective)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(out, "%s %s = %.6g\n", headerStyle.Render("best"), objective, val)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s = %g\n", k, best[k])
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	tracks, err := storage.New(dataDir).LoadTrajectories(args[0])
	if err != nil {
		return err
	}

	var svg string
	if braille {
		c := viz.NewCanvas(80, 40)
		viz.RenderTracks(c, tracks)
		svg = export.CanvasToSVG(c, 4)
	} else {
		svg = export.TrajectoriesToSVG(tracks, 800, 800)
	}
	if err := export.WriteSVG(outFile, svg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", outFile)
	return nil
}
