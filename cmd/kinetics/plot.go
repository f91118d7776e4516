package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/storage"
	"github.com/san-kum/kinetics/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const histogramBins = 30

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s %s\n", headerStyle.Render("run"), meta.ID)
	fmt.Fprintf(out, "scenario: %s, %d particles, %d steps\n\n", meta.Scenario, meta.Particles, meta.Steps)

	_, _, drift, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}
	if len(drift) > 1 {
		fmt.Fprintln(out, asciigraph.Plot(drift,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("relative energy drift"),
		))
		fmt.Fprintln(out)
	}

	speeds, err := st.LoadSideSpeeds(runID)
	if err != nil {
		return err
	}
	if len(speeds) > 1 {
		plotHistogram(out, speeds)
	}

	if particle >= 0 {
		trajectories, err := st.LoadTrajectories(runID)
		if err != nil {
			return err
		}
		if particle >= len(trajectories) {
			return fmt.Errorf("particle %d out of range (%d particles)", particle, len(trajectories))
		}
		plotTrajectory(out, particle, trajectories[particle])

		c := viz.NewCanvas(60, 20)
		viz.RenderTracks(c, trajectories[particle:particle+1])
		fmt.Fprintf(out, "\n%s\n", c.String())
	}
	return nil
}

// plotHistogram bins the side speeds and prints the counts.
func plotHistogram(out io.Writer, speeds []float64) {
	x := append([]float64(nil), speeds...)
	sort.Float64s(x)
	lo, hi := x[0], x[len(x)-1]
	if hi <= lo {
		hi = lo + 1
	}
	// the last divider must lie strictly above the largest value
	dividers := floats.Span(make([]float64, histogramBins+1), lo, hi+(hi-lo)*1e-9)
	counts := stat.Histogram(nil, dividers, x, nil)

	mean, std := stat.MeanStdDev(x, nil)
	fmt.Fprintln(out, asciigraph.Plot(counts,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("side speed histogram %.3g..%.3g m/s", lo, hi)),
	))
	fmt.Fprintf(out, "\n%d samples, mean %.4g, std %.3g, median %.4g\n\n",
		len(x), mean, std, stat.Quantile(0.5, stat.Empirical, x, nil))
}

func plotTrajectory(out io.Writer, index int, track []dynamo.PhasePoint) {
	if len(track) < 2 {
		fmt.Fprintf(out, "particle %d has %d samples\n", index, len(track))
		return
	}
	xs := make([]float64, len(track))
	ys := make([]float64, len(track))
	for i, p := range track {
		xs[i], ys[i] = p.X, p.Y
	}
	fmt.Fprintln(out, asciigraph.PlotMany([][]float64{xs, ys},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		asciigraph.Caption(fmt.Sprintf("particle %d: x (red), y (blue) over %.4gs", index, track[len(track)-1].T)),
	))
}

func trackParticle(cmd *cobra.Command, args []string) error {
	sink, err := storage.OpenSQLite(sqlitePath)
	if err != nil {
		return err
	}
	defer sink.Close()

	track, err := sink.Track(args[0], particle)
	if err != nil {
		return err
	}
	if len(track) == 0 {
		return fmt.Errorf("no samples for run %s particle %d", args[0], particle)
	}
	plotTrajectory(cmd.OutOrStdout(), particle, track)
	return nil
}
