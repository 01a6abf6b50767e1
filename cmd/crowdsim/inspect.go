package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/gorustyt/crowdnav/navmesh"
	"github.com/gorustyt/crowdnav/trace"
	"github.com/spf13/cobra"
)

func InspectCmd() *cobra.Command {
	var (
		cellSize  float32
		tracePath string
	)
	c := &cobra.Command{
		Use:   "inspect [mesh]",
		Short: "print mesh statistics, and optionally a trace summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && tracePath == "" {
				return errors.New("nothing to inspect: pass a mesh file or --trace")
			}
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				m, err := loadMesh(args[0], cellSize)
				if err != nil {
					return err
				}
				printMesh(out, m)
			}
			if tracePath != "" {
				return printTrace(out, tracePath)
			}
			return nil
		},
	}
	c.Flags().Float32Var(&cellSize, "cell-size", 8, "triangle index cell size")
	c.Flags().StringVar(&tracePath, "trace", "", "trace file to summarize")
	return c
}

func printMesh(w io.Writer, m *navmesh.NavMesh) {
	fmt.Fprintf(w, "vertices   %d\n", len(m.Vertices))
	fmt.Fprintf(w, "triangles  %d (%d walkable)\n", m.TriangleCount(), m.WalkableTriangleCount)
	fmt.Fprintf(w, "polygons   %d (%d walkable, %d blobs)\n",
		m.PolygonCount(), m.WalkablePolygonCount, m.PolygonCount()-m.WalkablePolygonCount)
	fmt.Fprintf(w, "buildings  %d\n", m.BuildingCount())
	fmt.Fprintf(w, "bounds     (%g, %g) - (%g, %g)\n", m.BMin[0], m.BMin[1], m.BMax[0], m.BMax[1])
	if err := m.Validate(); err != nil {
		fmt.Fprintf(w, "invalid    %v\n", err)
		return
	}
	fmt.Fprintln(w, "valid")
}

func printTrace(w io.Writer, path string) error {
	r, err := trace.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	h := r.Header()
	fmt.Fprintf(w, "run %s seed %d capacity %d dt %g started %s\n", h.RunID, h.Seed, h.Capacity, h.Dt, h.StartedAt)
	var (
		tick  trace.Tick
		count int
	)
	for {
		err := r.Next(&tick)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("trace %s: %w", path, err)
		}
		count++
	}
	if count == 0 {
		fmt.Fprintln(w, "no ticks")
		return nil
	}
	states := map[string]int{}
	for _, ag := range tick.Agents {
		states[ag.State]++
	}
	fmt.Fprintf(w, "%d snapshots, last tick %d: %d agents, standing %d, traveling %d, escaping %d\n",
		count, tick.Tick, len(tick.Agents), states["standing"], states["traveling"], states["escaping"])
	return nil
}
