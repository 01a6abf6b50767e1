package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func GenMeshCmd() *cobra.Command {
	var (
		out      string
		cellSize float32
		grid     = defaultGrid
	)
	c := &cobra.Command{
		Use:   "gen-mesh",
		Short: "write a demo grid mesh with blobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := grid.build(cellSize)
			if err != nil {
				return err
			}
			if err := saveMesh(m, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d triangles, %d polygons (%d walkable)\n",
				out, m.TriangleCount(), m.PolygonCount(), m.WalkablePolygonCount)
			return nil
		},
	}
	c.Flags().StringVar(&out, "out", "mesh.bin", "output file, .pb for protobuf")
	c.Flags().IntVar(&grid.cols, "cols", grid.cols, "grid columns")
	c.Flags().IntVar(&grid.rows, "rows", grid.rows, "grid rows")
	c.Flags().Float32Var(&grid.size, "size", grid.size, "cell size")
	c.Flags().IntVar(&grid.blobEvery, "blob-every", grid.blobEvery, "one blob per n x n cells, 0 for none")
	c.Flags().Float32Var(&cellSize, "cell-size", 8, "triangle index cell size")
	return c
}
