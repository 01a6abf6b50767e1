package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "crowdsim",
		Short:        "headless crowd simulation on a navigation mesh",
		SilenceUsage: true,
	}
	root.AddCommand(GenMeshCmd(), RunCmd(), InspectCmd(), ConfigCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
