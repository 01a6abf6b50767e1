package main

import (
	"github.com/gorustyt/crowdnav/config"
	"github.com/spf13/cobra"
)

func ConfigCmd() *cobra.Command {
	var configFile string
	c := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			raw, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
	c.Flags().StringVar(&configFile, "config", "", "config file, defaults when empty")
	return c
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}
