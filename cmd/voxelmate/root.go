package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"voxelmate.ai/internal/config"
)

func newRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:   "voxelmate",
		Short: "Chat-driven companion agent for a voxel world",
		Long: `voxelmate joins a voxel world as an agent, talks to players through a
language model and follows them or walks to the blocks they point at.

Example:
  voxelmate run --config voxelmate.yaml --url ws://localhost:8080/v1/ws`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (defaults apply when empty)")

	load := func() (config.Config, error) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(newRunCmd(load), newMemoryCmd(load))
	return root
}

type loadFunc func() (config.Config, error)
