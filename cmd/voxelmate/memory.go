package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"voxelmate.ai/internal/memory"
)

func newMemoryCmd(load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect or reset the conversation memory",
	}

	var asJSON bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			store, err := memory.Open(cfg.Memory.Backend, cfg.Memory.Path)
			if err != nil {
				return err
			}
			defer store.Close()
			entries, err := store.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if entries == nil {
					entries = []memory.Entry{}
				}
				return enc.Encode(entries)
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s: %s -> Bot: %s\n", e.User, e.Message, e.Response)
			}
			return nil
		},
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored exchange",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			store, err := memory.Open(cfg.Memory.Backend, cfg.Memory.Path)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s memory at %s\n", cfg.Memory.Backend, cfg.Memory.Path)
			return nil
		},
	}

	cmd.AddCommand(showCmd, clearCmd)
	return cmd
}
