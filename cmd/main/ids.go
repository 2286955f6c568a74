package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"tasktracker/internal/id"
)

func newIDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Allocate or inspect identifiers",
	}
	cmd.AddCommand(newIDNextCmd(), newIDDecodeCmd())
	return cmd
}

func newIDNextCmd() *cobra.Command {
	var (
		count     int
		machineID int64
	)
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print freshly allocated identifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := id.New(machineID)
			if err != nil {
				return err
			}
			for i := 0; i < count; i++ {
				v, err := g.NextID()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of ids to print")
	cmd.Flags().Int64VarP(&machineID, "machine-id", "m", id.DefaultMachineID, "machine id embedded in the ids")
	return cmd
}

func newIDDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <id>...",
		Short: "Show timestamp, machine id and sequence of identifiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, arg := range args {
				v, err := id.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid id %q: %w", arg, err)
				}
				if err := enc.Encode(id.Decode(v)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
