package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <trace.json>",
		Short: "Replay a frame trace",
		Long: `The run command replays a JSON frame trace against simulated video memory.

A trace lists frames, each with a list of operations:
  {"frames":[{"ops":[
    {"op":"create","arena":"sprite","data":"hero","count":16},
    {"op":"allocate","arena":"bg_map","data":"hud","count":1},
    {"op":"release","data":"hero"},
    {"op":"reload","data":"hero"}
  ]}]}

Arenas are sprite, bg_tiles and bg_map. Creating the same data name twice shares
its blocks; allocating it twice does not.

Example:
  vramsim run level1.json
  vramsim run level1.json --json --map`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, args)
		},
	}
	return cmd
}

func runTrace(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "failed to read trace")
	}

	frames, err := parseTrace(data)
	if err != nil {
		return err
	}

	return runFrames(cmd.OutOrStdout(), frames, currentOptions())
}
