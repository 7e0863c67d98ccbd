package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var (
	// Global flags
	verbose  bool
	jsonOut  bool
	maxItems int
	printMap bool
)

var rootCmd = &cobra.Command{
	Use:   "vramsim",
	Short: "Simulate video memory allocation for sprite and background assets",
	Long: `vramsim drives the sprite tiles, background tiles and background maps arenas
through a sequence of frames against simulated video memory. Each frame applies a list
of operations and then runs the frame's update and commit, reporting block usage,
allocation failures and a digest of video memory.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every arena operation to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output one JSON object per frame")
	rootCmd.PersistentFlags().IntVar(&maxItems, "max-items", 0, "Item capacity of every arena (power of two, 0 for defaults)")
	rootCmd.PersistentFlags().BoolVar(&printMap, "map", false, "Print a detailed map of every arena after the last frame")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.HandlerOptions{Level: level}.NewTextHandler(os.Stderr))
}

func currentOptions() simOptions {
	return simOptions{
		MaxItems: maxItems,
		JSON:     jsonOut,
		PrintMap: printMap,
	}
}
