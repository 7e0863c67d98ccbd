package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/zeebo/mwc"
)

var (
	randomSeed        uint64
	randomFrameCount  int
	randomOpsPerFrame int
	randomTraceOut    string
)

func init() {
	cmd := newRandomCmd()
	cmd.Flags().Uint64Var(&randomSeed, "seed", 1, "Seed of the workload generator")
	cmd.Flags().IntVar(&randomFrameCount, "frames", 60, "Number of frames to simulate")
	cmd.Flags().IntVar(&randomOpsPerFrame, "ops", 8, "Number of operations per frame")
	cmd.Flags().StringVar(&randomTraceOut, "trace-out", "", "Write the generated trace to this file")
	rootCmd.AddCommand(cmd)
}

func newRandomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Simulate a random asset churn workload",
		Long: `The random command generates a workload of sprites, tilesets, maps and scratch
allocations being created and released, and simulates it. The same seed always
produces the same workload.

Example:
  vramsim random --seed 7 --frames 600
  vramsim random --seed 7 --trace-out churn.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRandom(cmd)
		},
	}
	return cmd
}

func runRandom(cmd *cobra.Command) error {
	if randomFrameCount < 1 || randomOpsPerFrame < 1 {
		return errors.New("--frames and --ops must be positive")
	}

	frames := randomFrames(randomSeed, randomFrameCount, randomOpsPerFrame)

	if randomTraceOut != "" {
		data, err := writeTrace(frames)
		if err != nil {
			return err
		}
		if err := os.WriteFile(randomTraceOut, data, 0o644); err != nil {
			return errors.Wrap(err, "failed to write trace")
		}
	}

	return runFrames(cmd.OutOrStdout(), frames, currentOptions())
}

type catalogEntry struct {
	arena   string
	data    string
	count   int
	scratch bool
}

func randomCatalog(uint64n func(n uint64) uint64) []catalogEntry {
	var catalog []catalogEntry

	for i := 0; i < 24; i++ {
		catalog = append(catalog, catalogEntry{
			arena: "sprite",
			data:  fmt.Sprintf("sprite-%d", i),
			count: 1 << uint64n(6),
		})
	}
	for i := 0; i < 6; i++ {
		catalog = append(catalog, catalogEntry{
			arena: "bg_tiles",
			data:  fmt.Sprintf("tileset-%d", i),
			count: 1 + int(uint64n(8)),
		})
	}
	for i := 0; i < 6; i++ {
		catalog = append(catalog, catalogEntry{
			arena: "bg_map",
			data:  fmt.Sprintf("map-%d", i),
			count: 1 << uint64n(3),
		})
	}
	for i := 0; i < 4; i++ {
		catalog = append(catalog, catalogEntry{
			arena:   "sprite",
			data:    fmt.Sprintf("scratch-%d", i),
			count:   1 << uint64n(4),
			scratch: true,
		})
	}

	return catalog
}

// randomFrames generates a churn workload. Releases and reloads only target assets the generator
// believes are placed; placements that fail in the arena become skipped operations.
func randomFrames(seed uint64, frameCount, opsPerFrame int) []traceFrame {
	rng := mwc.New(seed, 1)
	catalog := randomCatalog(rng.Uint64n)
	usages := make([]int, len(catalog))

	var live []int
	pickLive := func(predicate func(entry catalogEntry) bool) int {
		live = live[:0]
		for i, count := range usages {
			if count > 0 && predicate(catalog[i]) {
				live = append(live, i)
			}
		}
		if len(live) == 0 {
			return -1
		}
		return live[rng.Uint64n(uint64(len(live)))]
	}

	frames := make([]traceFrame, frameCount)
	for frameIndex := range frames {
		ops := make([]traceOp, 0, opsPerFrame)

		for len(ops) < opsPerFrame {
			switch roll := rng.Uint64n(10); {
			case roll < 5:
				i := int(rng.Uint64n(uint64(len(catalog))))
				entry := catalog[i]
				op := opCreate
				if entry.scratch {
					op = opAllocate
				}
				ops = append(ops, traceOp{Op: op, Arena: entry.arena, Data: entry.data, Count: entry.count})
				usages[i]++
			case roll < 9:
				i := pickLive(func(catalogEntry) bool { return true })
				if i < 0 {
					continue
				}
				ops = append(ops, traceOp{Op: opRelease, Data: catalog[i].data})
				usages[i]--
			default:
				i := pickLive(func(entry catalogEntry) bool { return !entry.scratch })
				if i < 0 {
					continue
				}
				ops = append(ops, traceOp{Op: opReload, Data: catalog[i].data})
			}
		}

		frames[frameIndex].Ops = ops
	}

	return frames
}
