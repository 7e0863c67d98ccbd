package main

import (
	"fmt"
	"io"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/tilemem/memutils"
)

func writeReport(out io.Writer, report frameReport, asJSON bool) error {
	if asJSON {
		writer := jwriter.NewWriter()
		report.writeJSON(&writer)
		if err := writer.Error(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, string(writer.Bytes()))
		return err
	}

	_, err := fmt.Fprintf(out, "frame %d: ops=%d failures=%d skipped=%d reclaimed=%t committed=%t\n",
		report.Frame, report.Ops, report.Failures, report.Skipped, report.Result.Reclaimed, report.Result.Committed)
	if err != nil {
		return err
	}

	for _, arena := range report.Arenas {
		_, err = fmt.Fprintf(out, "  %-12s used=%-5d free=%-5d items=%-4d regions=%-3d untouched=%-5d digest=%016x\n",
			arena.Kind, arena.UsedBlocks, arena.FreeBlocks, arena.Items, arena.FreeRegions, arena.UntouchedBlocks, arena.Digest)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r frameReport) writeJSON(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	obj.Name("Frame").Int(r.Frame)
	obj.Name("Ops").Int(r.Ops)
	obj.Name("Failures").Int(r.Failures)
	obj.Name("Skipped").Int(r.Skipped)
	obj.Name("Reclaimed").Bool(r.Result.Reclaimed)
	obj.Name("Committed").Bool(r.Result.Committed)

	arenas := obj.Name("Arenas").Array()
	defer arenas.End()

	for _, arena := range r.Arenas {
		arenaObj := arenas.Object()
		arenaObj.Name("Arena").String(arena.Kind.String())
		arenaObj.Name("UsedBlocks").Int(arena.UsedBlocks)
		arenaObj.Name("FreeBlocks").Int(arena.FreeBlocks)
		arenaObj.Name("Items").Int(arena.Items)
		arenaObj.Name("FreeRegions").Int(arena.FreeRegions)
		arenaObj.Name("UntouchedBlocks").Int(arena.UntouchedBlocks)
		arenaObj.Name("Digest").String(fmt.Sprintf("%016x", arena.Digest))
		arenaObj.End()
	}
}

func writeStatistics(out io.Writer, name string, stats *memutils.DetailedStatistics) error {
	itemSizeMin, freeRangeSizeMin := stats.ItemSizeMin, stats.FreeRangeSizeMin
	if stats.ItemCount == 0 {
		itemSizeMin = 0
	}
	if stats.FreeRangeCount == 0 {
		freeRangeSizeMin = 0
	}

	_, err := fmt.Fprintf(out, "  %-12s blocks=%d/%d items=%d item size=[%d, %d] free ranges=%d free range size=[%d, %d]\n",
		name, stats.ItemBlocks, stats.ArenaBlocks, stats.ItemCount, itemSizeMin, stats.ItemSizeMax,
		stats.FreeRangeCount, freeRangeSizeMin, stats.FreeRangeSizeMax)
	return err
}

// writeSummary prints statistics for every arena and, if requested, the detailed map
func (s *simulator) writeSummary(out io.Writer, options simOptions) error {
	if options.PrintMap {
		writer := jwriter.NewWriter()
		s.manager.PrintDetailedMap(&writer)
		if err := writer.Error(); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, string(writer.Bytes())); err != nil {
			return err
		}
	}

	if options.JSON {
		return nil
	}

	stats := s.manager.CalculateStatistics()
	if _, err := fmt.Fprintf(out, "after %d frames:\n", s.frame); err != nil {
		return err
	}
	for _, entry := range []struct {
		name  string
		stats *memutils.DetailedStatistics
	}{
		{"SpriteTiles", &stats.SpriteTiles},
		{"BgTiles", &stats.BgTiles},
		{"BgMaps", &stats.BgMaps},
		{"Total", &stats.Total},
	} {
		if err := writeStatistics(out, entry.name, entry.stats); err != nil {
			return err
		}
	}

	return nil
}

func runFrames(out io.Writer, frames []traceFrame, options simOptions) error {
	sim, err := newSimulator(newLogger(), options)
	if err != nil {
		return err
	}

	for _, frame := range frames {
		report, err := sim.runFrame(frame)
		if err != nil {
			return err
		}

		if err := writeReport(out, report, options.JSON); err != nil {
			return err
		}
	}

	return sim.writeSummary(out, options)
}
