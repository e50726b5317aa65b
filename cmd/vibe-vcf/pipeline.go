package main

import (
	"context"
	"errors"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

// streamStats summarizes a decode pass.
type streamStats struct {
	Decoded int
	Skipped int
}

// decodeStream reads the data lines of p, decodes them on a worker pool and
// calls fn with each variant in input order. Records that fail to decode are
// logged and skipped when skipInvalid is set; otherwise the first failure
// stops the stream.
func decodeStream(ctx context.Context, p *vcf.Parser, workers int, skipInvalid bool, logger *zap.Logger, fn func(*vcf.Variant) error) (streamStats, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var stats streamStats
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	items := make(chan vcf.WorkItem, 2*workers)

	g.Go(func() error {
		defer close(items)
		for seq := 0; ; seq++ {
			line, err := p.ReadLine()
			if err != nil {
				return err
			}
			if line == "" {
				return nil
			}
			select {
			case items <- vcf.WorkItem{Seq: seq, LineNumber: p.LineNumber(), Line: line}:
			case <-ctx.Done():
				// The collector reports the error that stopped the stream.
				return nil
			}
		}
	})

	results := p.Decoder().ParallelDecode(items, workers)

	handle := func(r vcf.WorkResult) error {
		if r.Err != nil {
			if !skipInvalid {
				return r.Err
			}
			stats.Skipped++
			logger.Warn("skipping invalid record",
				zap.Int("line", r.LineNumber),
				zap.Error(errors.Unwrap(r.Err)))
			return nil
		}
		stats.Decoded++
		return fn(r.Variant)
	}

	g.Go(func() error {
		return vcf.OrderedCollect(results, func(r vcf.WorkResult) error {
			if err := handle(r); err != nil {
				// Stop the reader; the collector drains what is in flight.
				cancel()
				return err
			}
			return nil
		})
	})

	err := g.Wait()
	logger.Debug("decode finished",
		zap.Int("decoded", stats.Decoded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("workers", workers))
	return stats, err
}
