package vcf

import (
	"runtime"
	"sync"
)

// WorkItem holds one raw data line ready for decoding.
type WorkItem struct {
	Seq        int
	LineNumber int
	Line       string
}

// WorkResult holds the decoded output for a single line.
type WorkResult struct {
	Seq        int
	LineNumber int
	Variant    *Variant
	Err        error
}

// ParallelDecode decodes work items using a pool of workers that share the
// decoder and its read-only header.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (d *Decoder) ParallelDecode(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				v, err := d.Decode(item.Line)
				if err != nil {
					err = &ParseError{Line: item.LineNumber, Err: err}
				}
				results <- WorkResult{
					Seq:        item.Seq,
					LineNumber: item.LineNumber,
					Variant:    v,
					Err:        err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
