// Package scheduler fans probe tasks out across rows, bounded by a
// semaphore over concurrent external commands, and drains their results
// into a single-consumer update loop — generalizing the teacher's
// `internal/git/load.go` errgroup.SetLimit pattern (bounded parallel git
// subprocesses) and `pr_refresh.go` channel-drain pattern (one buffered
// channel, one consumer, progressive repaint) from "load N repos" /
// "refresh N PRs" to "run M probes across N rows".
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wtstatus/wtstatus/internal/probe"
	"github.com/wtstatus/wtstatus/internal/statusrow"
)

// Update is sent to the renderer each time a probe result is applied to a
// row (spec.md §4.2's drain_cell_updates on_update callback).
type Update struct {
	RowIdx int
	Row    *statusrow.Row
	Err    *probe.TaskError
}

// Missing identifies a (row, probe kind) pair that never completed before
// the deadline (spec.md §4.2).
type Missing struct {
	RowIdx int
	Kind   probe.Kind
}

// Run fans tasks out (bounded by probe.MaxConcurrentCommands), applies
// each probe's result to its row, and invokes onUpdate for every
// completed task in receive order. Local (non-network) tasks are run
// before network tasks within each row is the caller's responsibility —
// Run only executes whatever tasks it is given, in the order submitted,
// concurrently.
//
// Run returns the list of tasks still outstanding when ctx is cancelled
// or its deadline fires (spec.md §4.2's "diagnostic listing which
// (row_idx, probe_kind) pairs were missing").
func Run(ctx context.Context, tasks []probe.Task, onUpdate func(Update)) []Missing {
	results := make(chan Update, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(probe.MaxConcurrentCommands()))

	completed := make([]bool, len(tasks))
	var mu sync.Mutex

	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			taskErr := probe.Execute(gctx, t)

			mu.Lock()
			completed[i] = true
			mu.Unlock()

			results <- Update{RowIdx: t.RowIdx, Row: t.Row, Err: taskErr}
			return nil // probe failures are values, not errgroup aborts
		})
	}

	go func() {
		g.Wait()
		close(results)
	}()

	var missing []Missing
drain:
	for {
		select {
		case u, ok := <-results:
			if !ok {
				break drain
			}
			onUpdate(u)
		case <-ctx.Done():
			mu.Lock()
			for i, t := range tasks {
				if !completed[i] {
					missing = append(missing, Missing{RowIdx: t.RowIdx, Kind: t.Kind})
				}
			}
			mu.Unlock()
			break drain
		}
	}

	return missing
}

// FormatMissing renders the post-table diagnostic line for outstanding
// probes (spec.md §7's "5 probes timed out; rerun with --no-fetch-ci to
// isolate" style one-liner).
func FormatMissing(missing []Missing) string {
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf("%d probe(s) did not complete before the deadline", len(missing))
}
