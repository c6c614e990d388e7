// Package pool executes a set of work items under bounded concurrency.
//
// A fixed set of P workers pulls items from an unbuffered dispatch
// channel, so at most P items are in flight and the dispatcher blocks
// rather than buffering queued work. Any failure while processing one
// item -- engine error, timeout, filesystem error, even a panic -- is
// contained to that item's result; every other in-flight and queued item
// proceeds unaffected.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/molforge/dockprep/internal/catalog"
	"github.com/molforge/dockprep/internal/engine"
	"github.com/molforge/dockprep/internal/ledger"
	"github.com/molforge/dockprep/internal/logging"
)

// Adapter wraps a single external-engine invocation. Implementations must
// confine side effects to the item's output and error paths and must
// never return until the item has a classifiable outcome.
type Adapter interface {
	Convert(ctx context.Context, item catalog.WorkItem) engine.Outcome
}

// ItemResult is the terminal record for one executed item.
type ItemResult struct {
	Item       catalog.WorkItem
	State      catalog.State // SUCCESS or FAILED.
	Stage      string
	Diagnostic string
	Start      time.Time
	End        time.Time
}

// Orchestrator dispatches work items to a bounded worker set and streams
// terminal results to a consumer.
type Orchestrator struct {
	Workers int
	Adapter Adapter
	Ledger  ledger.Ledger
	Log     zerolog.Logger
	JobLog  *logging.JobLog
	RunID   string
}

// Run executes items and calls onResult serially, in completion order,
// for every item that was dispatched. On context cancellation the
// dispatcher stops feeding new items; in-flight items finish and are
// recorded, undispatched items stay eligible for resume. Returns the
// number of items dispatched.
func (o *Orchestrator) Run(ctx context.Context, items []catalog.WorkItem, onResult func(ItemResult)) int {
	workers := o.Workers
	if workers < 1 {
		workers = 1
	}

	tasks := make(chan catalog.WorkItem)
	results := make(chan ItemResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				results <- o.runOne(ctx, item)
			}
		}()
	}

	dispatched := 0
	go func() {
		defer close(tasks)
		for _, item := range items {
			select {
			case tasks <- item:
				dispatched++
			case <-ctx.Done():
				o.Log.Warn().Int("remaining", len(items)-dispatched).Msg("interrupted, not dispatching remaining items")
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	done := 0
	for res := range results {
		done++
		onResult(res)
	}
	return done
}

// runOne is the per-item fault boundary: the adapter invocation, outcome
// classification, ledger record, and job log line for a single item.
// Panics are converted into FAILED results so one poisoned record cannot
// take down a worker.
func (o *Orchestrator) runOne(ctx context.Context, item catalog.WorkItem) (res ItemResult) {
	item.State = catalog.StateRunning
	res = ItemResult{Item: item, Start: time.Now()}

	defer func() {
		if r := recover(); r != nil {
			res.State = catalog.StateFailed
			res.Stage = "panic"
			res.Diagnostic = fmt.Sprint(r)
		}
		res.End = time.Now()
		res.Item.State = res.State
		o.record(res)
	}()

	out := o.Adapter.Convert(ctx, item)
	if out.OK {
		res.State = catalog.StateSuccess
	} else {
		res.State = catalog.StateFailed
		res.Stage = out.Stage
		res.Diagnostic = out.Diagnostic
	}
	return res
}

// record writes the ledger entry and job log line for a terminal result.
// Recording failures are logged but never fail the item: the output
// itself is already durable, which is what resume keys on.
func (o *Orchestrator) record(res ItemResult) {
	if o.Ledger != nil {
		if err := o.Ledger.RecordOutcome(res.Item.Entry()); err != nil {
			o.Log.Error().Err(err).Str("source", res.Item.SourcePath).Msg("ledger record failed")
		}
	}
	if o.JobLog != nil {
		o.JobLog.Item(o.RunID, res.Item.ID,
			res.Item.SourcePath, res.Item.OutputPath, string(res.Item.Strategy),
			string(res.State),
			res.Start.UnixMilli(), res.End.UnixMilli())
	}
}
