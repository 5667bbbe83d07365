package orchestrator

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yairfalse/cfs/internal/report"
	"github.com/yairfalse/cfs/internal/writer"
	"github.com/yairfalse/cfs/storage"
)

// Orchestrator coordinates prepare → regions → writers → plugins → report
type Orchestrator struct {
	tree    *storage.Tree
	regions writer.Writer
	writers []writer.Writer
	filter  RegionFilter
	region  string
	plugins Plugins
	totals  Totals
}

// NewOrchestrator creates an orchestrator writing into tree. regions runs
// first; writers run concurrently afterwards.
func NewOrchestrator(tree *storage.Tree, regions writer.Writer, writers []writer.Writer) *Orchestrator {
	return &Orchestrator{
		tree:    tree,
		regions: regions,
		writers: writers,
	}
}

// WithRegion restricts discovery to one region. An empty name keeps every
// enabled region.
func (o *Orchestrator) WithRegion(filter RegionFilter, name string) *Orchestrator {
	o.filter = filter
	o.region = name
	return o
}

// WithPlugins sets the plugins run after the writers
func (o *Orchestrator) WithPlugins(p Plugins) *Orchestrator {
	o.plugins = p
	return o
}

// WithTotals sets where per-kind counters are read from when the sync ends
func (o *Orchestrator) WithTotals(t Totals) *Orchestrator {
	o.totals = t
	return o
}

// Sync mirrors the account once. The returned error is the summary of the
// collected failures, a plugin failure, or a failure to prepare the output
// tree; the result is returned in every case but the last.
func (o *Orchestrator) Sync(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{
		StartTime: time.Now(),
		Kinds:     len(o.writers),
	}

	if err := o.tree.Prepare(); err != nil {
		return nil, err
	}
	if o.filter != nil {
		o.filter.Set(o.region)
	}

	log.Info().Msg("Downloading resource information ...")

	errs := report.NewCollector()
	if o.regions != nil {
		if err := o.regions.Write(ctx, errs); err != nil {
			errs.Add(fmt.Errorf("%s: %w", o.regions.Name(), err))
		}
	}
	o.writeAll(ctx, errs)

	pluginErr := o.runPlugins(ctx)

	result.Report = errs.Format()
	o.finish(ctx, result)

	if result.Report.Count > 0 {
		if err := result.Report.Write(o.tree.ErrorLogPath()); err != nil {
			return result, err
		}
	}
	if pluginErr != nil {
		return result, pluginErr
	}
	if result.Report.Count > 0 {
		return result, result.Report.Summary(o.tree.ErrorLogPath())
	}
	return result, nil
}

func (o *Orchestrator) writeAll(ctx context.Context, errs *report.Collector) {
	var wg sync.WaitGroup
	for _, w := range o.writers {
		wg.Add(1)
		go func(w writer.Writer) {
			defer wg.Done()
			if err := w.Write(ctx, errs); err != nil {
				// Continue with other kinds
				errs.Add(fmt.Errorf("%s: %w", w.Name(), err))
			}
		}(w)
	}
	wg.Wait()
}

func (o *Orchestrator) runPlugins(ctx context.Context) error {
	if o.plugins == nil {
		return nil
	}
	return o.plugins.Run(ctx)
}

func (o *Orchestrator) finish(ctx context.Context, result *SyncResult) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	result.Success = result.Report.Count == 0

	var items int64
	if o.totals != nil {
		totals, err := o.totals.KindTotals(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("read kind totals")
		}
		result.Totals = totals
		for _, kind := range slices.Sorted(maps.Keys(totals)) {
			t := totals[kind]
			items += t.Items
			log.Debug().
				Str("kind", kind).
				Int64("pages", t.Pages).
				Int64("files", t.Items).
				Int64("failures", t.Failures).
				Msg("kind written")
		}
	}

	seconds := int(result.Duration.Seconds() + 0.999)
	unit := "seconds"
	if seconds == 1 {
		unit = "second"
	}

	log.Info().
		Int("kinds", result.Kinds).
		Int64("files", items).
		Int("errors", result.Report.Count).
		Dur("duration", result.Duration).
		Bool("success", result.Success).
		Msgf("The operation took %d %s.", seconds, unit)
}
