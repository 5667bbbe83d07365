// Package writer mirrors one resource kind into the output tree: it lists the
// kind in every region, validates each page and writes one file per item.
package writer

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yairfalse/cfs/internal/pager"
	"github.com/yairfalse/cfs/internal/report"
	"github.com/yairfalse/cfs/internal/shape"
	"github.com/yairfalse/cfs/internal/telemetry"
	"github.com/yairfalse/cfs/storage"
)

// Writer clears and rewrites one kind's subtree.
type Writer interface {
	// Name is the kind's directory below the output root, such as "vpcs"
	// or "alarms/metric".
	Name() string
	// Write clears the subtree and mirrors the kind. Listing failures are
	// added to errs; only a failure to clear the subtree is returned.
	Write(ctx context.Context, errs *report.Collector) error
}

// Regions supplies the regions a regional kind fans out over.
type Regions interface {
	Names(ctx context.Context) ([]string, error)
}

// Kind describes how one resource kind is listed, validated and named.
type Kind[T any] struct {
	// Name is the kind's directory, possibly with a sub-kind ("apis/rest").
	Name string
	// Global kinds are listed once and written without a region directory.
	Global bool
	// Exclude lists regions where the service is not offered.
	Exclude []string
	// Item is the shape every decoded item must match.
	Item shape.Shape
	// Page overrides the collection shape. Defaults to shape.Page(Item).
	Page shape.Shape
	// List opens a cursor over the kind in region. Global kinds receive "".
	List func(ctx context.Context, region string) pager.Cursor[T]
	// Identity names the file of a decoded item.
	Identity Identity
}

// Resource is the Writer for a Kind.
type Resource[T any] struct {
	kind    Kind[T]
	tree    *storage.Tree
	regions Regions
	metrics *telemetry.Metrics
}

// Option configures a Resource.
type Option func(*options)

type options struct {
	metrics *telemetry.Metrics
}

// WithMetrics records pages, items and failures on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New returns the writer for kind.
func New[T any](kind Kind[T], tree *storage.Tree, regions Regions, opts ...Option) *Resource[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if kind.Page == nil {
		kind.Page = shape.Page(kind.Item)
	}
	return &Resource[T]{kind: kind, tree: tree, regions: regions, metrics: o.metrics}
}

// Name returns the kind's directory.
func (r *Resource[T]) Name() string {
	return r.kind.Name
}

// Clear removes everything previously written for the kind.
func (r *Resource[T]) Clear() error {
	return r.tree.Clear(r.kind.Name)
}

// Write clears the kind's subtree, then lists and writes every region
// concurrently. A failing region does not stop its siblings.
func (r *Resource[T]) Write(ctx context.Context, errs *report.Collector) error {
	start := time.Now()
	defer func() {
		r.metrics.RecordKindDuration(ctx, r.kind.Name, time.Since(start))
	}()

	if err := r.Clear(); err != nil {
		return err
	}

	if r.kind.Global {
		if err := r.writeScope(ctx, ""); err != nil {
			r.fail(ctx, "", err, errs)
		}
		return nil
	}

	regions, err := r.regions.Names(ctx)
	if err != nil {
		r.fail(ctx, "", fmt.Errorf("list regions: %w", err), errs)
		return nil
	}

	var wg sync.WaitGroup
	for _, region := range regions {
		if slices.Contains(r.kind.Exclude, region) {
			log.Debug().Str("kind", r.kind.Name).Str("region", region).Msg("region excluded")
			continue
		}
		wg.Add(1)
		go func(region string) {
			defer wg.Done()
			if err := r.writeScope(ctx, region); err != nil {
				r.fail(ctx, region, err, errs)
			}
		}(region)
	}
	wg.Wait()

	return nil
}

func (r *Resource[T]) fail(ctx context.Context, region string, err error, errs *report.Collector) {
	r.metrics.RecordFailure(ctx, r.kind.Name, region)
	log.Debug().Err(err).Str("kind", r.kind.Name).Str("region", region).Msg("write failed")
	if region != "" {
		err = fmt.Errorf("%s %s: %w", r.kind.Name, region, err)
	} else {
		err = fmt.Errorf("%s: %w", r.kind.Name, err)
	}
	errs.Add(err)
}

// writeScope drains the cursor for one region (or the global scope). A page
// is written only when every item in it matches the kind's shape and names a
// file. Nothing from a failing page reaches the disk.
func (r *Resource[T]) writeScope(ctx context.Context, region string) error {
	cursor := r.kind.List(ctx, region)
	written := 0

	err := pager.Each(ctx, cursor, func(page []T) error {
		docs, err := DecodePage(page)
		if err != nil {
			return err
		}
		if err := shape.Validate(r.kind.Page, docs); err != nil {
			return err
		}

		targets := make([][]string, len(docs))
		for i, doc := range docs {
			segments := r.kind.Identity(doc)
			if _, err := storage.EncodePath(segments...); err != nil {
				return fmt.Errorf("name item %d: %w", i, err)
			}
			if region != "" {
				segments = append([]string{region}, segments...)
			}
			targets[i] = segments
		}

		for i, doc := range docs {
			if _, err := r.tree.Write(r.kind.Name, targets[i], doc); err != nil {
				return err
			}
		}
		written += len(docs)
		r.metrics.RecordPage(ctx, r.kind.Name, region, len(docs))
		return nil
	})
	if err != nil {
		return err
	}

	log.Debug().Str("kind", r.kind.Name).Str("region", region).Int("count", written).Msg("kind written")
	return nil
}
