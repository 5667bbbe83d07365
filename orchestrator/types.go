package orchestrator

import (
	"context"
	"time"

	"github.com/yairfalse/cfs/internal/report"
	"github.com/yairfalse/cfs/internal/telemetry"
)

// SyncResult contains the results of one sync
type SyncResult struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Kinds     int           `json:"kinds"`
	Report    report.Report `json:"report"`
	Success   bool          `json:"success"`
	// Totals holds the pages, files and failures recorded per kind.
	Totals map[string]telemetry.KindTotal `json:"totals,omitempty"`
}

// RegionFilter records the single region to discover
type RegionFilter interface {
	Set(name string)
}

// Plugins runs the user's post-processing steps
type Plugins interface {
	Run(ctx context.Context) error
}

// Totals reports the per-kind counters the writers recorded
type Totals interface {
	KindTotals(ctx context.Context) (map[string]telemetry.KindTotal, error)
}
