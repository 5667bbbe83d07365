package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/cfs/internal/pager"
	"github.com/yairfalse/cfs/internal/report"
	"github.com/yairfalse/cfs/internal/shape"
	"github.com/yairfalse/cfs/internal/telemetry"
	"github.com/yairfalse/cfs/internal/writer"
	"github.com/yairfalse/cfs/storage"
)

// MockWriter writes fixed files, or fails.
type MockWriter struct {
	name  string
	tree  *storage.Tree
	files []string
	err   error
	fatal error
	order *recorder
}

func (m *MockWriter) Name() string { return m.name }

func (m *MockWriter) Write(_ context.Context, errs *report.Collector) error {
	if m.order != nil {
		m.order.add(m.name)
	}
	if m.fatal != nil {
		return m.fatal
	}
	if err := m.tree.Clear(m.name); err != nil {
		return err
	}
	for _, f := range m.files {
		if _, err := m.tree.Write(m.name, []string{f}, map[string]any{"id": f}); err != nil {
			return err
		}
	}
	if m.err != nil {
		errs.Add(m.err)
	}
	return nil
}

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) Set(name string) { r.add("set:" + name) }

// MockPlugins implements Plugins for testing
type MockPlugins struct {
	err   error
	order *recorder
}

func (m *MockPlugins) Run(context.Context) error {
	if m.order != nil {
		m.order.add("plugins")
	}
	return m.err
}

func TestOrchestrator_Sync(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".cfs")
	tree := storage.New(root)
	order := &recorder{}

	regions := &MockWriter{name: "regions", tree: tree, files: []string{"us-east-1"}, order: order}
	writers := []writerStub{
		{name: "vpcs", files: []string{"vpc-1"}},
		{name: "buckets", files: []string{"logs", "assets"}},
	}

	orch := NewOrchestrator(tree, regions, build(tree, writers, order)).
		WithRegion(order, "us-east-1").
		WithPlugins(&MockPlugins{order: order})

	result, err := orch.Sync(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Kinds)
	assert.Equal(t, 0, result.Report.Count)
	assert.Greater(t, result.Duration.Nanoseconds(), int64(0))

	files, err := tree.Files()
	require.NoError(t, err)
	assert.Len(t, files, 4)

	gitignore, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "*\n", string(gitignore))

	_, err = os.Stat(tree.ErrorLogPath())
	assert.True(t, os.IsNotExist(err))

	// The filter is set before regions, and regions before any other kind.
	require.Len(t, order.calls, 5)
	assert.Equal(t, []string{"set:us-east-1", "regions"}, order.calls[:2])
	assert.ElementsMatch(t, []string{"vpcs", "buckets"}, order.calls[2:4])
	assert.Equal(t, "plugins", order.calls[4])
}

func TestOrchestrator_Sync_RemovesStaleErrorLog(t *testing.T) {
	root := t.TempDir()
	tree := storage.New(root)
	require.NoError(t, os.WriteFile(tree.ErrorLogPath(), []byte("{}"), 0o644))

	_, err := NewOrchestrator(tree, nil, nil).Sync(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(tree.ErrorLogPath())
	assert.True(t, os.IsNotExist(err))
}

func TestOrchestrator_Sync_ErrorsAreReported(t *testing.T) {
	root := t.TempDir()
	tree := storage.New(root)

	denied := &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "denied"}
	writers := build(tree, []writerStub{
		{name: "vpcs", files: []string{"vpc-1"}},
		{name: "tables", err: denied},
		{name: "queues", fatal: errors.New("remove queues: permission denied")},
	}, nil)

	result, err := NewOrchestrator(tree, nil, writers).Sync(context.Background())
	require.Error(t, err)

	var summary *report.SummaryError
	require.ErrorAs(t, err, &summary)
	assert.Equal(t, tree.ErrorLogPath(), summary.LogPath)
	assert.Contains(t, err.Error(), "errors.log")

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Report.Count)

	// The succeeding kind is still written.
	_, err = os.Stat(filepath.Join(root, "vpcs", "vpc-1"))
	require.NoError(t, err)

	data, err := os.ReadFile(tree.ErrorLogPath())
	require.NoError(t, err)
	var logged map[string]any
	require.NoError(t, json.Unmarshal(data, &logged))
	assert.Equal(t, float64(2), logged["count"])
}

func TestOrchestrator_Sync_PluginFailure(t *testing.T) {
	tree := storage.New(t.TempDir())
	pluginErr := errors.New("plugin failed")

	writers := build(tree, []writerStub{
		{name: "vpcs", err: errors.New("boom")},
	}, nil)

	_, err := NewOrchestrator(tree, nil, writers).
		WithPlugins(&MockPlugins{err: pluginErr}).
		Sync(context.Background())

	require.ErrorIs(t, err, pluginErr)
	// The error log is still written.
	_, statErr := os.Stat(tree.ErrorLogPath())
	assert.NoError(t, statErr)
}

func TestOrchestrator_Sync_PrepareFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	result, err := NewOrchestrator(storage.New(filepath.Join(blocker, ".cfs")), nil, nil).Sync(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)
}

// MockTotals implements Totals for testing
type MockTotals struct {
	KindTotalsFunc func(ctx context.Context) (map[string]telemetry.KindTotal, error)
}

func (m *MockTotals) KindTotals(ctx context.Context) (map[string]telemetry.KindTotal, error) {
	return m.KindTotalsFunc(ctx)
}

func TestOrchestrator_Sync_RecordsKindTotals(t *testing.T) {
	ctx := context.Background()
	provider, err := telemetry.NewProvider(ctx, "cfs-test")
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()
	metrics, err := telemetry.NewMetrics(provider.Meter())
	require.NoError(t, err)

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	tree := storage.New(t.TempDir())
	vpcs := writer.New(writer.Kind[map[string]any]{
		Name: "vpcs",
		Item: shape.Object(shape.Required("VpcId", shape.String())),
		List: func(context.Context, string) pager.Cursor[map[string]any] {
			return pager.Slice([]map[string]any{{"VpcId": "vpc-1"}, {"VpcId": "vpc-2"}}, []map[string]any{{"VpcId": "vpc-3"}})
		},
		Identity: writer.Field("VpcId"),
	}, tree, staticRegions{"us-east-1"}, writer.WithMetrics(metrics))

	result, err := NewOrchestrator(tree, nil, []writer.Writer{vpcs}).
		WithTotals(provider).
		Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, map[string]telemetry.KindTotal{"vpcs": {Pages: 2, Items: 3}}, result.Totals)
	assert.Contains(t, buf.String(), `"files":3`)
}

func TestOrchestrator_Sync_TotalsFailureIsNotFatal(t *testing.T) {
	tree := storage.New(t.TempDir())
	totals := &MockTotals{
		KindTotalsFunc: func(context.Context) (map[string]telemetry.KindTotal, error) {
			return nil, errors.New("reader is shut down")
		},
	}

	result, err := NewOrchestrator(tree, nil, nil).WithTotals(totals).Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Totals)
}

type staticRegions []string

func (s staticRegions) Names(context.Context) ([]string, error) { return s, nil }

type writerStub struct {
	name  string
	files []string
	err   error
	fatal error
}

func build(tree *storage.Tree, stubs []writerStub, order *recorder) []writer.Writer {
	writers := make([]writer.Writer, len(stubs))
	for i, s := range stubs {
		writers[i] = &MockWriter{
			name:  s.name,
			tree:  tree,
			files: s.files,
			err:   s.err,
			fatal: s.fatal,
			order: order,
		}
	}
	return writers
}
