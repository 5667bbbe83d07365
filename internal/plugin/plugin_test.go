package plugin

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder implements Executor for testing.
type recorder struct {
	calls  [][]string
	failAt int
}

func (r *recorder) Execute(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.failAt > 0 && len(r.calls) == r.failAt {
		return errors.New("exit status 1")
	}
	return nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{".js", ".sh", ".ts"}, r.Extensions())

	in, ok := r.Get(".TS")
	require.True(t, ok)
	assert.Equal(t, Interpreter{"npx", "ts-node"}, in)

	r.Register(".PY", Interpreter{"python3"})
	_, ok = r.Get(".py")
	assert.True(t, ok)
	assert.Equal(t, []string{".js", ".py", ".sh", ".ts"}, r.Extensions())

	_, ok = NewRegistry().Get(".js")
	assert.False(t, ok)
}

func TestParse_BothStepForms(t *testing.T) {
	d, err := Parse([]byte(`
plugins:
  - echo hello
  - run: checks/no-public-buckets.ts
    description: no public buckets
  - run: old.js
    disabled: true
`))
	require.NoError(t, err)
	assert.False(t, d.Disabled)
	assert.Equal(t, []Step{
		{Run: "echo hello"},
		{Run: "checks/no-public-buckets.ts", Description: "no public buckets"},
		{Run: "old.js", Disabled: true},
	}, d.Plugins)
}

func TestParse_JSON(t *testing.T) {
	d, err := Parse([]byte(`{"disabled": true, "plugins": ["ls", {"run": "a.sh"}]}`))
	require.NoError(t, err)
	assert.True(t, d.Disabled)
	assert.Len(t, d.Plugins, 2)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"number step":  "plugins:\n  - 42\n",
		"list step":    "plugins:\n  - [a, b]\n",
		"missing run":  "plugins:\n  - description: nothing\n",
		"broken yaml":  "plugins: [\n",
		"plugins type": "plugins: hello\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestFind_Order(t *testing.T) {
	dir := t.TempDir()

	_, ok, err := Find(dir)
	require.NoError(t, err)
	assert.False(t, ok)

	writeFile(t, dir, "plugins.yml", "plugins: []\n")
	path, ok, err := Find(dir)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "plugins.yml", filepath.Base(path))

	writeFile(t, dir, "plugins.json", `{"plugins": []}`)
	path, _, err = Find(dir)
	require.NoError(t, err)
	assert.Equal(t, "plugins.json", filepath.Base(path))
}

func TestRun_NoDeclaration(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(filepath.Join(t.TempDir(), "plugins"), WithExecutor(rec))

	require.NoError(t, r.Run(context.Background()))
	assert.Empty(t, rec.calls)
}

func TestRun_DisabledDeclaration(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugins.yaml", "disabled: true\nplugins:\n  - echo hi\n")
	rec := &recorder{}

	require.NoError(t, NewRunner(dir, WithExecutor(rec)).Run(context.Background()))
	assert.Empty(t, rec.calls)
	_, err := os.Stat(filepath.Join(dir, RunDir))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_StepsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugins.yaml", `
plugins:
  - echo first
  - run: report.js
    description: report
  - run: check.ts
  - run: skipped.sh
    disabled: true
  - run: tidy.sh
`)
	// Leftovers from an earlier run are removed.
	writeFile(t, filepath.Join(dir, RunDir), "plugin-9.sh", "stale")

	rec := &recorder{}
	var out bytes.Buffer
	r := NewRunner(dir, WithExecutor(rec), WithOutput(&out))

	require.NoError(t, r.Run(context.Background()))

	script := filepath.Join(dir, RunDir, "plugin-0.sh")
	assert.Equal(t, [][]string{
		{"sh", script},
		{"node", filepath.Join(dir, "report.js")},
		{"npx", "ts-node", filepath.Join(dir, "check.ts")},
		{"sh", filepath.Join(dir, "tidy.sh")},
	}, rec.calls)

	data, err := os.ReadFile(script)
	require.NoError(t, err)
	assert.Equal(t, "echo first", string(data))

	gitignore, err := os.ReadFile(filepath.Join(dir, RunDir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "*\n", string(gitignore))

	_, err = os.Stat(filepath.Join(dir, RunDir, "plugin-9.sh"))
	assert.True(t, os.IsNotExist(err))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"Running plugin ... [0]",
		"Running plugin ... [1: report]",
		"Running plugin ... [2]",
		"Running plugin ... [4]",
	}, lines)
}

func TestRun_CustomInterpreters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugins.yaml", `
plugins:
  - run: audit.py
  - run: report.js
`)

	reg := DefaultRegistry()
	reg.Register(".py", Interpreter{"python3", "-u"})
	reg.Register(".js", Interpreter{"bun"})

	rec := &recorder{}
	r := NewRunner(dir, WithExecutor(rec), WithRegistry(reg), WithOutput(&bytes.Buffer{}))
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, [][]string{
		{"python3", "-u", filepath.Join(dir, "audit.py")},
		{"bun", filepath.Join(dir, "report.js")},
	}, rec.calls)
}

func TestRun_FailureAbortsRemaining(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugins.json", `{"plugins": ["true", {"run": "false", "description": "gate"}, "echo never"]}`)

	rec := &recorder{failAt: 2}
	err := NewRunner(dir, WithExecutor(rec), WithOutput(&bytes.Buffer{})).Run(context.Background())

	require.Error(t, err)
	var pluginErr *Error
	require.ErrorAs(t, err, &pluginErr)
	assert.Equal(t, 1, pluginErr.Index)
	assert.Equal(t, "gate", pluginErr.Description)
	assert.Equal(t, "The plugin failed.", err.Error())
	assert.Len(t, rec.calls, 2)
}

func TestRun_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugins.yaml", "plugins:\n  - 1\n")

	err := NewRunner(dir, WithExecutor(&recorder{})).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Contains(t, err.Error(), "plugins.yaml")
}

func TestInherit_RunsProcess(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	require.NoError(t, Inherit.Execute(context.Background(), "sh", "-c", "exit 0"))
	assert.Error(t, Inherit.Execute(context.Background(), "sh", "-c", "exit 3"))
}
