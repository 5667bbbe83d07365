package plugin

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// RunDir holds the scripts written for inline steps. It is recreated on
// every run.
const RunDir = ".run"

// Error reports a step that exited unsuccessfully. Remaining steps are not
// run.
type Error struct {
	Index       int
	Description string
	Err         error
}

func (e *Error) Error() string {
	return "The plugin failed."
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Executor starts a process and waits for it to exit.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, name string, args ...string) error

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, name string, args ...string) error {
	return f(ctx, name, args...)
}

// Inherit runs processes attached to the current standard streams.
var Inherit = ExecutorFunc(func(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- plugins are declared by the user
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	log.Debug().Str("command", cmd.Path).Strs("args", cmd.Args).Msg("running plugin")
	return cmd.Run()
})

// Runner executes the declared steps one at a time.
type Runner struct {
	dir          string
	executor     Executor
	interpreters *Registry
	out          io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor replaces the process executor.
func WithExecutor(e Executor) Option {
	return func(r *Runner) { r.executor = e }
}

// WithRegistry replaces the interpreter registry.
func WithRegistry(reg *Registry) Option {
	return func(r *Runner) { r.interpreters = reg }
}

// WithOutput sets where progress lines are printed.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// NewRunner returns a runner for the plugins in dir.
func NewRunner(dir string, opts ...Option) *Runner {
	r := &Runner{
		dir:          dir,
		executor:     Inherit,
		interpreters: DefaultRegistry(),
		out:          os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loads the declaration and runs every enabled step in order. It returns
// nil when there is no declaration or it is disabled.
func (r *Runner) Run(ctx context.Context) error {
	d, err := Load(r.dir)
	if err != nil {
		return err
	}
	if d == nil || d.Disabled || len(d.Plugins) == 0 {
		return nil
	}

	log.Debug().Int("steps", len(d.Plugins)).Strs("interpreters", r.interpreters.Extensions()).Msg("running plugins")

	runDir := filepath.Join(r.dir, RunDir)
	if err := os.RemoveAll(runDir); err != nil {
		return fmt.Errorf("reset %s: %w", runDir, err)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", runDir, err)
	}
	if err := os.WriteFile(filepath.Join(runDir, ".gitignore"), []byte("*\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", runDir, err)
	}

	for i, step := range d.Plugins {
		if step.Disabled {
			log.Debug().Int("index", i).Msg("plugin disabled")
			continue
		}
		if err := r.runStep(ctx, i, step); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, i int, step Step) error {
	if step.Description != "" {
		fmt.Fprintf(r.out, "Running plugin ... [%d: %s]\n", i, step.Description)
	} else {
		fmt.Fprintf(r.out, "Running plugin ... [%d]\n", i)
	}

	name, args, err := r.command(i, step)
	if err != nil {
		return err
	}
	if err := r.executor.Execute(ctx, name, args...); err != nil {
		return &Error{Index: i, Description: step.Description, Err: err}
	}
	return nil
}

// command resolves a step to a process. Script files run with their
// interpreter; anything else is shell text saved under RunDir.
func (r *Runner) command(i int, step Step) (string, []string, error) {
	if in, ok := r.interpreters.Get(filepath.Ext(step.Run)); ok && len(in) > 0 {
		args := append(append([]string{}, in[1:]...), filepath.Join(r.dir, step.Run))
		return in[0], args, nil
	}

	script := filepath.Join(r.dir, RunDir, fmt.Sprintf("plugin-%d.sh", i))
	if err := os.WriteFile(script, []byte(step.Run), 0o644); err != nil {
		return "", nil, fmt.Errorf("write %s: %w", script, err)
	}
	return "sh", []string{script}, nil
}
