package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yairfalse/cfs/internal/config"
	"github.com/yairfalse/cfs/internal/shape"
	"github.com/yairfalse/cfs/internal/telemetry"
	"github.com/yairfalse/cfs/storage"
)

var version = "0.1.0"

// UserError is a problem with how cfs was invoked. Only its message is shown.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func userErrorf(format string, args ...any) error {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// app carries the flags shared by every command and the configuration they
// resolve to.
type app struct {
	configPath string
	dir        string
	region     string
	kinds      []string
	debug      bool

	cfg *config.Config
}

func (a *app) tree() *storage.Tree {
	return storage.New(a.cfg.Output.Dir, storage.WithWorkers(a.cfg.Search.Workers))
}

// load resolves the configuration: file (or defaults), then environment,
// then flags given on the command line.
func (a *app) load(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.Getenv)

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Output.Dir = a.dir
	}
	if flags.Changed("region") {
		cfg.AWS.Region = a.region
	}
	if flags.Changed("kinds") {
		cfg.Sync.Kinds = a.kinds
	}
	if a.debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := telemetry.SetupLogging(cmd.ErrOrStderr(), cfg.Log.Level); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cfs",
		Short: "Mirror your AWS account into local JSON files",
		Long: `cfs - your cloud as a file system

cfs discovers the resources of an AWS account in every enabled region,
validates them and writes one JSON file per resource under .cfs/.
The files can then be listed, searched and browsed locally.`,
		Example: `  cfs                          # Download everything into .cfs/
  cfs --region eu-west-1       # Only discover one region
  cfs --kinds vpcs,alarms      # Only download some kinds
  cfs find "m5.large"          # Search names and contents`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, a)
		},
	}
	root.SetVersionTemplate(`cfs {{.Version}} - your cloud as a file system
`)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to a TOML config file")
	flags.StringVarP(&a.dir, "dir", "d", ".cfs", "Output directory")
	flags.StringVarP(&a.region, "region", "r", "", "Only discover this region")
	flags.StringSliceVarP(&a.kinds, "kinds", "k", nil, "Comma-separated list of kinds to download (default all)")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newSyncCmd(a),
		newListCmd(a),
		newFindCmd(a),
		newBrowseCmd(a),
		newCleanCmd(a),
	)
	root.SetHelpCommand(newHelpCmd(a))

	return root
}

// Execute runs cfs with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	return execute(ctx, newRootCmd(), args)
}

func execute(ctx context.Context, root *cobra.Command, args []string) int {
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		printError(root.ErrOrStderr(), err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	var invalid *shape.ValidationError
	if errors.As(err, &invalid) {
		for _, issue := range invalid.Issues {
			fmt.Fprintln(w, "Error:", issue.Code, issue.Path, issue.Message)
		}
		fmt.Fprintln(w, "This is most likely a schema validation issue.")
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
