package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yairfalse/cfs/internal/config"
	"github.com/yairfalse/cfs/internal/plugin"
	"github.com/yairfalse/cfs/internal/region"
	"github.com/yairfalse/cfs/internal/resources"
	"github.com/yairfalse/cfs/internal/telemetry"
	"github.com/yairfalse/cfs/internal/writer"
	"github.com/yairfalse/cfs/orchestrator"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Download every discovered resource (the default command)",
		Long: `Download every discovered resource into the output directory.

Each kind is cleared and rewritten. Regions are listed first, then every
kind is downloaded concurrently across all enabled regions. Declared plugins
run afterwards. Failures do not stop other kinds or regions; they are
collected into errors.log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, a)
		},
	}
}

func runSync(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	cfg := a.cfg

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	provider, err := telemetry.NewProvider(ctx, "cfs", telemetry.WithOTLP(cfg.OTel.Endpoint, cfg.OTel.Insecure))
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.Debug().Err(err).Msg("shutdown telemetry")
		}
	}()
	metrics, err := telemetry.NewMetrics(provider.Meter())
	if err != nil {
		return err
	}

	home := cfg.AWS.Region
	if home == "" {
		home = resources.GlobalRegion
	}
	resolver := region.NewResolver(ec2.NewFromConfig(awsCfg, func(o *ec2.Options) { o.Region = home }))

	tree := a.tree()
	catalog := resources.NewCatalog(resources.NewClients(awsCfg), resolver, tree, writer.WithMetrics(metrics))
	writers, err := catalog.Select(cfg.Sync.Kinds)
	if err != nil {
		return &UserError{Message: err.Error()}
	}

	orch := orchestrator.NewOrchestrator(tree, catalog.Regions(), writers).
		WithRegion(resolver, cfg.AWS.Region).
		WithTotals(provider)
	if cfg.Plugins.Disabled {
		log.Debug().Msg("plugins disabled")
	} else {
		orch.WithPlugins(plugin.NewRunner(tree.PluginsPath(),
			plugin.WithRegistry(interpreters(cfg.Plugins.Interpreters)),
			plugin.WithOutput(cmd.OutOrStdout()),
		))
	}

	if _, err := orch.Sync(ctx); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Success")
	return nil
}

// interpreters extends the built-in plugin interpreters with configured ones.
func interpreters(configured map[string][]string) *plugin.Registry {
	reg := plugin.DefaultRegistry()
	for ext, command := range configured {
		reg.Register(ext, plugin.Interpreter(command))
	}
	return reg
}

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWS.Profile))
	}
	if cfg.AWS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWS.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return awsCfg, nil
}
