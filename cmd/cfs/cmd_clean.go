package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete the output directory",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			tree := a.tree()
			if err := tree.Remove(); err != nil {
				return err
			}
			log.Debug().Str("dir", tree.Root()).Msg("output removed")
			return nil
		},
	}
}
