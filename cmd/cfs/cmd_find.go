package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/cfs/storage"
)

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <text>",
		Short: "Search resource file names and contents",
		Long: `Print the path of every resource file whose path or content contains
the given text. Matching ignores case.`,
		Example: `  cfs find "m5.large"
  cfs find vpc-0a1b2c3d`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "" {
				return userErrorf("Please provide the text to search for, like `cfs find \"m5.large\"`.")
			}
			if len(args) > 1 {
				return userErrorf("Please provide a single text to search for, quoting it if it contains spaces, like `cfs find \"m5 large\"`.")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			tree := a.tree()
			paths, err := tree.Find(cmd.Context(), args[0])
			if errors.Is(err, storage.ErrEmpty) {
				return userErrorf("No resources found in %s. Run `cfs` first to download them.", tree.Root())
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range paths {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
}
