package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yairfalse/cfs/internal/resources"
)

const logo = `
┌─┐┌─┐┌─┐
│  ├┤ └─┐
└─┘└  └─┘
`

func newHelpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "help [command]",
		Short: "Print this help message",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				target, _, err := cmd.Root().Find(args)
				if err != nil || target == cmd.Root() {
					return userErrorf("The provided command is invalid: %q", strings.Join(args, " "))
				}
				return target.Help()
			}
			printHelp(cmd.OutOrStdout(), a.cfg.Output.Dir)
			return nil
		},
	}
}

func printHelp(w io.Writer, dir string) {
	blue := color.New(color.FgBlue).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	italic := color.New(color.Italic).SprintFunc()

	fmt.Fprintln(w, blue(logo))
	fmt.Fprintln(w, "version   ", yellow("v"+version))
	fmt.Fprintln(w)
	fmt.Fprintln(w, italic("commands"))
	fmt.Fprintf(w, "  cfs              %s\n", bold("Outputs all discovered resources to `"+dir+"/`."))
	fmt.Fprintf(w, "  cfs %s           %s\n", blue("ls"), bold("Lists the names of all resource files to the console."))
	fmt.Fprintf(w, "  cfs %s %s  %s\n", blue("find"), yellow("<text>"), bold("Search for text across all resource file names and contents."))
	fmt.Fprintf(w, "  cfs %s       %s\n", blue("browse"), bold("Opens the browser for exploring resources."))
	fmt.Fprintf(w, "  cfs %s        Deletes the `%s/` directory.\n", blue("clean"), dir)
	fmt.Fprintf(w, "  cfs %s         Outputs this help message.\n", blue("help"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, italic("kinds"))
	names := resources.NewCatalog(resources.Clients{}, nil, nil).Names()
	fmt.Fprintf(w, "  %s\n", strings.Join(names, ", "))
	fmt.Fprintln(w)
}
