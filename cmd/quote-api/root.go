package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	serve := newServeCommand()

	root := &cobra.Command{
		Use:           "quote-api",
		Short:         "Session login and rate limited random quotes over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		// no subcommand means serve
		RunE: serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quote-api %s (commit %s, %s, %s/%s)\n",
				version, gitCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
