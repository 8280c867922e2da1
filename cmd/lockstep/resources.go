package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewResourcesCommand creates the resources command.
func NewResourcesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "Print the platform resources the program reserves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			bld, comp, err := opts.compile()
			if err != nil {
				return
			}
			defer func() { err = errors.Join(err, bld.Close()) }()

			res := comp.Resources
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "barrier: %v\n", res.Barrier)
			if res.HasData {
				fmt.Fprintf(out, "data: %v\n", res.Data)
			}
			for item := range res.All() {
				fmt.Fprintln(out, item)
			}
			return
		},
	}
}
