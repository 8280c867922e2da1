package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Registers bool
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the program and print its listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			bld, comp, err := opts.compile()
			if err != nil {
				return
			}
			defer func() { err = errors.Join(err, bld.Close()) }()

			out := cmd.OutOrStdout()
			if opts.Registers {
				err = printRegisters(out, bld.modules)
				if err != nil {
					return
				}
			}

			return comp.Listing(out)
		},
	}

	cmd.Flags().BoolVar(&opts.Registers, "registers", false, "list sandbox registers first")

	return cmd
}
